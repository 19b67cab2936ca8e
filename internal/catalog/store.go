// Package catalog keeps the loaded catalogs in memory. Catalog A lives in an immutable
// snapshot swapped atomically on reload; catalog B is read lazily and cached with a TTL.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"iem-reco-service/internal/fileio"
	"iem-reco-service/internal/metrics"
	"iem-reco-service/internal/recommend/model"
	"iem-reco-service/internal/recommend/service"
)

// ErrNotLoaded is returned before the first successful Load.
var ErrNotLoaded = errors.New("iem catalog is not loaded")

// Snapshot is one normalized build of catalog A. Never mutated after publication.
type Snapshot struct {
	IEMs     []model.IEM
	Source   string
	ModTime  time.Time
	LoadedAt time.Time
	Version  uint64
}

// StoreConfig describes where catalog A comes from.
type StoreConfig struct {
	Path      string
	HeaderRow int
	Normalize service.NormalizeOptions
}

// Store holds the current catalog A snapshot. Readers never block on a reload.
type Store struct {
	cfg    StoreConfig
	logger zerolog.Logger

	cur     atomic.Pointer[Snapshot]
	mu      sync.Mutex // одна пересборка за раз
	version uint64
}

func NewStore(cfg StoreConfig, logger zerolog.Logger) *Store {
	if cfg.HeaderRow <= 0 {
		cfg.HeaderRow = 1
	}
	return &Store{cfg: cfg, logger: logger.With().Str("catalog", "iem").Logger()}
}

// Load reads and normalizes the catalog file and publishes the result. On error the
// previous snapshot, if any, stays current.
func (s *Store) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Snapshot, error) {
	start := time.Now()
	snap, err := s.build()
	metrics.RecordCatalogLoad("iem", len(snapshotItems(snap)), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.version++
	snap.Version = s.version
	s.cur.Store(snap)
	s.logger.Info().
		Int("rows", len(snap.IEMs)).
		Uint64("version", snap.Version).
		Dur("dur", time.Since(start)).
		Msg("catalog loaded")
	return snap, nil
}

func (s *Store) build() (*Snapshot, error) {
	fi, err := os.Stat(s.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrFatalLoad, err)
	}
	t, err := fileio.ReadFile(s.cfg.Path, s.cfg.HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrFatalLoad, err)
	}
	items, err := service.NormalizeIEMs(t, s.cfg.Normalize)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		IEMs:     items,
		Source:   s.cfg.Path,
		ModTime:  fi.ModTime(),
		LoadedAt: time.Now(),
	}, nil
}

// ReloadIfChanged rebuilds the snapshot when the file's modification time differs from
// the current one. It reports whether a new snapshot was published.
func (s *Store) ReloadIfChanged() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fi, err := os.Stat(s.cfg.Path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", s.cfg.Path, err)
	}
	if cur := s.cur.Load(); cur != nil && fi.ModTime().Equal(cur.ModTime) {
		return false, nil
	}
	if _, err := s.load(); err != nil {
		return false, err
	}
	return true, nil
}

// Current returns the published snapshot or nil.
func (s *Store) Current() *Snapshot {
	return s.cur.Load()
}

// Recommend ranks the current snapshot.
func (s *Store) Recommend(q model.IEMQuery) (model.IEMRecommendation, error) {
	snap := s.cur.Load()
	if snap == nil {
		return model.IEMRecommendation{}, ErrNotLoaded
	}
	return service.RankIEMs(snap.IEMs, q), nil
}

func snapshotItems(s *Snapshot) []model.IEM {
	if s == nil {
		return nil
	}
	return s.IEMs
}
