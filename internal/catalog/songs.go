package catalog

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"iem-reco-service/internal/fileio"
	"iem-reco-service/internal/metrics"
	"iem-reco-service/internal/recommend/model"
	"iem-reco-service/internal/recommend/service"
)

// SongSource reads catalog B on demand. Parsed rows are cached per path for ttl; failed
// reads are not cached so a fixed file is picked up on the next request.
type SongSource struct {
	path      string
	headerRow int
	logger    zerolog.Logger

	mu    sync.Mutex
	cache *expirable.LRU[string, []model.Song]
}

// NewSongSource creates a source for the catalog at path. ttl <= 0 keeps entries until Purge.
func NewSongSource(path string, headerRow int, ttl time.Duration, logger zerolog.Logger) *SongSource {
	if headerRow <= 0 {
		headerRow = 1
	}
	return &SongSource{
		path:      path,
		headerRow: headerRow,
		logger:    logger.With().Str("catalog", "song").Logger(),
		cache:     expirable.NewLRU[string, []model.Song](4, nil, ttl),
	}
}

// Songs returns the parsed catalog.
func (s *SongSource) Songs() ([]model.Song, error) {
	if songs, ok := s.cache.Get(s.path); ok {
		metrics.RecordSongCache(true)
		return songs, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// пока ждали мьютекс, другой запрос мог уже прочитать файл
	if songs, ok := s.cache.Get(s.path); ok {
		metrics.RecordSongCache(true)
		return songs, nil
	}
	metrics.RecordSongCache(false)

	start := time.Now()
	songs, err := s.read()
	metrics.RecordCatalogLoad("song", len(songs), time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("song catalog load failed")
		return nil, err
	}
	s.cache.Add(s.path, songs)
	s.logger.Debug().Int("rows", len(songs)).Dur("dur", time.Since(start)).Msg("song catalog cached")
	return songs, nil
}

func (s *SongSource) read() ([]model.Song, error) {
	t, err := fileio.ReadFile(s.path, s.headerRow)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrEmptyCatalog, err)
	}
	return service.ParseSongs(t)
}

// Recommend loads the catalog and ranks it for the signature label.
func (s *SongSource) Recommend(label string, count int, rng *rand.Rand) ([]model.RankedSong, error) {
	songs, err := s.Songs()
	if err != nil {
		return nil, err
	}
	out, err := service.RankSongs(songs, label, count, rng)
	if err != nil {
		return nil, err
	}
	mode := "random"
	if len(out) > 0 && out[0].Distance != nil {
		mode = "shortlist"
	}
	metrics.SongRecommendations.WithLabelValues(mode).Inc()
	return out, nil
}

// Purge drops cached rows.
func (s *SongSource) Purge() {
	s.cache.Purge()
}
