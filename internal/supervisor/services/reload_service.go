package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"iem-reco-service/internal/metrics"
)

// CatalogReloader rebuilds catalog A when its source changed.
type CatalogReloader interface {
	ReloadIfChanged() (bool, error)
}

// ReloadService polls the IEM catalog and swaps in a rebuilt snapshot on change.
// A failed rebuild is logged and the old snapshot keeps serving.
type ReloadService struct {
	reloader CatalogReloader
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

func NewReloadService(reloader CatalogReloader, interval time.Duration, logger zerolog.Logger) *ReloadService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ReloadService{
		reloader: reloader,
		interval: interval,
		logger:   logger.With().Str("service", "catalog-reload").Logger(),
		name:     "catalog-reload",
	}
}

func (s *ReloadService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("catalog reloader running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *ReloadService) poll() {
	changed, err := s.reloader.ReloadIfChanged()
	if err != nil {
		metrics.RecordReload(err)
		s.logger.Warn().Err(err).Msg("catalog reload failed, keeping previous snapshot")
		return
	}
	if changed {
		metrics.RecordReload(nil)
		s.logger.Info().Msg("catalog reloaded")
	}
}

func (s *ReloadService) String() string { return s.name }
