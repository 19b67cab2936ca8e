package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"iem-reco-service/internal/catalog"
	"iem-reco-service/internal/config"
	"iem-reco-service/internal/recommend/handler"
	"iem-reco-service/internal/recommend/service"
	"iem-reco-service/internal/supervisor"
	"iem-reco-service/internal/supervisor/services"
	serverhttp "iem-reco-service/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := config.SetupLogger(cfg)

	// каталог A обязателен: без него сервис не стартует
	store := catalog.NewStore(catalog.StoreConfig{
		Path:      cfg.IEMCatalogPath,
		HeaderRow: cfg.IEMHeaderRow,
		Normalize: service.NormalizeOptions{Groups: cfg.ClusterGroups, Seed: &cfg.ClusterSeed},
	}, logger)
	if _, err := store.Load(); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.IEMCatalogPath).Msg("iem catalog")
	}
	songs := catalog.NewSongSource(cfg.SongCatalogPath, cfg.SongHeaderRow, cfg.SongCacheTTL, logger)

	r := serverhttp.NewRouter(cfg, serverhttp.Deps{IEMs: store, Songs: songs, NewRand: handler.NewRand}, logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logger, supervisor.TreeConfig{ShutdownTimeout: cfg.ShutdownTimeout})
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.ShutdownTimeout, logger))
	if cfg.ReloadInterval > 0 {
		tree.AddCatalogService(services.NewReloadService(store, cfg.ReloadInterval, logger))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("supervisor stopped")
	}
	logger.Info().Msg("bye")
}
