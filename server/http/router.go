package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"iem-reco-service/internal/catalog"
	"iem-reco-service/internal/config"
	"iem-reco-service/internal/middleware"
	recHnd "iem-reco-service/internal/recommend/handler"
	"iem-reco-service/server/http/handlers"
)

// Deps — то, что роутеру нужно от остального приложения.
type Deps struct {
	IEMs    *catalog.Store
	Songs   *catalog.SongSource
	NewRand recHnd.RandSource
}

func NewRouter(cfg config.Config, deps Deps, logger zerolog.Logger) *chi.Mux {
	if deps.NewRand == nil {
		deps.NewRand = recHnd.NewRand
	}
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxBodyBytes()))

	// служебное
	r.Get("/health", handlers.Health(deps.IEMs))
	r.Handle("/metrics", promhttp.Handler())

	// справочники
	r.Get("/use-cases", recHnd.UseCases)
	r.Get("/signatures", recHnd.Signatures)
	r.Get("/signatures/suggest", recHnd.SuggestSignatures)

	// рекомендации, под лимитом запросов
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Get("/recommendations/iems", recHnd.RecommendIEMs(deps.IEMs, logger))
		r.Post("/recommendations/songs", recHnd.RecommendSongs(deps.Songs, deps.NewRand, logger))
		r.Post("/admin/reload", recHnd.Reload(deps.IEMs, logger))
	})

	return r
}
