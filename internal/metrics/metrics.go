package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iemreco_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iemreco_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Рекомендации
	IEMRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iemreco_iem_recommendations_total",
			Help: "IEM recommendations served, by result status",
		},
		[]string{"status"},
	)

	SongRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iemreco_song_recommendations_total",
			Help: "Song recommendation requests, by selection mode",
		},
		[]string{"mode"}, // "shortlist", "random"
	)

	// Каталоги
	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iemreco_catalog_reloads_total",
			Help: "IEM catalog rebuild attempts",
		},
		[]string{"result"}, // "success", "error"
	)

	CatalogSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "iemreco_catalog_rows",
			Help: "Rows in the currently loaded catalog",
		},
		[]string{"catalog"}, // "iem", "song"
	)

	CatalogLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iemreco_catalog_load_duration_seconds",
			Help:    "Time spent reading and normalizing a catalog",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"catalog"},
	)

	SongCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iemreco_song_cache_hits_total",
			Help: "Song catalog lookups served from cache",
		},
	)

	SongCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iemreco_song_cache_misses_total",
			Help: "Song catalog lookups that had to read the file",
		},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCatalogLoad records a catalog build. Size is only updated on success.
func RecordCatalogLoad(catalog string, rows int, duration time.Duration, err error) {
	CatalogLoadDuration.WithLabelValues(catalog).Observe(duration.Seconds())
	if err != nil {
		return
	}
	CatalogSize.WithLabelValues(catalog).Set(float64(rows))
}

// RecordReload counts a reload attempt of catalog A.
func RecordReload(err error) {
	if err != nil {
		CatalogReloads.WithLabelValues("error").Inc()
		return
	}
	CatalogReloads.WithLabelValues("success").Inc()
}

// RecordSongCache counts a song cache lookup.
func RecordSongCache(hit bool) {
	if hit {
		SongCacheHits.Inc()
		return
	}
	SongCacheMisses.Inc()
}
