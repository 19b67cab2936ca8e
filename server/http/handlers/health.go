package handlers

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"iem-reco-service/internal/catalog"
)

// SnapshotSource is the part of the catalog store health needs.
type SnapshotSource interface {
	Current() *catalog.Snapshot
}

type healthBody struct {
	Status         string `json:"status"`
	CatalogRows    int    `json:"catalogRows"`
	CatalogVersion uint64 `json:"catalogVersion"`
	LoadedAt       string `json:"loadedAt,omitempty"`
}

// Health: 200 когда каталог A загружен, иначе 503.
func Health(src SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := healthBody{Status: "ok"}
		code := http.StatusOK
		if snap := src.Current(); snap != nil {
			body.CatalogRows = len(snap.IEMs)
			body.CatalogVersion = snap.Version
			body.LoadedAt = snap.LoadedAt.UTC().Format(time.RFC3339)
		} else {
			body.Status = "catalog not loaded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	}
}
