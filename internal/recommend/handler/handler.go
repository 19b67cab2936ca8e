package handler

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"iem-reco-service/internal/catalog"
	"iem-reco-service/internal/metrics"
	"iem-reco-service/internal/recommend/model"
	"iem-reco-service/internal/validation"
)

// IEMRecommender ranks catalog A.
type IEMRecommender interface {
	Recommend(q model.IEMQuery) (model.IEMRecommendation, error)
}

// SongRecommender ranks catalog B for a signature label.
type SongRecommender interface {
	Recommend(label string, count int, rng *rand.Rand) ([]model.RankedSong, error)
}

// Reloader rebuilds catalog A on demand.
type Reloader interface {
	Load() (*catalog.Snapshot, error)
}

// RandSource gives every request its own generator; *rand.Rand is not safe for concurrent use.
type RandSource func() *rand.Rand

// NewRand is the production RandSource.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

const (
	msgNoSignature = "No IEM signature provided"
	msgNoSongs     = "No suitable songs found."
)

type iemRequest struct {
	UseCases  []string `json:"categories" validate:"max=10,dive,max=100"`
	Budget    *float64 `json:"budget" validate:"omitempty,gte=0"`
	Signature string   `json:"signature" validate:"max=100"`
}

type songRequest struct {
	Signature string `json:"signature" validate:"notblank,max=100"`
	Count     int    `json:"count" validate:"min=0,max=50"`
}

type iemItem struct {
	model.RankedIEM
	PriceDisplay  string `json:"priceDisplay"`
	AmazonLink    string `json:"amazonLink"`
	HeadphoneZone string `json:"headphoneZoneLink"`
}

type iemResponse struct {
	Items     []iemItem    `json:"items"`
	Status    model.Status `json:"status"`
	Message   string       `json:"message,omitempty"`
	Budget    *float64     `json:"budget,omitempty"`
	Signature string       `json:"signature,omitempty"`
}

type songItem struct {
	model.RankedSong
	SpotifyLink string `json:"spotify_link"`
}

type songResponse struct {
	Signature string     `json:"signature"`
	Songs     []songItem `json:"songs"`
}

// RecommendIEMs: GET /recommendations/iems?categories=a,b&budget=&signature=
func RecommendIEMs(rec IEMRecommender, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)

		req, err := parseIEMRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := validation.Struct(req); err != nil {
			writeValidation(w, err)
			return
		}

		res, err := rec.Recommend(model.IEMQuery{UseCases: req.UseCases, Budget: req.Budget, SignatureFilter: req.Signature})
		if err != nil {
			writeLoadError(w, log, err)
			return
		}
		metrics.IEMRecommendations.WithLabelValues(string(res.Status)).Inc()
		log.Debug().
			Strs("categories", req.UseCases).
			Str("signature", req.Signature).
			Str("status", string(res.Status)).
			Int("items", len(res.Items)).
			Msg("iem recommendation")

		status := http.StatusOK
		if res.Status == model.StatusInvalidInput {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, toIEMResponse(res, req.Signature))
	}
}

// RecommendSongs: POST /recommendations/songs {"signature": "...", "count": 5}
func RecommendSongs(rec SongRecommender, newRand RandSource, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)

		var req songRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
			return
		}
		req.Signature = strings.TrimSpace(req.Signature)
		if req.Signature == "" {
			writeError(w, http.StatusBadRequest, msgNoSignature)
			return
		}
		if err := validation.Struct(req); err != nil {
			writeValidation(w, err)
			return
		}

		songs, err := rec.Recommend(req.Signature, req.Count, newRand())
		if err != nil {
			writeLoadError(w, log, err)
			return
		}
		if len(songs) == 0 {
			writeError(w, http.StatusNotFound, msgNoSongs)
			return
		}
		log.Debug().Str("signature", req.Signature).Int("songs", len(songs)).Msg("song recommendation")
		writeJSON(w, http.StatusOK, songResponse{Signature: req.Signature, Songs: toSongItems(songs)})
	}
}

// Reload: POST /admin/reload — пересобрать каталог A сейчас.
func Reload(rl Reloader, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)
		snap, err := rl.Load()
		metrics.RecordReload(err)
		if err != nil {
			writeLoadError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"version":  snap.Version,
			"rows":     len(snap.IEMs),
			"loadedAt": snap.LoadedAt.UTC().Format(time.RFC3339),
		})
	}
}

func parseIEMRequest(r *http.Request) (iemRequest, error) {
	q := r.URL.Query()
	req := iemRequest{Signature: strings.TrimSpace(q.Get("signature"))}
	for _, c := range strings.Split(q.Get("categories"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			req.UseCases = append(req.UseCases, c)
		}
	}
	if b := strings.TrimSpace(q.Get("budget")); b != "" {
		v, err := strconv.ParseFloat(b, 64)
		if err != nil {
			return req, errBadBudget
		}
		req.Budget = &v
	}
	return req, nil
}

func toIEMResponse(res model.IEMRecommendation, signature string) iemResponse {
	out := iemResponse{
		Items:     make([]iemItem, len(res.Items)),
		Status:    res.Status,
		Message:   res.Message,
		Budget:    res.Budget,
		Signature: signature,
	}
	for i, it := range res.Items {
		out.Items[i] = iemItem{
			RankedIEM:     it,
			PriceDisplay:  priceDisplay(it.Price),
			AmazonLink:    amazonLink(it.Model),
			HeadphoneZone: headphoneZoneLink(it.Model),
		}
	}
	return out
}

func toSongItems(songs []model.RankedSong) []songItem {
	out := make([]songItem, len(songs))
	for i, s := range songs {
		out[i] = songItem{RankedSong: s, SpotifyLink: spotifyLink(s.TrackName, s.TrackArtist)}
	}
	return out
}
