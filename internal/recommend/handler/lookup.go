package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"iem-reco-service/internal/recommend/service"
)

var errBadBudget = errors.New("budget must be a number")

const (
	suggestLimit    = 5
	suggestMinScore = 0.5
)

type useCase struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// UseCases: GET /use-cases
func UseCases(w http.ResponseWriter, _ *http.Request) {
	names := service.UseCases()
	out := make([]useCase, len(names))
	for i, n := range names {
		out[i] = useCase{Name: n, Keywords: service.UseCaseKeywords(n)}
	}
	writeJSON(w, http.StatusOK, out)
}

type signature struct {
	Label    string             `json:"label"`
	Features map[string]float64 `json:"features"`
}

// Signatures: GET /signatures
func Signatures(w http.ResponseWriter, _ *http.Request) {
	labels := service.Signatures()
	out := make([]signature, len(labels))
	for i, l := range labels {
		v, _ := service.MapSignature(l)
		out[i] = signature{Label: l, Features: v}
	}
	writeJSON(w, http.StatusOK, out)
}

// SuggestSignatures: GET /signatures/suggest?q=v shape&limit=3
func SuggestSignatures(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := suggestLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 20 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 20")
			return
		}
		limit = n
	}
	out := service.SuggestSignatures(q, service.Signatures(), limit, suggestMinScore)
	if out == nil {
		out = []service.Suggestion{}
	}
	writeJSON(w, http.StatusOK, out)
}
