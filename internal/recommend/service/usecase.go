package service

import (
	"fmt"
	"sort"
	"strings"

	"iem-reco-service/internal/recommend/model"
)

const (
	topIEMs       = 3
	scoreEpsilon  = 1e-9
	matchBase     = 95.0
	matchStep     = 5.0
	msgNoUseCases = "Please select at least one category."
	msgNoMatches  = "No recommendations found."
)

// useCaseKeywords maps each use case to signature keywords matched as substrings.
var useCaseKeywords = map[string][]string{
	"Casual Listening":              {"Balanced", "Warm", "Harman"},
	"Professional Audio":            {"Neutral", "Flat", "Reference"},
	"Gaming":                        {"V-shaped", "U-shaped", "Wide"},
	"Podcast & Audiobook Listening": {"Mid-centric", "Neutral", "Clear"},
	"Workout & Running":             {"Bass", "Energetic", "V-shaped"},
	"Movie Watching":                {"Cinematic", "Immersive", "Wide"},
}

var foldedUseCases = func() map[string]string {
	m := make(map[string]string, len(useCaseKeywords))
	for k := range useCaseKeywords {
		m[foldLabel(k)] = k
	}
	return m
}()

// lookupUseCase resolves a label exactly, then ignoring case and spacing.
func lookupUseCase(label string) []string {
	if kw, ok := useCaseKeywords[label]; ok {
		return kw
	}
	return useCaseKeywords[foldedUseCases[foldLabel(label)]]
}

// UseCases returns the known use case labels sorted alphabetically.
func UseCases() []string {
	out := make([]string, 0, len(useCaseKeywords))
	for k := range useCaseKeywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UseCaseKeywords returns a copy of the keywords for a use case; nil when unknown.
func UseCaseKeywords(useCase string) []string {
	kw := lookupUseCase(strings.TrimSpace(useCase))
	if kw == nil {
		return nil
	}
	return append([]string(nil), kw...)
}

// RankIEMs picks up to three IEMs for the selected use cases.
//
// The optional signature filter narrows the catalog first. Every use case then contributes
// the rows whose signature contains one of its keywords; the contributions are concatenated
// without deduplication. When nothing matches, the whole (filtered) catalog is ranked.
// Rows are scored by RankScore/(Price+1), min-max normalized, sorted descending, deduplicated
// by model and cut to three. The budget is echoed back but does not filter.
func RankIEMs(items []model.IEM, q model.IEMQuery) model.IEMRecommendation {
	res := model.IEMRecommendation{Items: []model.RankedIEM{}, Budget: q.Budget}

	selected := make([]string, 0, len(q.UseCases))
	for _, uc := range q.UseCases {
		if uc = strings.TrimSpace(uc); uc != "" {
			selected = append(selected, uc)
		}
	}
	if len(selected) == 0 {
		res.Status = model.StatusInvalidInput
		res.Message = msgNoUseCases
		return res
	}

	pool := items
	if f := strings.TrimSpace(q.SignatureFilter); f != "" {
		pool = make([]model.IEM, 0, len(items))
		for _, it := range items {
			if containsFold(it.Signature, f) {
				pool = append(pool, it)
			}
		}
	}

	var candidates []model.IEM
	for _, uc := range selected {
		keywords := lookupUseCase(uc)
		if len(keywords) == 0 {
			continue
		}
		for _, it := range pool {
			if matchesAny(it.Signature, keywords) {
				candidates = append(candidates, it)
			}
		}
	}
	if len(candidates) == 0 {
		candidates = pool
	}
	if len(candidates) == 0 {
		res.Status = model.StatusNoMatches
		res.Message = msgNoMatches
		return res
	}

	type scored struct {
		item  model.IEM
		score float64
	}
	ranked := make([]scored, len(candidates))
	lo, hi := 0.0, 0.0
	for i, it := range candidates {
		s := it.RankScore / (it.Price + 1)
		ranked[i] = scored{item: it, score: s}
		if i == 0 || s < lo {
			lo = s
		}
		if i == 0 || s > hi {
			hi = s
		}
	}
	for i := range ranked {
		ranked[i].score = (ranked[i].score - lo) / (hi - lo + scoreEpsilon)
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	seen := make(map[string]struct{}, topIEMs)
	for _, r := range ranked {
		if _, dup := seen[r.item.Model]; dup {
			continue
		}
		seen[r.item.Model] = struct{}{}
		pct := matchBase - matchStep*float64(len(res.Items))
		res.Items = append(res.Items, model.RankedIEM{
			Model:           r.item.Model,
			Signature:       r.item.Signature,
			Price:           r.item.Price,
			NormalizedScore: r.score,
			MatchPercent:    pct,
			Match:           fmt.Sprintf("%.1f%%", pct),
		})
		if len(res.Items) == topIEMs {
			break
		}
	}
	res.Status = model.StatusOK
	return res
}

func matchesAny(signature string, keywords []string) bool {
	for _, kw := range keywords {
		if containsFold(signature, kw) {
			return true
		}
	}
	return false
}
