package service

import (
	"sort"

	"iem-reco-service/internal/recommend/model"
)

// signatureFeatures holds the song-feature targets for each IEM sound signature.
// speechiness is kept as authored even though it is not part of the song distance.
var signatureFeatures = map[string]model.FeatureVector{
	"V-shaped":         {"energy": 0.9, "valence": 0.8, "danceability": 0.7},
	"Mild V-shape":     {"energy": 0.8, "valence": 0.7, "danceability": 0.6},
	"Bright V-shape":   {"energy": 0.9, "valence": 0.9},
	"U-shaped":         {"energy": 0.7, "valence": 0.6, "danceability": 0.7},
	"Bright U-shape":   {"energy": 0.8, "valence": 0.8},
	"Mild U-shape":     {"energy": 0.7, "valence": 0.6},
	"Neutral":          {"energy": 0.5, "valence": 0.5, "danceability": 0.5},
	"Neutral-bright":   {"energy": 0.6, "valence": 0.6},
	"Balanced":         {"energy": 0.55, "valence": 0.55},
	"Warm":             {"acousticness": 0.7, "energy": 0.5, "valence": 0.4},
	"Warm neutral":     {"acousticness": 0.6, "energy": 0.5, "valence": 0.5},
	"Warm U-shape":     {"acousticness": 0.6, "energy": 0.6, "valence": 0.5},
	"Warm V-shape":     {"acousticness": 0.5, "energy": 0.7, "valence": 0.6},
	"Dark":             {"acousticness": 0.8, "energy": 0.4, "valence": 0.3},
	"Dark neutral":     {"acousticness": 0.8, "energy": 0.5, "valence": 0.4},
	"Bassy":            {"danceability": 0.9, "energy": 0.8},
	"Mid-centric":      {"speechiness": 0.7, "acousticness": 0.8},
	"Variable":         {"energy": 0.5, "valence": 0.5, "danceability": 0.5},
	"Unique":           {"energy": 0.5, "valence": 0.5, "speechiness": 0.6},
	"Complete failure": {"energy": 0.2, "valence": 0.2, "danceability": 0.2},
}

// MapSignature returns the target feature vector for a signature label. The lookup is exact;
// ok is false for labels without a mapping, which callers treat as "pick at random".
func MapSignature(label string) (model.FeatureVector, bool) {
	v, ok := signatureFeatures[label]
	if !ok {
		return nil, false
	}
	out := make(model.FeatureVector, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out, true
}

// Signatures lists the mapped signature labels in alphabetical order.
func Signatures() []string {
	out := make([]string, 0, len(signatureFeatures))
	for k := range signatureFeatures {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
