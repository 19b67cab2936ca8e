package service

import (
	"sort"
	"strings"
)

// Suggestion is a known signature label close to a free-text query.
type Suggestion struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SuggestSignatures ranks labels by similarity to query and returns the best limit entries
// scoring at least minScore. Substring hits score 1.
func SuggestSignatures(query string, labels []string, limit int, minScore float64) []Suggestion {
	q := foldLabel(query)
	if q == "" || limit <= 0 {
		return nil
	}
	out := make([]Suggestion, 0, len(labels))
	for _, l := range labels {
		fl := foldLabel(l)
		s := bestSimilarity(q, fl)
		if strings.Contains(fl, q) {
			s = 1
		}
		if s >= minScore {
			out = append(out, Suggestion{Label: l, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Label < out[j].Label
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// similarity is the normalized Damerau-Levenshtein similarity in [0..1].
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	d := damerauLevenshtein(a, b)
	m := max(len([]rune(a)), len([]rune(b)))
	return 1 - float64(d)/float64(m)
}

// tokenSort: сортируем токены, "shape v" == "v shape"
func tokenSort(s string) string {
	t := strings.Fields(strings.ReplaceAll(s, "-", " "))
	sort.Strings(t)
	return strings.Join(t, " ")
}

func bestSimilarity(a, b string) float64 {
	return max(similarity(a, b), similarity(tokenSort(a), tokenSort(b)))
}

func damerauLevenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	al, bl := len(ra), len(rb)

	dp := make([][]int, al+1)
	for i := range dp {
		dp[i] = make([]int, bl+1)
		dp[i][0] = i
	}
	for j := 0; j <= bl; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			// вставка / удаление / замена
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)
			// транспозиция соседних символов
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				dp[i][j] = min(dp[i][j], dp[i-2][j-2]+1)
			}
		}
	}
	return dp[al][bl]
}
