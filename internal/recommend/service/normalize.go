package service

import (
	"fmt"
	"math"
	"strings"

	"iem-reco-service/internal/fileio"
	"iem-reco-service/internal/recommend/model"
	"iem-reco-service/internal/utils"
)

// rankScores maps Crinacle-style letter grades to numeric scores.
var rankScores = map[string]float64{
	"S+": 11.0, "S": 10.5, "S-": 10.0,
	"A+": 9.5, "A": 9.0, "A-": 8.5,
	"B+": 8.0, "B": 7.5, "B-": 7.0,
	"C+": 6.5, "C": 6.0, "C-": 5.5,
	"D+": 5.0, "D": 4.5, "D-": 4.0,
	"E+": 3.5, "E": 3.0,
	"F": 2.5,
}

const unknownSignature = "Unknown"

// RankScore returns the numeric score of a grade and whether the grade is known.
func RankScore(grade string) (float64, bool) {
	v, ok := rankScores[strings.TrimSpace(grade)]
	return v, ok
}

const (
	defaultGroups = 5
	defaultSeed   = int64(42)
)

// NormalizeOptions controls the signature clustering step.
type NormalizeOptions struct {
	Groups int
	Seed   *int64 // nil -> 42; 0 is a valid seed
}

// ApplyDefaults fills unset values: 5 groups, seed 42.
func (o *NormalizeOptions) ApplyDefaults() {
	if o.Groups <= 0 {
		o.Groups = defaultGroups
	}
	if o.Seed == nil {
		seed := defaultSeed
		o.Seed = &seed
	}
}

// NormalizeIEMs turns raw catalog A rows into the scored working catalog.
//
// Rows are dropped when the price is not a non-negative number, the grade is not in the
// rank table, or the signature is blank or "Unknown". Prices are min-max scaled over the
// surviving rows and QualityScore = RankScore * (1 - NormalizedPrice). Distinct signatures get
// ids in first-seen order which are then grouped by 1-D k-means.
//
// A table without the required columns is a fatal load error.
func NormalizeIEMs(t fileio.Table, opts NormalizeOptions) ([]model.IEM, error) {
	opts.ApplyDefaults()
	if len(t.Headers) == 0 {
		return nil, fatalLoad("catalog is empty")
	}
	if missing := t.MissingColumns(model.IEMColumns...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrFatalLoad, &SchemaError{Catalog: "iem catalog", Missing: missing})
	}

	items := make([]model.IEM, 0, len(t.Rows))
	for _, rec := range t.Rows {
		price, ok := utils.ParseNumber(rec[model.ColPrice])
		if !ok || price < 0 {
			continue
		}
		grade := strings.TrimSpace(rec[model.ColRank])
		score, ok := rankScores[grade]
		if !ok {
			continue
		}
		sig := strings.TrimSpace(rec[model.ColSignature])
		if sig == "" || sig == unknownSignature {
			continue
		}
		items = append(items, model.IEM{
			Model:     strings.TrimSpace(rec[model.ColModel]),
			Signature: sig,
			RankGrade: grade,
			RankScore: score,
			Price:     price,
		})
	}
	if len(items) == 0 {
		return items, nil
	}

	prices := make([]float64, len(items))
	for i := range items {
		prices[i] = items[i].Price
	}
	lo, hi := minMax(prices)
	for i := range items {
		items[i].NormalizedPrice = scale(items[i].Price, lo, hi)
		items[i].QualityScore = items[i].RankScore * (1 - items[i].NormalizedPrice)
	}

	ids := make(map[string]int)
	values := make([]float64, len(items))
	for i := range items {
		id, ok := ids[items[i].Signature]
		if !ok {
			id = len(ids)
			ids[items[i].Signature] = id
		}
		items[i].SignatureID = id
		values[i] = float64(id)
	}
	groups := kmeans1D(values, opts.Groups, *opts.Seed)
	for i := range items {
		items[i].SignatureGroup = groups[i]
	}
	return items, nil
}

// minMax returns the bounds of the finite values; (NaN, NaN) when there are none.
func minMax(vals []float64) (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

// scale maps v into [0,1]; a zero range maps everything to 0, NaN stays NaN.
func scale(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsNaN(lo) {
		return math.NaN()
	}
	rng := hi - lo
	if rng == 0 {
		return 0
	}
	return (v - lo) / rng
}
