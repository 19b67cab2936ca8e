package service

import (
	"math"

	"iem-reco-service/internal/fileio"
	"iem-reco-service/internal/recommend/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func iemTable(rows ...[4]string) fileio.Table {
	t := fileio.Table{Headers: []string{model.ColModel, model.ColSignature, model.ColRank, model.ColPrice}}
	for _, r := range rows {
		t.Rows = append(t.Rows, map[string]string{
			model.ColModel:     r[0],
			model.ColSignature: r[1],
			model.ColRank:      r[2],
			model.ColPrice:     r[3],
		})
	}
	return t
}
