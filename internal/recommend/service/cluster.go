package service

import (
	"math"
	"math/rand"
	"sort"
)

const (
	kmeansRestarts = 10
	kmeansMaxIter  = 300
)

// kmeans1D partitions values into at most k groups with Lloyd's algorithm and k-means++
// seeding. The best of kmeansRestarts runs (lowest inertia) wins. Group numbers are ordered by
// ascending centroid so equal input and seed always give equal labels.
func kmeans1D(values []float64, k int, seed int64) []int {
	labels := make([]int, len(values))
	if len(values) == 0 || k <= 1 {
		return labels
	}
	distinct := make(map[float64]struct{})
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	if k > len(distinct) {
		k = len(distinct)
	}
	if k <= 1 {
		return labels
	}

	rng := rand.New(rand.NewSource(seed))
	bestInertia := math.Inf(1)
	var bestCenters []float64
	for run := 0; run < kmeansRestarts; run++ {
		centers := seedCenters(values, k, rng)
		assign := make([]int, len(values))
		inertia := lloyd(values, centers, assign)
		if inertia < bestInertia {
			bestInertia = inertia
			bestCenters = centers
			copy(labels, assign)
		}
	}

	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return bestCenters[order[a]] < bestCenters[order[b]] })
	rank := make([]int, k)
	for pos, c := range order {
		rank[c] = pos
	}
	for i := range labels {
		labels[i] = rank[labels[i]]
	}
	return labels
}

// seedCenters picks k initial centers, each next one with probability proportional to the
// squared distance from the closest center picked so far.
func seedCenters(values []float64, k int, rng *rand.Rand) []float64 {
	centers := make([]float64, 0, k)
	centers = append(centers, values[rng.Intn(len(values))])
	d2 := make([]float64, len(values))
	for len(centers) < k {
		var total float64
		for i, v := range values {
			d2[i] = math.Inf(1)
			for _, c := range centers {
				if d := (v - c) * (v - c); d < d2[i] {
					d2[i] = d
				}
			}
			total += d2[i]
		}
		if total == 0 {
			centers = append(centers, values[rng.Intn(len(values))])
			continue
		}
		target := rng.Float64() * total
		pick := -1
		for i, d := range d2 {
			target -= d
			if target < 0 {
				pick = i
				break
			}
		}
		if pick < 0 {
			for i := len(d2) - 1; i >= 0; i-- {
				if d2[i] > 0 {
					pick = i
					break
				}
			}
		}
		centers = append(centers, values[pick])
	}
	return centers
}

// lloyd refines centers in place, writes assignments and returns the final inertia.
func lloyd(values, centers []float64, assign []int) float64 {
	sums := make([]float64, len(centers))
	counts := make([]int, len(centers))
	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, v := range values {
			c := nearest(v, centers)
			if iter == 0 || assign[i] != c {
				changed = true
				assign[i] = c
			}
		}
		if !changed {
			break
		}
		for c := range sums {
			sums[c], counts[c] = 0, 0
		}
		for i, v := range values {
			sums[assign[i]] += v
			counts[assign[i]]++
		}
		for c := range centers {
			// пустой кластер держит прежний центр
			if counts[c] > 0 {
				centers[c] = sums[c] / float64(counts[c])
			}
		}
	}
	var inertia float64
	for i, v := range values {
		d := v - centers[assign[i]]
		inertia += d * d
	}
	return inertia
}

func nearest(v float64, centers []float64) int {
	best, bestD := 0, math.Inf(1)
	for c, x := range centers {
		if d := math.Abs(v - x); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}
