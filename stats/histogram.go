package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	MinBins     = 5
	MaxBins     = 50
	DefaultBins = 20
)

// Histogram holds equal width bin counts. Edges has one more element than Counts; every bin is
// closed on the left and the last bin is also closed on the right.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// NewHistogram bins the finite values into the given number of equal width bins spanning their
// range. When every value is equal the range is widened by 0.5 on each side.
func NewHistogram(vals []float64, bins int) (*Histogram, error) {
	if bins < MinBins || bins > MaxBins {
		return nil, fmt.Errorf("got %d bins, expected between %d and %d, %w", bins, MinBins, MaxBins, ErrInvalidBins)
	}
	sorted := finiteSorted(vals)
	if len(sorted) == 0 {
		return nil, ErrNoData
	}

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := make([]float64, bins+1)
	if width := (hi - lo) / float64(bins); !math.IsInf(width, 0) {
		for i := range edges {
			edges[i] = lo + width*float64(i)
		}
	} else {
		// range wider than MaxFloat64, step in halves to stay finite
		halfWidth := (hi/2 - lo/2) / float64(bins)
		for i := range edges {
			edges[i] = 2 * (lo/2 + halfWidth*float64(i))
		}
	}
	edges[bins] = hi

	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	return &Histogram{
		Edges:  edges,
		Counts: counts,
	}, nil
}

// Centers returns the midpoint of every bin
func (h *Histogram) Centers() []float64 {
	res := make([]float64, len(h.Counts))
	for i := range res {
		res[i] = h.Edges[i] + (h.Edges[i+1]-h.Edges[i])/2
	}
	return res
}

// Labels names every bin by its range
func (h *Histogram) Labels() []string {
	res := make([]string, len(h.Counts))
	for i := range res {
		res[i] = fmt.Sprintf("%.4g to %.4g", h.Edges[i], h.Edges[i+1])
	}
	return res
}
