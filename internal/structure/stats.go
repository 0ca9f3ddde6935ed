package structure

import (
	"sort"

	"github.com/dghofer/docsight/internal/fragment"
)

// FontStats summarizes a document's font-size distribution. Percentile bands
// rather than absolute thresholds drive classification, because absolute font
// sizes vary wildly across documents and templates.
type FontStats struct {
	Median float64
	P75    float64
	P90    float64
}

// ComputeFontStats derives percentile statistics over all fragments of one
// document. An empty input yields zero stats, which classifies everything
// into the lowest tier.
func ComputeFontStats(frags []fragment.TextFragment) FontStats {
	if len(frags) == 0 {
		return FontStats{}
	}
	sizes := make([]float64, 0, len(frags))
	for _, f := range frags {
		sizes = append(sizes, f.FontSize)
	}
	sort.Float64s(sizes)
	return FontStats{
		Median: percentile(sizes, 50),
		P75:    percentile(sizes, 75),
		P90:    percentile(sizes, 90),
	}
}

// percentile linearly interpolates over a sorted slice.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}
