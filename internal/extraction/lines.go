package extraction

import (
	"math"
	"sort"
	"strings"
)

// fallbackThreshold is used when fragment heights give no usable estimate
const fallbackThreshold = 10.0

// TextFragment is one text region reported by a spatial OCR backend
type TextFragment struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
}

// DefaultThreshold returns the vertical clustering distance for a set of fragments:
// 40% of the mean fragment height.
func DefaultThreshold(fragments []TextFragment) float64 {
	if len(fragments) == 0 {
		return fallbackThreshold
	}

	var sum float64
	for _, f := range fragments {
		sum += f.Height
	}
	mean := sum / float64(len(fragments))
	if mean <= 0 || math.IsNaN(mean) {
		return fallbackThreshold
	}
	return 0.4 * mean
}

// ReconstructLines groups fragments into text lines ordered top to bottom.
// A fragment stays on the current line while its vertical distance to the previous
// fragment (in Y order) is at most threshold. Each line is ordered left to right.
func ReconstructLines(fragments []TextFragment, threshold float64) []string {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y < sorted[j].Y
	})

	var lines []string
	current := []TextFragment{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if math.Abs(sorted[i].Y-sorted[i-1].Y) <= threshold {
			current = append(current, sorted[i])
			continue
		}
		lines = append(lines, joinLine(current))
		current = []TextFragment{sorted[i]}
	}
	lines = append(lines, joinLine(current))

	return lines
}

func joinLine(cluster []TextFragment) string {
	sort.SliceStable(cluster, func(i, j int) bool {
		return cluster[i].X < cluster[j].X
	})
	texts := make([]string, len(cluster))
	for i, f := range cluster {
		texts[i] = f.Text
	}
	return strings.Join(texts, " ")
}
