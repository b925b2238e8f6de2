// Package rollup computes weighted progress bottom-up over the
// Phase → Group → Item → Task hierarchy. All functions are pure: they read a
// snapshot and allocate fresh view structures on every call.
package rollup

import "math"

// Weighted is one sibling's contribution to its parent's progress.
type Weighted struct {
	Weight   float64
	Progress float64
}

// WeightedProgress returns round(Σ(progress·weight) / Σweight). Empty input
// and a zero weight sum both yield 0. Inputs are not clamped.
func WeightedProgress(parts []Weighted) int {
	var sum, totalWeight float64
	for _, p := range parts {
		sum += p.Progress * p.Weight
		totalWeight += p.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(sum / totalWeight))
}
