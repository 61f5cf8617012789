package polity

import "golang.org/x/exp/constraints"

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent bounds an approval or popularity figure to [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Bounds for unemployment and inflation after a policy or event is applied.
const (
	MinUnemployment = 2.5
	MaxUnemployment = 20.0
	MinInflation    = 0.0
	MaxInflation    = 20.0
)

// ClampUnemployment bounds an unemployment rate.
func ClampUnemployment(v float64) float64 {
	return Clamp(v, MinUnemployment, MaxUnemployment)
}

// ClampInflation bounds an inflation rate.
func ClampInflation(v float64) float64 {
	return Clamp(v, MinInflation, MaxInflation)
}
