// Package window provides rolling and lookahead aggregation over ordered
// numeric series. Results stay aligned 1:1 with the input; positions lacking
// the required history hold NaN until a caller trims them.
package window

import "math"

// AggFunc collapses a window of observations into one value.
type AggFunc func(window []float64) float64

// Mean averages a window.
func Mean(window []float64) float64 {
	if len(window) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

// Lookahead aggregates, for every position, the window of the next size
// observations (optionally shifted forward by shift steps) and aligns the
// aggregate back to that position. Implemented as reverse, trailing rolling
// with partial windows allowed, reverse again. Windows at the chronological
// end aggregate over however many points remain, never dropped.
func Lookahead(values []float64, agg AggFunc, size, shift int) []float64 {
	reversed := reverse(values)
	shifted := shiftBack(reversed, shift)
	rolled := rollingPartial(shifted, agg, size)
	return reverse(rolled)
}

// Rolling applies agg over trailing windows of exactly size observations.
// The first size-1 positions hold NaN.
func Rolling(values []float64, agg AggFunc, size int) []float64 {
	out := nans(len(values))
	if size <= 0 {
		return out
	}
	for i := size - 1; i < len(values); i++ {
		out[i] = agg(values[i-size+1 : i+1])
	}
	return out
}

// rollingPartial applies agg over trailing windows of up to size
// observations, accepting partial windows at the start (min periods 1).
func rollingPartial(values []float64, agg AggFunc, size int) []float64 {
	out := nans(len(values))
	if size <= 0 {
		return out
	}
	for i := range values {
		start := i - size + 1
		if start < 0 {
			start = 0
		}
		win := dropNaN(values[start : i+1])
		if len(win) == 0 {
			continue
		}
		out[i] = agg(win)
	}
	return out
}

// ExpandingMean computes the from-start increasing-window mean.
func ExpandingMean(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		out[i] = sum / float64(i+1)
	}
	return out
}

// ShiftBack moves values toward the start by n positions, leaving NaN in the
// trailing gap. Negative n shifts toward the end instead.
func ShiftBack(values []float64, n int) []float64 {
	return shiftBack(values, n)
}

func shiftBack(values []float64, n int) []float64 {
	out := nans(len(values))
	for i := range values {
		src := i + n
		if src >= 0 && src < len(values) {
			out[i] = values[src]
		}
	}
	return out
}

func reverse(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[len(values)-1-i] = v
	}
	return out
}

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
