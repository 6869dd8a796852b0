package window

import "math"

// BohmanWeights returns the bohman window of the given length, sampled on
// [-1, 1]. The endpoints carry zero weight, which smoothly tapers the edges
// of a weighted rolling mean.
func BohmanWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for k := 0; k < n; k++ {
		x := math.Abs(-1 + 2*float64(k)/float64(n-1))
		w[k] = (1-x)*math.Cos(math.Pi*x) + math.Sin(math.Pi*x)/math.Pi
	}
	return w
}

// RollingWeightedMean computes a trailing rolling mean of exactly size
// observations weighted by the given kernel. Weights are normalized by their
// sum. The first size-1 positions hold NaN.
func RollingWeightedMean(values []float64, weights []float64) []float64 {
	size := len(weights)
	out := nans(len(values))
	if size == 0 {
		return out
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return out
	}

	for i := size - 1; i < len(values); i++ {
		sum := 0.0
		for k := 0; k < size; k++ {
			sum += values[i-size+1+k] * weights[k]
		}
		out[i] = sum / total
	}
	return out
}
