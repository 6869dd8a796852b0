// Package profit implements the commission-aware profit predicate and the
// breakeven sell-price solver. Both legs of a trade are charged the
// proportional broker commission; taxes are not modeled.
package profit

import (
	"errors"
	"fmt"
)

// Predicate errors.
var (
	// ErrNegativeThreshold rejects thresholds below zero: a negative
	// threshold would accept a loss as profit.
	ErrNegativeThreshold = errors.New("negative profit threshold would accept a loss as profit")

	// ErrNoConvergence is returned when the breakeven search exhausts its
	// iteration budget.
	ErrNoConvergence = errors.New("breakeven search did not converge")
)

// Net returns the net result of buying at buy and selling at sell with a
// proportional commission charged on both legs:
//
//	net = sell - buy - (sell + buy) * commission
func Net(buy, sell, commission float64) float64 {
	return sell - buy - (sell+buy)*commission
}

// Profitable reports whether selling clears the threshold after commission.
// The comparison is exact: threshold 0 admits exact-zero profit.
func Profitable(buy, sell, commission, threshold float64) (bool, error) {
	if threshold < 0 {
		return false, fmt.Errorf("%w: %v", ErrNegativeThreshold, threshold)
	}
	return Net(buy, sell, commission) >= threshold, nil
}

// NetSeries computes Net for one buy price against a series of sell prices.
func NetSeries(buy float64, sells []float64, commission float64) []float64 {
	out := make([]float64, len(sells))
	for i, sell := range sells {
		out[i] = Net(buy, sell, commission)
	}
	return out
}

// ProfitableSeries computes Profitable for one buy price against a series of
// sell prices.
func ProfitableSeries(buy float64, sells []float64, commission, threshold float64) ([]bool, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeThreshold, threshold)
	}
	out := make([]bool, len(sells))
	for i, sell := range sells {
		out[i] = Net(buy, sell, commission) >= threshold
	}
	return out, nil
}
