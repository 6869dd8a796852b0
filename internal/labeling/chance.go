package labeling

import (
	"github.com/IvanRychkov/catcher/internal/profit"
	"github.com/IvanRychkov/catcher/internal/window"
)

// ProfitChanceLookahead estimates, for every position, the share of the next
// windowSize-1 prices at which selling would clear commission. The last
// position has no future points and scores 0.
//
// This bounded-window mean is a separate labeling strategy from CrossProfit:
// the cross table flags individual pairs, while this helper collapses a
// fixed lookahead window into a chance value. The two are not interchangeable
// and are kept apart on purpose.
func ProfitChanceLookahead(prices []float64, windowSize int, commission float64) []float64 {
	return window.Lookahead(prices, func(win []float64) float64 {
		// The reversed trailing window puts "now" last; everything before
		// it is the future.
		if len(win) < 2 {
			return 0
		}
		now := win[len(win)-1]
		future := win[:len(win)-1]
		profitable := 0
		for _, sell := range future {
			if profit.Net(now, sell, commission) >= 0 {
				profitable++
			}
		}
		return float64(profitable) / float64(len(future))
	}, windowSize, 0)
}
