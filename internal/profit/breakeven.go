package profit

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	breakevenTolerance = 1e-9
	breakevenMaxIter   = 200
)

// MinPriceForProfit returns the smallest sell price at which Net is zero for
// the given buy price, rounded to 2 decimal places (currency precision).
//
// Net is affine in the sell price, so the root could be written in closed
// form as buy*(1+c)/(1-c); the bisection below is seeded at sell=buy and
// kept so the predicate stays the single source of truth for the formula.
func MinPriceForProfit(buy, commission float64) (float64, error) {
	lo := buy
	hi := buy
	if hi == 0 {
		hi = 1
	}

	// Grow the upper bracket until it clears zero net.
	grew := false
	for i := 0; i < breakevenMaxIter; i++ {
		if Net(buy, hi, commission) >= 0 {
			grew = true
			break
		}
		hi *= 2
	}
	if !grew {
		return 0, fmt.Errorf("%w: buy=%v commission=%v", ErrNoConvergence, buy, commission)
	}

	for i := 0; i < breakevenMaxIter; i++ {
		mid := (lo + hi) / 2
		net := Net(buy, mid, commission)
		switch {
		case math.Abs(net) <= breakevenTolerance:
			return roundCurrency(mid), nil
		case net < 0:
			lo = mid
		default:
			hi = mid
		}
	}

	// Bracket collapsed to currency precision even if the net tolerance
	// was never hit exactly.
	if hi-lo <= breakevenTolerance {
		return roundCurrency((lo + hi) / 2), nil
	}
	return 0, fmt.Errorf("%w: buy=%v commission=%v", ErrNoConvergence, buy, commission)
}

// roundCurrency rounds to 2 decimal places, avoiding float drift on the
// half-cent boundary.
func roundCurrency(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
