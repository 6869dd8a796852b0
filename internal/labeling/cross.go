// Package labeling turns a feature table into a training table by comparing
// candidate buy timestamps against candidate sell timestamps and evaluating
// the commission-aware profit predicate per pair.
package labeling

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/frame"
	"github.com/IvanRychkov/catcher/internal/profit"
)

// Training table column names.
const (
	// ColProfit is the per-pair 0/1 profit flag attached by CrossProfit.
	ColProfit = "profit"

	// ColFuture is the forward-looking indicator emitted under PolicyFull.
	ColFuture = "future"
)

// ErrNotTimeSeries rejects input whose index is not a genuine time series.
var ErrNotTimeSeries = errors.New("input is not indexed by a strictly increasing time index")

// CrossProfit pairs every buy-candidate row of f with its policy-eligible
// sell-candidate rows and labels each pair with the boolean profit predicate.
//
// Pairs are generated directly from the temporal policy instead of
// materializing the full cross join and filtering:
//
//   - PolicyLookahead: sell index strictly after the buy index;
//   - PolicyLookbehind: sell index at or before the buy index;
//   - PolicyFull: all pairs, with ColFuture marking forward-looking ones.
//
// The result is keyed by buy timestamp and keeps only buy-side columns plus
// ColProfit (and ColFuture under PolicyFull). Each buy timestamp may span
// several rows, one per surviving pair; callers needing a single label per
// timestamp aggregate downstream (see MeanProfitByTime).
func CrossProfit(f *frame.Frame, priceColumn string, policy domain.Policy, commission, threshold float64) (*frame.Frame, error) {
	if !f.IsTimeSeries() {
		return nil, ErrNotTimeSeries
	}
	if _, err := profit.Profitable(0, 0, 0, threshold); err != nil {
		return nil, err
	}

	prices, err := f.Column(priceColumn)
	if err != nil {
		return nil, err
	}

	n := f.Len()
	names := f.Names()

	var buyRows, sellRows []int
	for buy := 0; buy < n; buy++ {
		lo, hi := sellRange(policy, buy, n)
		for sell := lo; sell < hi; sell++ {
			buyRows = append(buyRows, buy)
			sellRows = append(sellRows, sell)
		}
	}

	times := make([]time.Time, len(buyRows))
	for k, buy := range buyRows {
		times[k] = f.Time(buy)
	}
	out := frame.New(times)

	// Buy-side feature columns, repeated per eligible pair.
	for _, name := range names {
		src, _ := f.Column(name)
		col := make([]float64, len(buyRows))
		for k, buy := range buyRows {
			col[k] = src[buy]
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}

	if policy == domain.PolicyFull {
		future := make([]float64, len(buyRows))
		for k := range buyRows {
			if sellRows[k] > buyRows[k] {
				future[k] = 1
			}
		}
		if err := out.AddColumn(ColFuture, future); err != nil {
			return nil, err
		}
	}

	flags := make([]float64, len(buyRows))
	for k := range buyRows {
		ok, err := profit.Profitable(prices[buyRows[k]], prices[sellRows[k]], commission, threshold)
		if err != nil {
			return nil, err
		}
		if ok {
			flags[k] = 1
		}
	}
	if err := out.AddColumn(ColProfit, flags); err != nil {
		return nil, err
	}

	return out, nil
}

// sellRange returns the half-open sell index range eligible for a buy index
// under the policy. Timestamps are strictly increasing, so index order is
// timestamp order.
func sellRange(policy domain.Policy, buy, n int) (lo, hi int) {
	switch policy {
	case domain.PolicyLookbehind:
		return 0, buy + 1
	case domain.PolicyFull:
		return 0, n
	default:
		return buy + 1, n
	}
}

// MeanProfitByTime reduces a CrossProfit table to one value per buy
// timestamp: the fraction of eligible sell prices that were profitable. This
// is the probability-like overlay drawn on the diagnostic chart, distinct
// from the per-pair training labels.
func MeanProfitByTime(f *frame.Frame) ([]time.Time, []float64, error) {
	flags, err := f.Column(ColProfit)
	if err != nil {
		return nil, nil, err
	}

	var (
		times []time.Time
		means []float64
		start int
	)
	all := f.Times()
	for i := 1; i <= len(all); i++ {
		if i < len(all) && all[i].Equal(all[start]) {
			continue
		}
		times = append(times, all[start])
		means = append(means, stat.Mean(flags[start:i], nil))
		start = i
	}
	return times, means, nil
}
