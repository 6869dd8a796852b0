// Package features derives rolling statistics from a raw price column,
// producing a feature table aligned to the original time index. Rows lacking
// full window history are dropped, so emitted tables carry no missing values.
package features

import (
	"errors"
	"fmt"

	"github.com/IvanRychkov/catcher/internal/frame"
	"github.com/IvanRychkov/catcher/internal/window"
)

// ErrInvalidWindowSizes rejects window size lists with non-positive entries.
var ErrInvalidWindowSizes = errors.New("window sizes must be positive integers")

// Feature column names.
const (
	ColDeviationExpanding = "deviation_expanding"
	rollingDeviationFmt   = "deviation_rolling_%d"
)

// Options configures feature derivation.
type Options struct {
	// WindowSizes lists the rolling mean window lengths. May be empty, in
	// which case only the expanding-mean deviation is derived.
	WindowSizes []int

	// ShiftWindows centers each rolling mean on its window by shifting it
	// back half the window size instead of letting it trail.
	ShiftWindows bool
}

// RollingDeviationColumn names the derived column for a window size.
func RollingDeviationColumn(size int) string {
	return fmt.Sprintf(rollingDeviationFmt, size)
}

// Build derives deviation features from priceColumn and returns a new frame
// holding the input columns plus the derived ones, trimmed of any row with
// missing history. The input frame is left untouched.
func Build(f *frame.Frame, priceColumn string, opts Options) (*frame.Frame, error) {
	for _, size := range opts.WindowSizes {
		if size <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidWindowSizes, size)
		}
	}

	prices, err := f.Column(priceColumn)
	if err != nil {
		return nil, err
	}

	out := f.Clone()

	// Deviation from the expanding mean: (price - mean) / mean.
	expanding := window.ExpandingMean(prices)
	if err := out.AddColumn(ColDeviationExpanding, deviation(prices, expanding)); err != nil {
		return nil, err
	}

	// Per window size: a bohman-weighted rolling mean, optionally shifted
	// back half a window to center it, then the deviation ratio. The mean
	// itself is a helper and is not emitted.
	for _, size := range opts.WindowSizes {
		rolled := window.RollingWeightedMean(prices, window.BohmanWeights(size))
		if opts.ShiftWindows {
			rolled = window.ShiftBack(rolled, size/2)
		}
		if err := out.AddColumn(RollingDeviationColumn(size), deviation(prices, rolled)); err != nil {
			return nil, err
		}
	}

	return out.DropNaNRows(), nil
}

// deviation computes (value - mean) / mean elementwise. NaN means propagate.
func deviation(values, means []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		out[i] = (values[i] - means[i]) / means[i]
	}
	return out
}
