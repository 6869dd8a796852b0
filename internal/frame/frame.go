// Package frame provides a small column-oriented table keyed by a time index.
// It is the in-memory shape of feature and training tables: every windowing
// and cross-join operation keys off the timestamp, never the row position.
package frame

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Frame errors.
var (
	ErrLengthMismatch  = errors.New("column length does not match index length")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrColumnNotFound  = errors.New("column not found")
)

// Frame is a time-indexed numeric table. Column order is stable. Missing
// values are represented as NaN until trimmed by DropNaNRows.
type Frame struct {
	times []time.Time
	names []string
	cols  map[string][]float64
}

// New creates a frame over a copy of the given time index.
func New(times []time.Time) *Frame {
	t := make([]time.Time, len(times))
	copy(t, times)
	return &Frame{
		times: t,
		cols:  make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.times)
}

// Times returns a copy of the time index.
func (f *Frame) Times() []time.Time {
	t := make([]time.Time, len(f.times))
	copy(t, f.times)
	return t
}

// Time returns the timestamp of row i.
func (f *Frame) Time(i int) time.Time {
	return f.times[i]
}

// Names returns the column names in insertion order.
func (f *Frame) Names() []string {
	n := make([]string, len(f.names))
	copy(n, f.names)
	return n
}

// AddColumn appends a named column. The values slice is copied.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.times) {
		return fmt.Errorf("%w: column %q has %d values, index has %d", ErrLengthMismatch, name, len(values), len(f.times))
	}
	if _, exists := f.cols[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	col := make([]float64, len(values))
	copy(col, values)
	f.names = append(f.names, name)
	f.cols[name] = col
	return nil
}

// Column returns the values of a named column. The returned slice is shared;
// callers must not mutate it.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return col, nil
}

// HasColumn reports whether a column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Value returns the value at (row i, column name).
func (f *Frame) Value(i int, name string) (float64, error) {
	col, err := f.Column(name)
	if err != nil {
		return 0, err
	}
	return col[i], nil
}

// Drop returns a new frame without the named columns. Missing names are
// ignored, mirroring a tolerant column drop on raw OHLCV leftovers.
func (f *Frame) Drop(names ...string) *Frame {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}
	out := New(f.times)
	for _, n := range f.names {
		if dropped[n] {
			continue
		}
		_ = out.AddColumn(n, f.cols[n])
	}
	return out
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := New(f.times)
	for _, n := range f.names {
		_ = out.AddColumn(n, f.cols[n])
	}
	return out
}

// DropNaNRows returns a new frame keeping only rows where every column
// holds a real value. Warm-up rows and shift-induced gaps are trimmed here.
func (f *Frame) DropNaNRows() *Frame {
	keep := make([]int, 0, len(f.times))
	for i := range f.times {
		ok := true
		for _, n := range f.names {
			if math.IsNaN(f.cols[n][i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}

	times := make([]time.Time, len(keep))
	for j, i := range keep {
		times[j] = f.times[i]
	}
	out := New(times)
	for _, n := range f.names {
		col := make([]float64, len(keep))
		for j, i := range keep {
			col[j] = f.cols[n][i]
		}
		_ = out.AddColumn(n, col)
	}
	return out
}

// IsTimeSeries reports whether the index is a genuine time series:
// non-empty with strictly increasing timestamps.
func (f *Frame) IsTimeSeries() bool {
	if len(f.times) == 0 {
		return false
	}
	for i := 1; i < len(f.times); i++ {
		if !f.times[i].After(f.times[i-1]) {
			return false
		}
	}
	return true
}

// Matrix exports the named columns as a dense row-major matrix, rows aligned
// to the time index. With no names given, all columns are exported in order.
func (f *Frame) Matrix(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		names = f.names
	}
	cols := make([][]float64, len(names))
	for j, n := range names {
		col, err := f.Column(n)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	m := mat.NewDense(len(f.times), len(names), nil)
	for i := range f.times {
		for j := range names {
			m.Set(i, j, cols[j][i])
		}
	}
	return m, nil
}
