package domain

import (
	"fmt"
	"time"
)

// CandleInterval is a candle aggregation granularity accepted by the
// market-data API. Each interval has a maximum lookback window per request.
type CandleInterval string

// Supported candle intervals.
const (
	Interval1Min  CandleInterval = "1min"
	Interval2Min  CandleInterval = "2min"
	Interval3Min  CandleInterval = "3min"
	Interval5Min  CandleInterval = "5min"
	Interval10Min CandleInterval = "10min"
	Interval15Min CandleInterval = "15min"
	Interval30Min CandleInterval = "30min"
	IntervalHour  CandleInterval = "hour"
	IntervalDay   CandleInterval = "day"
	IntervalWeek  CandleInterval = "week"
	IntervalMonth CandleInterval = "month"
)

const day = 24 * time.Hour

// intervalSpec holds the bucket step and the maximum range one candles
// request may cover for an interval.
type intervalSpec struct {
	step      time.Duration
	maxLength time.Duration
}

var intervalSpecs = map[CandleInterval]intervalSpec{
	Interval1Min:  {step: time.Minute, maxLength: day},
	Interval2Min:  {step: 2 * time.Minute, maxLength: day},
	Interval3Min:  {step: 3 * time.Minute, maxLength: day},
	Interval5Min:  {step: 5 * time.Minute, maxLength: day},
	Interval10Min: {step: 10 * time.Minute, maxLength: day},
	Interval15Min: {step: 15 * time.Minute, maxLength: day},
	Interval30Min: {step: 30 * time.Minute, maxLength: day},
	IntervalHour:  {step: time.Hour, maxLength: 7 * day},
	IntervalDay:   {step: day, maxLength: 365 * day},
	IntervalWeek:  {step: 7 * day, maxLength: 104 * 7 * day},
	IntervalMonth: {step: 30 * day, maxLength: 3650 * day},
}

// Valid reports whether the interval is one of the supported granularities.
func (i CandleInterval) Valid() bool {
	_, ok := intervalSpecs[i]
	return ok
}

// Step returns the duration of one candle bucket.
func (i CandleInterval) Step() time.Duration {
	return intervalSpecs[i].step
}

// MaxLength returns the maximum time range a single candles request may
// cover for this interval.
func (i CandleInterval) MaxLength() time.Duration {
	return intervalSpecs[i].maxLength
}

// ParseCandleInterval validates a raw interval string.
func ParseCandleInterval(s string) (CandleInterval, error) {
	i := CandleInterval(s)
	if !i.Valid() {
		return "", fmt.Errorf("unknown candle interval %q", s)
	}
	return i, nil
}
