package domain

import "time"

// Candle represents one OHLCV record for a single time interval.
// Corresponds to one row of the market-data candles response.
type Candle struct {
	Time   time.Time // interval bucket start
	Open   float64   // canonical price column for feature building
	Close  float64
	High   float64
	Low    float64
	Volume float64
}

// SortedByTime reports whether candles form a proper time series:
// timestamps strictly increasing, one candle per bucket.
func SortedByTime(candles []Candle) bool {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			return false
		}
	}
	return true
}
