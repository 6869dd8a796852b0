// Package marketdata fetches historical OHLCV candles from a brokerage REST
// API. The pipeline consumes it through the CandleSource interface; Client
// implements it against a Tinkoff-style sandbox HTTP API.
package marketdata

import (
	"context"

	"github.com/IvanRychkov/catcher/internal/domain"
)

// CandleSource supplies historical candles for one instrument.
type CandleSource interface {
	// Candles downloads the most recent history: batches consecutive
	// windows of periods candles each at the given interval, returned in
	// strict chronological order. periods <= 0 requests the interval's
	// maximum lookback per batch.
	Candles(ctx context.Context, interval domain.CandleInterval, periods, batches int) ([]domain.Candle, error)

	// Instrument resolves metadata for the configured ticker.
	Instrument(ctx context.Context) (domain.Instrument, error)
}
