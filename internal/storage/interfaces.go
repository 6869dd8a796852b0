// Package storage defines the persistence boundary of the pipeline: the
// append-only recommendation result log and the optional archive of
// downloaded candle batches.
package storage

import (
	"context"
	"time"

	"github.com/IvanRychkov/catcher/internal/domain"
)

// RecommendationStore is the append-only result log. One record is appended
// per pipeline invocation.
type RecommendationStore interface {
	// Append adds one recommendation record.
	Append(ctx context.Context, rec *domain.Recommendation) error

	// List retrieves all records ordered by time ASC.
	List(ctx context.Context) ([]*domain.Recommendation, error)
}

// CandleArchive persists downloaded OHLCV batches keyed by (ticker, timestamp).
type CandleArchive interface {
	// InsertBulk adds candles for a ticker and interval. Returns
	// ErrDuplicateKey if any (ticker, timestamp) already exists.
	InsertBulk(ctx context.Context, ticker string, interval domain.CandleInterval, candles []domain.Candle) error

	// GetByTimeRange retrieves candles for a ticker within [from, to]
	// (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, ticker string, from, to time.Time) ([]domain.Candle, error)
}
