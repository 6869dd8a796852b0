package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/storage"
)

// CandleArchive is an in-memory implementation of storage.CandleArchive.
type CandleArchive struct {
	mu   sync.RWMutex
	data map[candleKey]domain.Candle
}

type candleKey struct {
	ticker string
	ts     int64 // unix nanoseconds
}

// NewCandleArchive creates an empty in-memory candle archive.
func NewCandleArchive() *CandleArchive {
	return &CandleArchive{data: make(map[candleKey]domain.Candle)}
}

var _ storage.CandleArchive = (*CandleArchive)(nil)

// InsertBulk adds candles, failing the whole batch on any duplicate
// (ticker, timestamp), intra-batch duplicates included.
func (s *CandleArchive) InsertBulk(_ context.Context, ticker string, _ domain.CandleInterval, candles []domain.Candle) error {
	if ticker == "" {
		return storage.ErrInvalidInput
	}
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[candleKey]struct{}, len(candles))
	for _, candle := range candles {
		key := candleKey{ticker: ticker, ts: candle.Time.UnixNano()}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[key]; exists {
			return storage.ErrDuplicateKey
		}
		batch[key] = struct{}{}
	}
	for _, candle := range candles {
		s.data[candleKey{ticker: ticker, ts: candle.Time.UnixNano()}] = candle
	}
	return nil
}

// GetByTimeRange retrieves candles for a ticker within [from, to] inclusive,
// ordered by timestamp ASC.
func (s *CandleArchive) GetByTimeRange(_ context.Context, ticker string, from, to time.Time) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Candle
	for key, candle := range s.data {
		if key.ticker != ticker {
			continue
		}
		if candle.Time.Before(from) || candle.Time.After(to) {
			continue
		}
		out = append(out, candle)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out, nil
}
