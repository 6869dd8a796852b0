package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/storage"
)

// CandleArchive implements storage.CandleArchive using ClickHouse.
type CandleArchive struct {
	conn *Conn
}

// NewCandleArchive creates a new CandleArchive.
func NewCandleArchive(conn *Conn) *CandleArchive {
	return &CandleArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleArchive = (*CandleArchive)(nil)

// InsertBulk adds candles, failing the whole batch on any duplicate
// (ticker, timestamp), intra-batch duplicates included.
func (s *CandleArchive) InsertBulk(ctx context.Context, ticker string, interval domain.CandleInterval, candles []domain.Candle) error {
	if ticker == "" {
		return storage.ErrInvalidInput
	}
	if len(candles) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(candles))
	for _, candle := range candles {
		ts := candle.Time.UnixMilli()
		if _, exists := seen[ts]; exists {
			return storage.ErrDuplicateKey
		}
		seen[ts] = struct{}{}

		exists, err := s.exists(ctx, ticker, ts)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candles (
			ticker, interval, timestamp_ms, open, close, high, low, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, candle := range candles {
		err = batch.Append(
			ticker, string(interval), uint64(candle.Time.UnixMilli()),
			candle.Open, candle.Close, candle.High, candle.Low, candle.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves candles for a ticker within [from, to] inclusive,
// ordered by timestamp ASC.
func (s *CandleArchive) GetByTimeRange(ctx context.Context, ticker string, from, to time.Time) ([]domain.Candle, error) {
	query := `
		SELECT timestamp_ms, open, close, high, low, volume
		FROM candles
		WHERE ticker = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`
	rows, err := s.conn.Query(ctx, query, ticker, uint64(from.UnixMilli()), uint64(to.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var out []domain.Candle
	for rows.Next() {
		var (
			ts     uint64
			candle domain.Candle
		)
		if err := rows.Scan(&ts, &candle.Open, &candle.Close, &candle.High, &candle.Low, &candle.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		candle.Time = time.UnixMilli(int64(ts)).UTC()
		out = append(out, candle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}
	return out, nil
}

func (s *CandleArchive) exists(ctx context.Context, ticker string, timestampMs int64) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `
		SELECT count() FROM candles WHERE ticker = ? AND timestamp_ms = ?
	`, ticker, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
