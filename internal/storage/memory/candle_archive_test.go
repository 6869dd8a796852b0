package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/storage"
)

func candleAt(ts time.Time, open float64) domain.Candle {
	return domain.Candle{Time: ts, Open: open, Close: open + 1, High: open + 2, Low: open - 1, Volume: 10}
}

func TestCandleArchive_InsertAndQuery(t *testing.T) {
	archive := NewCandleArchive()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	candles := []domain.Candle{
		candleAt(base, 100),
		candleAt(base.Add(time.Hour), 101),
		candleAt(base.Add(2*time.Hour), 102),
	}
	if err := archive.InsertBulk(ctx, "TEST", domain.IntervalHour, candles); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := archive.GetByTimeRange(ctx, "TEST", base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 candles in range, got %d", len(got))
	}
	if got[0].Open != 100 || got[1].Open != 101 {
		t.Errorf("Wrong candles or order: %+v", got)
	}
}

func TestCandleArchive_DuplicateKey(t *testing.T) {
	archive := NewCandleArchive()
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := archive.InsertBulk(ctx, "TEST", domain.IntervalHour, []domain.Candle{candleAt(ts, 100)}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := archive.InsertBulk(ctx, "TEST", domain.IntervalHour, []domain.Candle{candleAt(ts, 200)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same timestamp under another ticker is fine.
	if err := archive.InsertBulk(ctx, "OTHER", domain.IntervalHour, []domain.Candle{candleAt(ts, 100)}); err != nil {
		t.Errorf("Insert under another ticker failed: %v", err)
	}
}

func TestCandleArchive_IntraBatchDuplicate(t *testing.T) {
	archive := NewCandleArchive()
	ctx := context.Background()

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	err := archive.InsertBulk(ctx, "TEST", domain.IntervalHour, []domain.Candle{candleAt(ts, 100), candleAt(ts, 101)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// The failed batch must not be partially applied.
	got, err := archive.GetByTimeRange(ctx, "TEST", ts.Add(-time.Hour), ts.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty archive after failed batch, got %d candles", len(got))
	}
}

func TestCandleArchive_EmptyCases(t *testing.T) {
	archive := NewCandleArchive()
	ctx := context.Background()

	if err := archive.InsertBulk(ctx, "", domain.IntervalHour, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ticker, got %v", err)
	}
	if err := archive.InsertBulk(ctx, "TEST", domain.IntervalHour, nil); err != nil {
		t.Errorf("Empty batch must be a no-op, got %v", err)
	}

	got, err := archive.GetByTimeRange(ctx, "UNKNOWN", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no candles for unknown ticker, got %d", len(got))
	}
}
