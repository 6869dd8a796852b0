package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/storage"
)

func TestRecommendationStore_AppendAndList(t *testing.T) {
	store := NewRecommendationStore()
	ctx := context.Background()

	rec := &domain.Recommendation{
		Ticker:          "TEST",
		Time:            time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Interval:        domain.IntervalHour,
		Periods:         24,
		Batches:         3,
		Price:           101.5,
		ProfitThreshold: 0,
		Buy:             0.85,
		Policy:          "lookahead",
	}

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(got))
	}
	if got[0].Ticker != "TEST" || got[0].Buy != 0.85 {
		t.Errorf("Record mismatch: %+v", got[0])
	}
}

func TestRecommendationStore_ListOrderedByTime(t *testing.T) {
	store := NewRecommendationStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		rec := &domain.Recommendation{Ticker: "TEST", Time: base.Add(offset)}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Time.Before(got[i-1].Time) {
			t.Errorf("Records not ordered by time at %d", i)
		}
	}
}

func TestRecommendationStore_InvalidInput(t *testing.T) {
	store := NewRecommendationStore()
	ctx := context.Background()

	if err := store.Append(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Append(ctx, &domain.Recommendation{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ticker, got %v", err)
	}
}

func TestRecommendationStore_ListCopies(t *testing.T) {
	store := NewRecommendationStore()
	ctx := context.Background()

	rec := &domain.Recommendation{Ticker: "TEST", Price: 100}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got[0].Price = 999

	again, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if again[0].Price != 100 {
		t.Errorf("Stored record mutated through List result: %v", again[0].Price)
	}
}
