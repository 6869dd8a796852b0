package postgres

import (
	"context"
	"fmt"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/storage"
)

// RecommendationStore implements storage.RecommendationStore using PostgreSQL.
type RecommendationStore struct {
	pool *Pool
}

// NewRecommendationStore creates a new RecommendationStore.
func NewRecommendationStore(pool *Pool) *RecommendationStore {
	return &RecommendationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecommendationStore = (*RecommendationStore)(nil)

// Append adds one recommendation record.
func (s *RecommendationStore) Append(ctx context.Context, rec *domain.Recommendation) error {
	if rec == nil || rec.Ticker == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO recommendations (
			ticker, time, interval, periods, batches,
			price, profit_threshold, buy, policy, roc_auc
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.pool.Exec(ctx, query,
		rec.Ticker, rec.Time, string(rec.Interval), rec.Periods, rec.Batches,
		rec.Price, rec.ProfitThreshold, rec.Buy, rec.Policy, rec.ROCAUC,
	)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// List retrieves all records ordered by time ASC.
func (s *RecommendationStore) List(ctx context.Context) ([]*domain.Recommendation, error) {
	query := `
		SELECT ticker, time, interval, periods, batches,
		       price, profit_threshold, buy, policy, roc_auc
		FROM recommendations
		ORDER BY time ASC, id ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Recommendation
	for rows.Next() {
		var (
			rec      domain.Recommendation
			interval string
		)
		err := rows.Scan(
			&rec.Ticker, &rec.Time, &interval, &rec.Periods, &rec.Batches,
			&rec.Price, &rec.ProfitThreshold, &rec.Buy, &rec.Policy, &rec.ROCAUC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		rec.Interval = domain.CandleInterval(interval)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return out, nil
}
