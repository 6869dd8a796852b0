// Package memory provides in-memory store implementations for tests and
// single-run pipelines that do not need persistence.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/storage"
)

// RecommendationStore is an in-memory implementation of
// storage.RecommendationStore.
type RecommendationStore struct {
	mu   sync.RWMutex
	recs []*domain.Recommendation
}

// NewRecommendationStore creates an empty in-memory recommendation log.
func NewRecommendationStore() *RecommendationStore {
	return &RecommendationStore{}
}

var _ storage.RecommendationStore = (*RecommendationStore)(nil)

// Append adds one recommendation record.
func (s *RecommendationStore) Append(_ context.Context, rec *domain.Recommendation) error {
	if rec == nil || rec.Ticker == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	recCopy := *rec
	s.recs = append(s.recs, &recCopy)
	return nil
}

// List retrieves all records ordered by time ASC.
func (s *RecommendationStore) List(_ context.Context) ([]*domain.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Recommendation, len(s.recs))
	for i, rec := range s.recs {
		recCopy := *rec
		out[i] = &recCopy
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out, nil
}
