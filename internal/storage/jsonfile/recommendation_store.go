// Package jsonfile persists the recommendation log as a single JSON array
// file: created on first append, otherwise read, extended and rewritten so
// the file always holds one valid array.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/storage"
)

// ErrNotArray is returned when the existing file does not hold a JSON array.
var ErrNotArray = errors.New("result log file does not contain a JSON array")

// RecommendationStore is a JSON-array-file implementation of
// storage.RecommendationStore.
type RecommendationStore struct {
	mu   sync.Mutex
	path string
}

// NewRecommendationStore creates a store writing to path. The file is not
// touched until the first append.
func NewRecommendationStore(path string) *RecommendationStore {
	return &RecommendationStore{path: path}
}

var _ storage.RecommendationStore = (*RecommendationStore)(nil)

// Append reads the existing array (if any), appends one record and rewrites
// the file. A missing file is created with a single-element array.
func (s *RecommendationStore) Append(_ context.Context, rec *domain.Recommendation) error {
	if rec == nil || rec.Ticker == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return err
	}
	recs = append(recs, rec)

	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal result log: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write result log: %w", err)
	}
	return nil
}

// List retrieves all records ordered by time ASC. A missing file is an empty log.
func (s *RecommendationStore) List(_ context.Context) ([]*domain.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Time.Before(recs[j].Time)
	})
	return recs, nil
}

func (s *RecommendationStore) read() ([]*domain.Recommendation, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read result log: %w", err)
	}

	var recs []*domain.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotArray, s.path)
	}
	return recs, nil
}
