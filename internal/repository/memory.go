package repository

import (
	"context"
	"sync"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
)

// MemoryStore живет только в пределах процесса.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]models.StoredRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]models.StoredRun)}
}

func (s *MemoryStore) Save(_ context.Context, run models.StoredRun) error {
	if err := validateRun(run); err != nil {
		return err
	}

	s.mu.Lock()
	s.runs[run.Key] = cloneRun(run)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]models.StoredRun, error) {
	s.mu.RLock()
	runs := make([]models.StoredRun, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, cloneRun(r))
	}
	s.mu.RUnlock()

	sortNewestFirst(runs)
	if limit = normalizeLimit(limit); len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.StoredRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[key]
	if !ok {
		return nil, ErrRunNotFound
	}
	out := cloneRun(r)
	return &out, nil
}

func (s *MemoryStore) Driver() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }

func cloneRun(r models.StoredRun) models.StoredRun {
	r.Files = append([]string(nil), r.Files...)
	r.Results = append([]models.PlagiarismResult(nil), r.Results...)
	return r
}

// NoneStore отбрасывает все записи.
type NoneStore struct{}

func (NoneStore) Save(context.Context, models.StoredRun) error { return nil }

func (NoneStore) List(context.Context, int) ([]models.StoredRun, error) { return nil, nil }

func (NoneStore) Get(context.Context, string) (*models.StoredRun, error) {
	return nil, ErrRunNotFound
}

func (NoneStore) Driver() string { return "none" }

func (NoneStore) Close() error { return nil }
