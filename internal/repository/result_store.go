package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
)

var (
	ErrRunNotFound   = errors.New("stored run not found")
	ErrUnknownDriver = errors.New("unknown store driver")
)

const DefaultListLimit = 20

// ResultStore - внешнее хранилище завершенных запусков, ключ - время завершения.
type ResultStore interface {
	Save(ctx context.Context, run models.StoredRun) error
	// List возвращает запуски от новых к старым.
	List(ctx context.Context, limit int) ([]models.StoredRun, error)
	Get(ctx context.Context, key string) (*models.StoredRun, error)
	Driver() string
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func validateRun(run models.StoredRun) error {
	if run.Key == "" {
		return fmt.Errorf("stored run has empty key")
	}
	return nil
}

func sortNewestFirst(runs []models.StoredRun) {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Key > runs[j].Key })
}
