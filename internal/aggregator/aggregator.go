package aggregator

import (
	"errors"
	"sync"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/rs/zerolog"
)

var ErrResultIndexOutOfRange = errors.New("result index out of range")

// Aggregator хранит итоговый снимок запуска.
// Следующий запуск полностью заменяет снимок, без слияния.
type Aggregator struct {
	mu      sync.RWMutex
	results []models.PlagiarismResult
	summary models.AnalysisSummary
	logger  zerolog.Logger
}

func New(logger zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

func (a *Aggregator) Store(results []models.PlagiarismResult, summary models.AnalysisSummary) {
	if err := summary.Validate(); err != nil {
		a.logger.Warn().Err(err).Msg("Summary violates invariants, storing as delivered")
	}

	snapshot := make([]models.PlagiarismResult, len(results))
	copy(snapshot, results)

	a.mu.Lock()
	a.results = snapshot
	a.summary = summary
	a.mu.Unlock()

	a.logger.Debug().
		Int("results", len(snapshot)).
		Int("significant_matches", summary.SignificantMatches).
		Msg("Result snapshot stored")
}

// Results возвращает копию в порядке доставки.
func (a *Aggregator) Results() []models.PlagiarismResult {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.PlagiarismResult, len(a.results))
	copy(out, a.results)
	return out
}

func (a *Aggregator) Result(index int) (models.PlagiarismResult, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if index < 0 || index >= len(a.results) {
		return models.PlagiarismResult{}, ErrResultIndexOutOfRange
	}
	return a.results[index], nil
}

func (a *Aggregator) Summary() models.AnalysisSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.summary
}

func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.results)
}

func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.results = nil
	a.summary = models.AnalysisSummary{}
	a.mu.Unlock()
}
