package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/aggregator"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/debug"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/history"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/repository"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/worker"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const persistTimeout = 30 * time.Second

type CheckerService interface {
	StartAnalysis(ctx context.Context, files []integration.UploadFile) (*models.StartAnalysisResponse, error)
	Cancel()
	Snapshot() session.State
	History() []models.HistoryEntry
	Results() []models.PlagiarismResult
	Summary() models.AnalysisSummary
	Debug(index int) (debug.View, error)
	Runs(ctx context.Context, limit int) ([]models.StoredRun, error)
	StoreDriver() string
	AddListener(l session.Listener)
}

type runMeta struct {
	runID     string
	sessionID string
	files     []string
	startedAt time.Time
}

type checkerService struct {
	analysis  integration.AnalysisClient
	store     repository.ResultStore
	publisher integration.EventPublisher
	pool      *worker.WorkerPool
	namespace string
	logger    zerolog.Logger

	history *history.Recorder
	results *aggregator.Aggregator
	tracker *session.Tracker

	// startMu сериализует запуски
	startMu sync.Mutex

	mu        sync.RWMutex
	current   runMeta
	listeners []session.Listener

	now func() time.Time
}

func NewCheckerService(
	analysis integration.AnalysisClient,
	subscriber session.Subscriber,
	store repository.ResultStore,
	publisher integration.EventPublisher,
	pool *worker.WorkerPool,
	namespace string,
	idleTimeout time.Duration,
	logger zerolog.Logger,
) CheckerService {
	s := &checkerService{
		analysis:  analysis,
		store:     store,
		publisher: publisher,
		pool:      pool,
		namespace: namespace,
		logger:    logger,
		history:   history.NewRecorder(),
		results:   aggregator.New(logger),
		now:       time.Now,
	}

	s.tracker = session.NewTracker(subscriber, s.history, s.results, session.Options{
		IdleTimeout: idleTimeout,
		Sink:        s,
		Listener:    s,
	}, logger)

	return s
}

func (s *checkerService) StartAnalysis(ctx context.Context, files []integration.UploadFile) (*models.StartAnalysisResponse, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	// Закрываем предыдущий поток до новой загрузки
	s.tracker.Reset()
	s.history.Clear()
	s.results.Reset()

	runID := uuid.New().String()
	names := integration.FileNames(files)

	s.logger.Info().
		Str("run_id", runID).
		Strs("files", names).
		Msg("Starting analysis")

	sessionID, err := s.analysis.CheckPlagiarism(ctx, files)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", runID).Msg("Upload failed")
		s.Notify(err)
		return nil, fmt.Errorf("failed to start analysis: %w", err)
	}

	startedAt := s.now()
	s.mu.Lock()
	s.current = runMeta{
		runID:     runID,
		sessionID: sessionID,
		files:     names,
		startedAt: startedAt,
	}
	s.mu.Unlock()

	s.tracker.Start(sessionID)

	return &models.StartAnalysisResponse{
		RunID:     runID,
		SessionID: sessionID,
		StartedAt: startedAt,
	}, nil
}

func (s *checkerService) Cancel() {
	s.tracker.Close()
}

func (s *checkerService) Snapshot() session.State {
	return s.tracker.Snapshot()
}

func (s *checkerService) History() []models.HistoryEntry {
	return s.history.List()
}

func (s *checkerService) Results() []models.PlagiarismResult {
	return s.results.Results()
}

func (s *checkerService) Summary() models.AnalysisSummary {
	return s.results.Summary()
}

func (s *checkerService) Debug(index int) (debug.View, error) {
	return s.tracker.Select(index)
}

func (s *checkerService) Runs(ctx context.Context, limit int) ([]models.StoredRun, error) {
	runs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored runs: %w", err)
	}
	return runs, nil
}

func (s *checkerService) StoreDriver() string {
	return s.store.Driver()
}

func (s *checkerService) AddListener(l session.Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *checkerService) snapshotListeners() []session.Listener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]session.Listener(nil), s.listeners...)
}

// StateChanged и Notify раздают события трекера всем подписчикам.
func (s *checkerService) StateChanged(st session.State) {
	for _, l := range s.snapshotListeners() {
		l.StateChanged(st)
	}
}

func (s *checkerService) Notify(err error) {
	for _, l := range s.snapshotListeners() {
		l.Notify(err)
	}
}

func (s *checkerService) meta(sessionID string) runMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.sessionID != sessionID {
		return runMeta{sessionID: sessionID}
	}
	m := s.current
	m.files = append([]string(nil), m.files...)
	return m
}

// Completed сохраняет результаты и публикует событие в фоне.
// Ошибки только логируются.
func (s *checkerService) Completed(sessionID string, payload models.ResultPayload) {
	m := s.meta(sessionID)
	key := models.RunKey(s.now())

	run := models.StoredRun{
		Key:       key,
		RunID:     m.runID,
		SessionID: sessionID,
		Timestamp: key,
		Files:     m.files,
		Results:   payload.Results,
	}

	log := s.logger.With().
		Str("run_id", m.runID).
		Str("session_id", sessionID).
		Str("key", s.namespace+":"+key).
		Logger()

	s.pool.Submit("persist-run", func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, persistTimeout)
		defer cancel()

		if err := s.store.Save(ctx, run); err != nil {
			log.Error().Err(fmt.Errorf("%w: %w", ErrPersistenceWriteFailed, err)).Msg("Results were not persisted")
			return
		}
		log.Info().Int("results", len(run.Results)).Str("driver", s.store.Driver()).Msg("Results persisted")
	})

	event := &models.SessionCompletedEvent{
		RunID:              m.runID,
		SessionID:          sessionID,
		Status:             string(models.ProgressStatusComplete),
		ResultCount:        len(payload.Results),
		SignificantMatches: payload.Summary.SignificantMatches,
		Files:              m.files,
		CompletedAt:        s.now(),
	}
	s.pool.Submit("publish-completed", func(ctx context.Context) {
		if err := s.publisher.PublishSessionCompleted(ctx, event); err != nil {
			log.Error().Err(err).Msg("Failed to publish session completed event")
		}
	})
}

func (s *checkerService) Failed(sessionID string, cause error) {
	m := s.meta(sessionID)

	event := &models.SessionFailedEvent{
		RunID:     m.runID,
		SessionID: sessionID,
		Error:     cause.Error(),
		FailedAt:  s.now(),
	}
	s.pool.Submit("publish-failed", func(ctx context.Context) {
		if err := s.publisher.PublishSessionFailed(ctx, event); err != nil {
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to publish session failed event")
		}
	})
}
