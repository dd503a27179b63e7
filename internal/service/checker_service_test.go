package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/worker"
	"github.com/rs/zerolog"
)

const (
	processingFrame = `{"status":"processing","stage":"Comparing","progress":50}`
	completeFrame   = `{"status":"complete","results":{"results":[{"file1":"a.py","file2":"b.py","user1":"alice","user2":"bob","similarity":0.8,"similar_segments":["x = 1"]},{"file1":"a.py","file2":"c.py","user1":"alice","user2":"carol","similarity":0.1,"similar_segments":[]}],"summary":{"total_submissions":3,"total_files":3,"total_comparisons":2,"significant_matches":1}}}`
)

type fakeAnalysis struct {
	mu        sync.Mutex
	sessionID string
	err       error
	calls     int
}

func (f *fakeAnalysis) CheckPlagiarism(_ context.Context, files []integration.UploadFile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s-%d", f.sessionID, f.calls), nil
}

type fakeSubscription struct {
	sessionID string
	onFrame   func([]byte)
	onClose   func(error)
}

type fakeSubscriber struct {
	mu   sync.Mutex
	subs []fakeSubscription
}

func (f *fakeSubscriber) Subscribe(_ context.Context, sessionID string, h session.StreamHandlers) session.CancelFunc {
	f.mu.Lock()
	f.subs = append(f.subs, fakeSubscription{sessionID, h.OnFrame, h.OnClose})
	f.mu.Unlock()
	return func() {}
}

func (f *fakeSubscriber) last() fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[len(f.subs)-1]
}

func (f *fakeSubscriber) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type fakeStore struct {
	mu    sync.Mutex
	saved []models.StoredRun
	calls int
	err   error
}

func (s *fakeStore) Save(_ context.Context, run models.StoredRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, run)
	return nil
}

func (s *fakeStore) List(context.Context, int) ([]models.StoredRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.StoredRun(nil), s.saved...), nil
}

func (s *fakeStore) Get(context.Context, string) (*models.StoredRun, error) { return nil, nil }
func (s *fakeStore) Driver() string                                         { return "fake" }
func (s *fakeStore) Close() error                                           { return nil }

type fakePublisher struct {
	mu        sync.Mutex
	completed []*models.SessionCompletedEvent
	failed    []*models.SessionFailedEvent
}

func (p *fakePublisher) PublishSessionCompleted(_ context.Context, e *models.SessionCompletedEvent) error {
	p.mu.Lock()
	p.completed = append(p.completed, e)
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) PublishSessionFailed(_ context.Context, e *models.SessionFailedEvent) error {
	p.mu.Lock()
	p.failed = append(p.failed, e)
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type errListener struct {
	mu   sync.Mutex
	errs []error
}

func (l *errListener) StateChanged(session.State) {}

func (l *errListener) Notify(err error) {
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()
}

func (l *errListener) seen() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]error(nil), l.errs...)
}

type fixture struct {
	svc       CheckerService
	analysis  *fakeAnalysis
	sub       *fakeSubscriber
	store     *fakeStore
	publisher *fakePublisher
	pool      *worker.WorkerPool
	listener  *errListener
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		analysis:  &fakeAnalysis{sessionID: "sess"},
		sub:       &fakeSubscriber{},
		store:     &fakeStore{},
		publisher: &fakePublisher{},
		pool:      worker.NewWorkerPool(2, zerolog.Nop()),
		listener:  &errListener{},
	}
	f.pool.Start(context.Background())
	t.Cleanup(func() { f.pool.Stop() })

	f.svc = NewCheckerService(f.analysis, f.sub, f.store, f.publisher, f.pool, "plagiarism_results", 0, zerolog.Nop())
	f.svc.AddListener(f.listener)
	return f
}

var uploads = []integration.UploadFile{
	{Name: "alice.zip", Content: []byte("a")},
	{Name: "bob.zip", Content: []byte("b")},
}

func TestStartAnalysisCompletesAndPersists(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.StartAnalysis(context.Background(), uploads)
	if err != nil {
		t.Fatalf("StartAnalysis: %v", err)
	}
	if resp.SessionID != "sess-1" || resp.RunID == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	sub := f.sub.last()
	if sub.sessionID != "sess-1" {
		t.Fatalf("subscribed to %q", sub.sessionID)
	}
	sub.onFrame([]byte(processingFrame))
	sub.onFrame([]byte(completeFrame))

	if n := len(f.svc.History()); n != 2 {
		t.Fatalf("history len = %d; want 2", n)
	}
	if got := f.svc.Results(); len(got) != 2 || got[1].User2 != "carol" {
		t.Fatalf("results = %+v", got)
	}
	if f.svc.Summary().SignificantMatches != 1 {
		t.Fatalf("summary = %+v", f.svc.Summary())
	}
	if st := f.svc.Snapshot(); st.Processing || st.Phase != session.PhaseCompleted {
		t.Fatalf("state = %+v", st)
	}

	f.pool.Stop()

	runs, _ := f.store.List(context.Background(), 10)
	if len(runs) != 1 {
		t.Fatalf("stored runs = %d; want 1", len(runs))
	}
	run := runs[0]
	if run.RunID != resp.RunID || run.SessionID != "sess-1" {
		t.Fatalf("stored run ids = %s/%s", run.RunID, run.SessionID)
	}
	if len(run.Files) != 2 || run.Files[0] != "alice.zip" || len(run.Results) != 2 {
		t.Fatalf("stored run = %+v", run)
	}
	if run.Key != run.Timestamp {
		t.Fatalf("key %q differs from timestamp %q", run.Key, run.Timestamp)
	}
	if _, err := time.Parse(models.RunKeyLayout, run.Key); err != nil {
		t.Fatalf("key is not an ISO timestamp: %v", err)
	}

	if len(f.publisher.completed) != 1 || f.publisher.completed[0].ResultCount != 2 {
		t.Fatalf("completed events = %+v", f.publisher.completed)
	}
	if len(f.listener.seen()) != 0 {
		t.Fatalf("unexpected notifications %v", f.listener.seen())
	}
}

func TestStartAnalysisUploadFailure(t *testing.T) {
	f := newFixture(t)
	f.analysis.err = fmt.Errorf("%w: status 500", integration.ErrUploadFailed)

	_, err := f.svc.StartAnalysis(context.Background(), uploads)
	if !errors.Is(err, integration.ErrUploadFailed) {
		t.Fatalf("error = %v; want ErrUploadFailed", err)
	}

	if f.sub.count() != 0 {
		t.Fatalf("stream opened after failed upload")
	}
	errs := f.listener.seen()
	if len(errs) != 1 || !errors.Is(errs[0], integration.ErrUploadFailed) {
		t.Fatalf("notifications = %v", errs)
	}
	if st := f.svc.Snapshot(); st.Processing || st.Phase != session.PhaseIdle {
		t.Fatalf("state = %+v", st)
	}
}

func TestStartAnalysisRequiresFiles(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.StartAnalysis(context.Background(), nil); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("error = %v; want ErrNoFiles", err)
	}
	if f.analysis.calls != 0 {
		t.Fatalf("upload attempted without files")
	}
}

func TestPersistenceFailureIsNotSurfaced(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("disk full")

	if _, err := f.svc.StartAnalysis(context.Background(), uploads); err != nil {
		t.Fatalf("StartAnalysis: %v", err)
	}
	f.sub.last().onFrame([]byte(completeFrame))
	f.pool.Stop()

	if f.store.calls != 1 {
		t.Fatalf("Save called %d times; want 1 with no retry", f.store.calls)
	}
	if len(f.listener.seen()) != 0 {
		t.Fatalf("persistence failure surfaced: %v", f.listener.seen())
	}
	if len(f.svc.Results()) != 2 {
		t.Fatalf("results lost after persistence failure")
	}
}

func TestNewRunClearsPreviousState(t *testing.T) {
	f := newFixture(t)

	f.svc.StartAnalysis(context.Background(), uploads)
	first := f.sub.last()
	first.onFrame([]byte(completeFrame))

	if _, err := f.svc.StartAnalysis(context.Background(), uploads); err != nil {
		t.Fatalf("second StartAnalysis: %v", err)
	}

	if len(f.svc.History()) != 0 || len(f.svc.Results()) != 0 {
		t.Fatalf("previous run leaked into new run")
	}
	if st := f.svc.Snapshot(); st.SessionID != "sess-2" || !st.Processing {
		t.Fatalf("state = %+v", st)
	}

	// кадр старого потока не попадает в новую сессию
	first.onFrame([]byte(processingFrame))
	if len(f.svc.History()) != 0 {
		t.Fatalf("frame from previous stream recorded")
	}
}

func TestFailedSessionPublishesEvent(t *testing.T) {
	f := newFixture(t)

	f.svc.StartAnalysis(context.Background(), uploads)
	f.sub.last().onFrame([]byte(`{"status":"error","message":"OOM"}`))
	f.pool.Stop()

	if len(f.publisher.failed) != 1 {
		t.Fatalf("failed events = %d; want 1", len(f.publisher.failed))
	}
	errs := f.listener.seen()
	if len(errs) != 1 || !errors.Is(errs[0], session.ErrServerReported) {
		t.Fatalf("notifications = %v", errs)
	}
}

func TestDebugIndex(t *testing.T) {
	f := newFixture(t)

	f.svc.StartAnalysis(context.Background(), uploads)
	f.sub.last().onFrame([]byte(completeFrame))

	view, err := f.svc.Debug(0)
	if err != nil {
		t.Fatalf("Debug(0): %v", err)
	}
	if view.User2 != "bob" || view.MatchingLines != 1 {
		t.Fatalf("view = %+v", view)
	}
	if _, err := f.svc.Debug(7); !errors.Is(err, session.ErrResultIndexOutOfRange) {
		t.Fatalf("Debug(7) error = %v", err)
	}
}
