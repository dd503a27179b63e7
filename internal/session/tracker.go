package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/aggregator"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/debug"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/history"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/rs/zerolog"
)

const DefaultIdleTimeout = 5 * time.Minute

type CancelFunc func()

// StreamHandlers - колбэки одной подписки.
// OnFrame вызывается последовательно из одной горутины.
// OnAlive сообщает о любой активности соединения, в том числе keepalive-комментариях,
// и может прийти из другой горутины.
// OnClose вызывается ровно один раз при завершении транспорта (в том числе при ошибке подключения).
type StreamHandlers struct {
	OnFrame func([]byte)
	OnAlive func()
	OnClose func(error)
}

// Subscriber - транспорт потока прогресса. Subscribe не блокирует.
type Subscriber interface {
	Subscribe(ctx context.Context, sessionID string, h StreamHandlers) CancelFunc
}

// Sink получает терминальные исходы сессии.
type Sink interface {
	Completed(sessionID string, payload models.ResultPayload)
	Failed(sessionID string, err error)
}

type Listener interface {
	StateChanged(State)
	Notify(error)
}

type Options struct {
	// 0 отключает таймаут
	IdleTimeout time.Duration
	Sink        Sink
	Listener    Listener
}

// Tracker ведет одну сессию анализа поверх потока прогресса.
type Tracker struct {
	mu sync.Mutex

	subscriber Subscriber
	history    *history.Recorder
	results    *aggregator.Aggregator
	opts       Options
	logger     zerolog.Logger

	state      State
	generation uint64
	open       bool
	cancel     CancelFunc
	ctxCancel  context.CancelFunc

	idle    *time.Timer
	idleSeq uint64
	frames  int
}

func NewTracker(
	subscriber Subscriber,
	recorder *history.Recorder,
	results *aggregator.Aggregator,
	opts Options,
	logger zerolog.Logger,
) *Tracker {
	return &Tracker{
		subscriber: subscriber,
		history:    recorder,
		results:    results,
		opts:       opts,
		logger:     logger,
		state:      Initial(),
	}
}

// effects собираются под блокировкой и выполняются после нее.
type effects struct {
	state     *State
	notify    error
	completed *models.ResultPayload
	failed    error
	sessionID string
	release   []func()
}

func (t *Tracker) apply(fx effects) {
	for _, f := range fx.release {
		f()
	}

	if fx.state != nil && t.opts.Listener != nil {
		t.opts.Listener.StateChanged(*fx.state)
	}
	if fx.notify != nil && t.opts.Listener != nil {
		t.opts.Listener.Notify(fx.notify)
	}

	if t.opts.Sink == nil {
		return
	}
	if fx.completed != nil {
		t.opts.Sink.Completed(fx.sessionID, *fx.completed)
	}
	if fx.failed != nil {
		t.opts.Sink.Failed(fx.sessionID, fx.failed)
	}
}

// Start открывает поток для sessionID, предварительно закрыв текущий.
func (t *Tracker) Start(sessionID string) {
	t.mu.Lock()
	prev := t.closeLocked()

	t.generation++
	gen := t.generation
	t.open = true
	t.frames = 0
	t.state = Begin(sessionID)
	ctx, cancel := context.WithCancel(context.Background())
	t.ctxCancel = cancel
	t.armIdleLocked(gen)
	snapshot := t.state.Clone()
	t.mu.Unlock()

	// старый поток закрывается до открытия нового
	for _, f := range prev {
		f()
	}

	t.logger.Info().Str("session_id", sessionID).Uint64("generation", gen).Msg("Opening progress stream")

	if t.opts.Listener != nil {
		t.opts.Listener.StateChanged(snapshot)
	}

	stop := t.subscriber.Subscribe(ctx, sessionID, StreamHandlers{
		OnFrame: func(data []byte) { t.handleFrame(gen, data) },
		OnAlive: func() { t.handleAlive(gen) },
		OnClose: func(err error) { t.handleClose(gen, err) },
	})

	t.mu.Lock()
	if t.open && t.generation == gen {
		t.cancel = stop
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	// поток уже завершился, пока шла подписка
	if stop != nil {
		stop()
	}
}

// Close закрывает поток. Повторный вызов ничего не делает.
func (t *Tracker) Close() {
	t.mu.Lock()
	if !t.open {
		t.mu.Unlock()
		return
	}

	fx := effects{release: t.closeLocked()}
	t.state = Stop(t.state)
	s := t.state.Clone()
	fx.state = &s
	t.mu.Unlock()

	t.logger.Info().Str("session_id", s.SessionID).Msg("Progress stream closed")
	t.apply(fx)
}

// Reset закрывает поток, если он открыт, и возвращает состояние к начальному.
func (t *Tracker) Reset() {
	t.mu.Lock()
	fx := effects{release: t.closeLocked()}
	t.state = Initial()
	s := t.state.Clone()
	fx.state = &s
	t.mu.Unlock()

	t.apply(fx)
}

// closeLocked помечает поток закрытым и возвращает функции освобождения ресурсов.
func (t *Tracker) closeLocked() []func() {
	if !t.open {
		return nil
	}
	t.open = false
	t.stopIdleLocked()

	var release []func()
	if t.cancel != nil {
		stop := t.cancel
		release = append(release, func() { stop() })
		t.cancel = nil
	}
	if t.ctxCancel != nil {
		release = append(release, t.ctxCancel)
		t.ctxCancel = nil
	}
	return release
}

func (t *Tracker) handleFrame(gen uint64, data []byte) {
	t.mu.Lock()
	if !t.open || gen != t.generation {
		t.mu.Unlock()
		return
	}

	// любой кадр, даже битый, сбрасывает таймер простоя
	t.armIdleLocked(gen)

	ev, err := models.DecodeProgressEvent(data)
	if err != nil {
		sessionID := t.state.SessionID
		t.mu.Unlock()
		t.logger.Warn().
			Err(fmt.Errorf("%w: %v", ErrMalformedFrame, err)).
			Str("session_id", sessionID).
			Int("bytes", len(data)).
			Msg("Ignoring progress frame")
		return
	}

	t.frames++
	t.state = Reduce(t.state, ev)
	t.history.Record(string(ev.Status), json.RawMessage(data))

	fx := effects{sessionID: t.state.SessionID}

	switch ev.Status {
	case models.ProgressStatusComplete:
		t.results.Store(ev.Results.Results, ev.Results.Summary)
		fx.release = t.closeLocked()
		payload := *ev.Results
		fx.completed = &payload

	case models.ProgressStatusError:
		serr := fmt.Errorf("%w: %s", ErrServerReported, ev.Message)
		fx.release = t.closeLocked()
		fx.notify = serr
		fx.failed = serr
	}

	s := t.state.Clone()
	fx.state = &s
	frames := t.frames
	t.mu.Unlock()

	switch ev.Status {
	case models.ProgressStatusComplete:
		t.logger.Info().
			Str("session_id", s.SessionID).
			Int("frames", frames).
			Int("results", s.ResultCount).
			Msg("Analysis completed")
	case models.ProgressStatusError:
		t.logger.Error().
			Str("session_id", s.SessionID).
			Str("message", ev.Message).
			Msg("Analysis service reported an error")
	default:
		t.logger.Debug().
			Str("session_id", s.SessionID).
			Str("stage", s.Stage).
			Float64("progress", s.Progress).
			Msg("Progress frame")
	}

	t.apply(fx)
}

// handleAlive продлевает таймер простоя: сервер может долго слать только keepalive.
func (t *Tracker) handleAlive(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open && gen == t.generation {
		t.armIdleLocked(gen)
	}
}

func (t *Tracker) handleClose(gen uint64, cause error) {
	var err error
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrConnectivityLost, cause)
	} else {
		err = fmt.Errorf("%w: stream ended before a terminal frame", ErrConnectivityLost)
	}

	t.mu.Lock()
	if !t.open || gen != t.generation {
		t.mu.Unlock()
		return
	}
	t.fail(err)
}

func (t *Tracker) handleIdle(gen, seq uint64) {
	t.mu.Lock()
	if !t.open || gen != t.generation || seq != t.idleSeq {
		t.mu.Unlock()
		return
	}
	t.fail(fmt.Errorf("%w: %w", ErrConnectivityLost, ErrIdleTimeout))
}

// fail вызывается под mu и снимает блокировку.
func (t *Tracker) fail(err error) {
	fx := effects{
		sessionID: t.state.SessionID,
		release:   t.closeLocked(),
		notify:    err,
		failed:    err,
	}
	t.state = Fail(t.state, err)
	s := t.state.Clone()
	fx.state = &s
	t.mu.Unlock()

	t.logger.Error().Err(err).Str("session_id", s.SessionID).Msg("Progress stream failed")
	t.apply(fx)
}

func (t *Tracker) armIdleLocked(gen uint64) {
	t.stopIdleLocked()
	if t.opts.IdleTimeout <= 0 {
		return
	}
	t.idleSeq++
	seq := t.idleSeq
	t.idle = time.AfterFunc(t.opts.IdleTimeout, func() { t.handleIdle(gen, seq) })
}

func (t *Tracker) stopIdleLocked() {
	if t.idle != nil {
		t.idle.Stop()
		t.idle = nil
	}
	// сработавший, но еще не захвативший mu таймер станет устаревшим
	t.idleSeq++
}

// Select запоминает выбранный результат и строит для него debug-представление.
func (t *Tracker) Select(index int) (debug.View, error) {
	view, err := debug.SelectFrom(t.results, index)
	if err != nil {
		return debug.View{}, err
	}

	t.mu.Lock()
	t.state = Select(t.state, index)
	s := t.state.Clone()
	t.mu.Unlock()

	t.apply(effects{state: &s})
	return view, nil
}

func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}
