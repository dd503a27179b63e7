package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Task func(ctx context.Context)

// WorkerPool выполняет фоновые задачи (запись результатов, публикация событий)
// так, чтобы они не блокировали отображение. Очередь ограничена, задачи не повторяются.
type WorkerPool struct {
	tasks         chan namedTask
	wg            sync.WaitGroup
	maxWorkers    int
	submitTimeout time.Duration
	logger        zerolog.Logger

	active atomic.Int32

	// mu защищает закрытие канала задач
	mu      sync.RWMutex
	stopped bool
	started bool

	ctx    context.Context
	cancel context.CancelFunc
}

type namedTask struct {
	name string
	run  Task
}

type Stats struct {
	ActiveWorkers int `json:"active_workers"`
	MaxWorkers    int `json:"max_workers"`
	QueueLength   int `json:"queue_length"`
	QueueCapacity int `json:"queue_capacity"`
}

func NewWorkerPool(maxWorkers int, logger zerolog.Logger) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &WorkerPool{
		tasks:         make(chan namedTask, maxWorkers*10),
		maxWorkers:    maxWorkers,
		submitTimeout: time.Second,
		logger:        logger,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.started {
		return nil
	}
	wp.started = true
	wp.ctx, wp.cancel = context.WithCancel(ctx)

	for i := 0; i < wp.maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	wp.logger.Info().Int("max_workers", wp.maxWorkers).Msg("Worker pool started")
	return nil
}

// Stop дожидается выполнения уже принятых задач.
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return nil
	}
	wp.stopped = true
	close(wp.tasks)
	started := wp.started
	wp.mu.Unlock()

	if started {
		wp.wg.Wait()
		wp.cancel()
	}

	wp.logger.Info().Msg("Worker pool stopped")
	return nil
}

// Submit ставит задачу в очередь. Если очередь полна дольше submitTimeout
// или пул остановлен, задача отбрасывается и возвращается false.
func (wp *WorkerPool) Submit(name string, task Task) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		wp.logger.Warn().Str("task", name).Msg("Worker pool is stopped, task dropped")
		return false
	}

	nt := namedTask{name: name, run: task}
	select {
	case wp.tasks <- nt:
		return true
	default:
	}

	wp.logger.Warn().Str("task", name).Msg("Worker pool task queue is full")
	select {
	case wp.tasks <- nt:
		return true
	case <-time.After(wp.submitTimeout):
		wp.logger.Error().Str("task", name).Msg("Failed to submit task to worker pool (timeout)")
		return false
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for t := range wp.tasks {
		wp.run(id, t)
	}

	wp.logger.Debug().Int("worker_id", id).Msg("Worker stopped")
}

func (wp *WorkerPool) run(id int, t namedTask) {
	wp.active.Add(1)

	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error().
				Int("worker_id", id).
				Str("task", t.name).
				Interface("panic", r).
				Msg("Worker recovered from panic")
		}

		wp.active.Add(-1)
	}()

	wp.logger.Debug().Int("worker_id", id).Str("task", t.name).Msg("Worker processing task")
	t.run(wp.ctx)
}

func (wp *WorkerPool) Stats() Stats {
	return Stats{
		ActiveWorkers: int(wp.active.Load()),
		MaxWorkers:    wp.maxWorkers,
		QueueLength:   len(wp.tasks),
		QueueCapacity: cap(wp.tasks),
	}
}
