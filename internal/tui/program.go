package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// Session - то, что нужно Run: сам checker и возможность подписаться на трекер.
type Session interface {
	Checker
	AddListener(l session.Listener)
}

// Run показывает интерфейс до выхода пользователя.
func Run(ctx context.Context, s Session, files []integration.UploadFile) error {
	m := NewModel(ctx, s, files)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	l := newProgramListener(p.Send)
	defer l.stop()
	s.AddListener(l)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run terminal UI: %w", err)
	}
	return nil
}

// programListener переводит события трекера в сообщения программы.
// Трекер может вызвать слушателя изнутри Update (Cancel, Debug), а Send
// блокируется до следующего цикла, поэтому сообщения идут через очередь.
type programListener struct {
	send func(tea.Msg)

	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newProgramListener(send func(tea.Msg)) *programListener {
	l := &programListener{
		send: send,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.pump()
	return l
}

func (l *programListener) StateChanged(st session.State) {
	l.push(StateMsg{State: st})
}

func (l *programListener) Notify(err error) {
	l.push(ErrorMsg{Err: err})
}

func (l *programListener) push(msg tea.Msg) {
	l.mu.Lock()
	l.queue = append(l.queue, msg)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *programListener) pump() {
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}

		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, msg := range batch {
			l.send(msg)
		}
	}
}

func (l *programListener) stop() {
	l.once.Do(func() { close(l.done) })
}
