package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/rs/zerolog"
)

type closeRecorder struct {
	mu     sync.Mutex
	frames []string
	reads  int
	done   chan error
}

func newCloseRecorder() *closeRecorder {
	return &closeRecorder{done: make(chan error, 2)}
}

func (c *closeRecorder) onFrame(b []byte) {
	c.mu.Lock()
	c.frames = append(c.frames, string(b))
	c.mu.Unlock()
}

func (c *closeRecorder) onAlive() {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
}

func (c *closeRecorder) onClose(err error) { c.done <- err }

func (c *closeRecorder) handlers() session.StreamHandlers {
	return session.StreamHandlers{OnFrame: c.onFrame, OnAlive: c.onAlive, OnClose: c.onClose}
}

func (c *closeRecorder) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-c.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("onClose was not called")
		return nil
	}
}

func TestProgressStreamDeliversFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/progress/sess-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < 3; i++ {
			fmt.Fprintf(w, "data: {\"status\":\"processing\",\"progress\":%d}\n\n", i*10)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	rec := newCloseRecorder()
	s := NewProgressStream(srv.URL, "/progress", time.Second, zerolog.Nop())
	cancel := s.Subscribe(context.Background(), "sess-1", rec.handlers())
	defer cancel()

	if err := rec.wait(t); err != nil {
		t.Fatalf("onClose error = %v; want nil at end of stream", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.frames) != 3 || rec.frames[2] != `{"status":"processing","progress":20}` {
		t.Fatalf("frames = %q", rec.frames)
	}
}

func TestProgressStreamParsesEventFields(t *testing.T) {
	body := strings.Join([]string{
		": keep-alive",
		"",
		"data: {\"status\":\"processing\"}",
		"",
		"event: progress",
		"id: 7",
		"data: {\"status\":",
		"data:\"complete\"}",
		"",
		"id: 8",
		"",
		"",
	}, "\r\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	rec := newCloseRecorder()
	s := NewProgressStream(srv.URL, "/progress", time.Second, zerolog.Nop())
	s.Subscribe(context.Background(), "sess-1", rec.handlers())

	if err := rec.wait(t); err != nil {
		t.Fatalf("onClose error = %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{`{"status":"processing"}`, "{\"status\":\n\"complete\"}"}
	if len(rec.frames) != len(want) {
		t.Fatalf("got %d frames %q; want %d", len(rec.frames), rec.frames, len(want))
	}
	for i := range want {
		if rec.frames[i] != want[i] {
			t.Fatalf("frame %d = %q; want %q", i, rec.frames[i], want[i])
		}
	}
	if rec.reads == 0 {
		t.Fatalf("body reads were not reported")
	}
}

func TestProgressStreamReportsKeepAlive(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < 3; i++ {
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	rec := newCloseRecorder()
	s := NewProgressStream(srv.URL, "/progress", time.Second, zerolog.Nop())
	cancel := s.Subscribe(context.Background(), "sess-1", rec.handlers())
	defer cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec.mu.Lock()
		reads, frames := rec.reads, len(rec.frames)
		rec.mu.Unlock()
		if frames != 0 {
			t.Fatalf("comments delivered as frames")
		}
		if reads > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("keepalive comments were not reported")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestProgressStreamDoesNotReconnect(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := newCloseRecorder()
	s := NewProgressStream(srv.URL, "/progress", time.Second, zerolog.Nop())
	s.Subscribe(context.Background(), "sess-1", rec.handlers())

	if err := rec.wait(t); !errors.Is(err, ErrStreamUnavailable) {
		t.Fatalf("onClose error = %v; want ErrStreamUnavailable", err)
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Fatalf("server hit %d times; want 1", hits)
	}
}

func TestProgressStreamConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown session", http.StatusNotFound)
	}))
	defer srv.Close()

	rec := newCloseRecorder()
	s := NewProgressStream(srv.URL, "/progress", time.Second, zerolog.Nop())
	s.Subscribe(context.Background(), "missing", rec.handlers())

	if err := rec.wait(t); !errors.Is(err, ErrStreamUnavailable) {
		t.Fatalf("onClose error = %v; want ErrStreamUnavailable", err)
	}
}

func TestProgressStreamCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	rec := newCloseRecorder()
	s := NewProgressStream(srv.URL, "/progress", time.Second, zerolog.Nop())
	cancel := s.Subscribe(context.Background(), "sess-1", rec.handlers())

	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := rec.wait(t); !errors.Is(err, context.Canceled) {
		t.Fatalf("onClose error = %v; want context.Canceled", err)
	}

	select {
	case err := <-rec.done:
		t.Fatalf("onClose called twice, second error %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}
