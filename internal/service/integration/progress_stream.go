package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/r3labs/sse/v2"
	"github.com/rs/zerolog"
	"gopkg.in/cenkalti/backoff.v1"
)

// кадр complete несет весь код сравниваемых файлов
const maxEventSize = 32 << 20

// ProgressStream - SSE-транспорт для session.Tracker.
type ProgressStream struct {
	baseURL          string
	progressEndpoint string
	transport        http.RoundTripper
	logger           zerolog.Logger
}

// NewProgressStream: connectTimeout ограничивает только ожидание заголовков ответа,
// сам поток живет сколько угодно.
func NewProgressStream(baseURL, progressEndpoint string, connectTimeout time.Duration, logger zerolog.Logger) *ProgressStream {
	return &ProgressStream{
		baseURL:          baseURL,
		progressEndpoint: progressEndpoint,
		transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: connectTimeout,
		},
		logger: logger,
	}
}

func (s *ProgressStream) Subscribe(ctx context.Context, sessionID string, h session.StreamHandlers) session.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		err := s.run(ctx, sessionID, h)
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		h.OnClose(err)
	}()

	return session.CancelFunc(cancel)
}

func (s *ProgressStream) run(ctx context.Context, sessionID string, h session.StreamHandlers) error {
	endpoint := fmt.Sprintf("%s%s/%s", s.baseURL, s.progressEndpoint, url.PathEscape(sessionID))

	client := sse.NewClient(endpoint, sse.ClientMaxBufferSize(maxEventSize))
	client.Connection = &http.Client{Transport: &activityTransport{base: s.transport, onRead: h.OnAlive}}
	// без переподключения: обрыв потока означает ConnectivityLost
	client.ReconnectStrategy = &backoff.StopBackOff{}

	connected := false
	client.ResponseValidator = func(_ *sse.Client, resp *http.Response) error {
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("%w: analysis service returned status %d", ErrStreamUnavailable, resp.StatusCode)
		}
		connected = true
		s.logger.Debug().Str("session_id", sessionID).Str("url", endpoint).Msg("Progress stream connected")
		return nil
	}

	err := client.SubscribeRawWithContext(ctx, func(ev *sse.Event) {
		// события без data (только id или event) транспорту не интересны
		if len(ev.Data) > 0 {
			h.OnFrame(ev.Data)
		}
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStreamUnavailable):
		return err
	case !connected:
		return fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	default:
		return fmt.Errorf("failed to read event stream: %w", err)
	}
}

// activityTransport сообщает о каждом прочитанном куске тела ответа,
// включая комментарии-keepalive, которые до обработчика событий не доходят.
type activityTransport struct {
	base   http.RoundTripper
	onRead func()
}

func (t *activityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || t.onRead == nil {
		return resp, err
	}
	resp.Body = &activityBody{ReadCloser: resp.Body, onRead: t.onRead}
	return resp, nil
}

type activityBody struct {
	io.ReadCloser
	onRead func()
}

func (b *activityBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.onRead()
	}
	return n, err
}
