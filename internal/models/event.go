package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

type ProgressStatus string

const (
	ProgressStatusProcessing ProgressStatus = "processing"
	ProgressStatusComplete   ProgressStatus = "complete"
	ProgressStatusError      ProgressStatus = "error"
)

func (s ProgressStatus) String() string {
	return string(s)
}

// Participant - пара {user, file} одной стороны сравнения.
type Participant struct {
	User string `json:"user"`
	File string `json:"file"`
}

// ProgressEvent - один кадр потока прогресса, различается по Status.
type ProgressEvent struct {
	Status ProgressStatus `json:"status"`

	// processing
	Stage             *string       `json:"stage,omitempty"`
	Progress          *float64      `json:"progress,omitempty"`
	CurrentComparison []Participant `json:"currentComparison,omitempty"`

	// complete
	Results *ResultPayload `json:"results,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

var (
	ErrInvalidUTF8    = errors.New("frame is not valid UTF-8")
	ErrUnknownStatus  = errors.New("unknown progress status")
	ErrMissingPayload = errors.New("complete frame without results")
)

func (e ProgressEvent) IsTerminal() bool {
	return e.Status == ProgressStatusComplete || e.Status == ProgressStatusError
}

// DecodeProgressEvent разбирает кадр и проверяет дискриминатор.
func DecodeProgressEvent(data []byte) (ProgressEvent, error) {
	var ev ProgressEvent

	if !utf8.Valid(data) {
		return ev, ErrInvalidUTF8
	}

	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("failed to decode frame: %w", err)
	}

	switch ev.Status {
	case ProgressStatusProcessing, ProgressStatusError:
	case ProgressStatusComplete:
		if ev.Results == nil {
			return ev, ErrMissingPayload
		}
	default:
		return ev, fmt.Errorf("%w: %q", ErrUnknownStatus, ev.Status)
	}

	if n := len(ev.CurrentComparison); n != 0 && n != 2 {
		return ev, fmt.Errorf("currentComparison must hold a pair, got %d entries", n)
	}

	return ev, nil
}

// События для брокера, по образцу AnalysisCompletedEvent
type SessionCompletedEvent struct {
	RunID              string    `json:"run_id"`
	SessionID          string    `json:"session_id"`
	Status             string    `json:"status"`
	ResultCount        int       `json:"result_count"`
	SignificantMatches int       `json:"significant_matches"`
	Files              []string  `json:"files"`
	CompletedAt        time.Time `json:"completed_at"`
}

type SessionFailedEvent struct {
	RunID     string    `json:"run_id"`
	SessionID string    `json:"session_id"`
	Error     string    `json:"error"`
	FailedAt  time.Time `json:"failed_at"`
}
