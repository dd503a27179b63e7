package session

import (
	"math"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseProcessing Phase = "processing"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// State - то, что видит UI. Все переходы - чистые функции ниже.
type State struct {
	SessionID         string               `json:"session_id,omitempty"`
	Phase             Phase                `json:"phase"`
	Processing        bool                 `json:"processing"`
	Stage             string               `json:"stage,omitempty"`
	Progress          float64              `json:"progress"`
	CurrentComparison []models.Participant `json:"current_comparison,omitempty"`
	Selected          int                  `json:"selected"`
	ErrorMessage      string               `json:"error_message,omitempty"`
	ResultCount       int                  `json:"result_count"`
}

func Initial() State {
	return State{Phase: PhaseIdle, Selected: -1}
}

func (s State) IsTerminal() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseFailed
}

func (s State) Clone() State {
	if s.CurrentComparison != nil {
		cc := make([]models.Participant, len(s.CurrentComparison))
		copy(cc, s.CurrentComparison)
		s.CurrentComparison = cc
	}
	return s
}

// Begin начинает новую сессию с нуля.
func Begin(sessionID string) State {
	s := Initial()
	s.SessionID = sessionID
	s.Phase = PhaseProcessing
	s.Processing = true
	return s
}

// Reduce применяет кадр. Терминальные состояния поглощающие.
func Reduce(s State, ev models.ProgressEvent) State {
	if s.IsTerminal() {
		return s
	}

	switch ev.Status {
	case models.ProgressStatusProcessing:
		s.Phase = PhaseProcessing
		s.Processing = true
		if ev.Stage != nil {
			s.Stage = *ev.Stage
		}
		if ev.Progress != nil {
			s.Progress = clampProgress(*ev.Progress)
		}
		if len(ev.CurrentComparison) == 2 {
			s.CurrentComparison = []models.Participant{ev.CurrentComparison[0], ev.CurrentComparison[1]}
		}

	case models.ProgressStatusComplete:
		s.Phase = PhaseCompleted
		s.Processing = false
		s.Progress = 100
		s.Selected = -1
		s.ResultCount = 0
		if ev.Results != nil {
			s.ResultCount = len(ev.Results.Results)
		}

	case models.ProgressStatusError:
		s.Phase = PhaseFailed
		s.Processing = false
		s.ErrorMessage = ev.Message
	}

	return s
}

// Fail - переход при потере соединения или таймауте.
func Fail(s State, err error) State {
	if s.IsTerminal() {
		return s
	}
	s.Phase = PhaseFailed
	s.Processing = false
	if err != nil {
		s.ErrorMessage = err.Error()
	}
	return s
}

// Stop - поток закрыт пользователем до терминального кадра.
func Stop(s State) State {
	if s.IsTerminal() {
		return s
	}
	s.Phase = PhaseIdle
	s.Processing = false
	return s
}

func Select(s State, index int) State {
	s.Selected = index
	return s
}

func clampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
