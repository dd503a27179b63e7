package tui

import (
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
)

// StateMsg is sent by the tracker after every applied transition.
type StateMsg struct {
	State session.State
}

// ErrorMsg carries a user-visible session error. It opens the modal.
type ErrorMsg struct {
	Err error
}

// StartedMsg is sent when the upload succeeded and the stream is open.
type StartedMsg struct {
	Response *models.StartAnalysisResponse
}

// StartFailedMsg is sent when StartAnalysis returned an error.
// The modal is opened by the ErrorMsg that the service emits for the same failure.
type StartFailedMsg struct {
	Err error
}
