package tui

import (
	"context"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	tea "github.com/charmbracelet/bubbletea"
)

// startAnalysis uploads the files and opens the progress stream.
func startAnalysis(ctx context.Context, checker Checker, files []integration.UploadFile) tea.Cmd {
	return func() tea.Msg {
		resp, err := checker.StartAnalysis(ctx, files)
		if err != nil {
			return StartFailedMsg{Err: err}
		}
		return StartedMsg{Response: resp}
	}
}
