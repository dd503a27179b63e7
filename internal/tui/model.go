package tui

import (
	"context"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/debug"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// Checker - часть CheckerService, нужная интерфейсу.
type Checker interface {
	StartAnalysis(ctx context.Context, files []integration.UploadFile) (*models.StartAnalysisResponse, error)
	Cancel()
	History() []models.HistoryEntry
	Results() []models.PlagiarismResult
	Summary() models.AnalysisSummary
	Debug(index int) (debug.View, error)
}

// Model is the terminal client state. Session state comes from the tracker
// through StateMsg, everything else is local to the view.
type Model struct {
	ctx     context.Context
	checker Checker
	files   []integration.UploadFile

	State   session.State
	RunID   string
	Results []models.PlagiarismResult
	Summary models.AnalysisSummary
	History int

	Cursor int
	Debug  *debug.View
	// пока Modal не пуст, ввод блокируется
	Modal error

	bar      progress.Model
	width    int
	quitting bool
}

func NewModel(ctx context.Context, checker Checker, files []integration.UploadFile) Model {
	return Model{
		ctx:     ctx,
		checker: checker,
		files:   files,
		State:   session.Initial(),
		bar:     progress.New(progress.WithDefaultGradient()),
		width:   80,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	if len(m.files) == 0 {
		return nil
	}
	return startAnalysis(m.ctx, m.checker, m.files)
}

func (m Model) canRestart() bool {
	return !m.State.Processing && len(m.files) > 0
}
