package tui

import (
	"errors"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

const maxBarWidth = 60

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(maxBarWidth, max(10, msg.Width-20))
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case StateMsg:
		return m.handleState(msg)
	case ErrorMsg:
		return m.handleError(msg)
	case StartedMsg:
		m.RunID = msg.Response.RunID
		return m, nil
	case StartFailedMsg:
		return m.handleStartFailed(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// Модальное окно ошибки перехватывает весь ввод
	if m.Modal != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			m.Modal = nil
		}
		return m, nil
	}

	if m.Debug != nil {
		switch msg.String() {
		case "esc", "backspace", "enter":
			m.Debug = nil
		case "q":
			return m.quit()
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Results)-1 {
			m.Cursor++
		}
	case "enter":
		view, err := m.checker.Debug(m.Cursor)
		if err != nil {
			// индекс вне диапазона - просто ничего не показываем
			return m, nil
		}
		m.Debug = &view
	case "r":
		if m.canRestart() {
			m.State = session.Initial()
			m.Results = nil
			m.Summary = models.AnalysisSummary{}
			m.Cursor = 0
			m.History = 0
			return m, startAnalysis(m.ctx, m.checker, m.files)
		}
	}
	return m, nil
}

func (m Model) handleState(msg StateMsg) (tea.Model, tea.Cmd) {
	m.State = msg.State
	m.History = len(m.checker.History())

	switch msg.State.Phase {
	case session.PhaseCompleted:
		m.Results = m.checker.Results()
		m.Summary = m.checker.Summary()
	case session.PhaseProcessing:
		if len(m.Results) > 0 {
			m.Results = nil
			m.Debug = nil
		}
	}

	if m.Cursor >= len(m.Results) {
		m.Cursor = max(0, len(m.Results)-1)
	}
	return m, nil
}

// StartFailedMsg и ErrorMsg могут прийти в любом порядке для одной ошибки загрузки.
// Окно показывается один раз.
func (m Model) handleError(msg ErrorMsg) (tea.Model, tea.Cmd) {
	if m.Modal != nil && errors.Is(m.Modal, msg.Err) {
		return m, nil
	}
	m.Modal = msg.Err
	return m, nil
}

func (m Model) handleStartFailed(msg StartFailedMsg) (tea.Model, tea.Cmd) {
	m.State.Processing = false
	// обернутая ошибка покрывает уже показанную
	m.Modal = msg.Err
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.checker.Cancel()
	m.quitting = true
	return m, tea.Quit
}
