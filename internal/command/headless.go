package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/pkg/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type analysisSession interface {
	StartAnalysis(ctx context.Context, files []integration.UploadFile) (*models.StartAnalysisResponse, error)
	Cancel()
	Results() []models.PlagiarismResult
	Summary() models.AnalysisSummary
	AddListener(l session.Listener)
}

// headlessRun печатает прогресс в out, ошибки в errOut.
type headlessRun struct {
	out    io.Writer
	errOut io.Writer
	json   bool

	mu       sync.Mutex
	lastLine string
	done     chan session.State
	once     sync.Once
}

func (h *headlessRun) run(ctx context.Context, s analysisSession, files []integration.UploadFile) error {
	h.done = make(chan session.State, 1)
	s.AddListener(h)

	resp, err := s.StartAnalysis(ctx, files)
	if err != nil {
		// ошибку уже напечатал Notify
		return fmt.Errorf("%w: %w", ErrSessionFailed, err)
	}
	h.println(h.errOut, fmt.Sprintf("session %s started (run %s)", resp.SessionID, resp.RunID))

	var final session.State
	select {
	case final = <-h.done:
	case <-ctx.Done():
		s.Cancel()
		return ctx.Err()
	}

	if final.Phase != session.PhaseCompleted {
		return ErrSessionFailed
	}

	if h.json {
		return h.printJSON(s.Results(), s.Summary())
	}
	return h.printTable(s.Results(), s.Summary())
}

func (h *headlessRun) StateChanged(st session.State) {
	if st.Processing {
		if line := progressLine(st); line != h.swapLine(line) {
			h.println(h.out, line)
		}
		return
	}
	// неудачное завершение сигнализирует Notify, уже после печати ошибки
	if st.Phase == session.PhaseCompleted {
		h.finish(st)
	}
}

func (h *headlessRun) Notify(err error) {
	h.println(h.errOut, "error: "+err.Error())
	h.finish(session.State{Phase: session.PhaseFailed, ErrorMessage: err.Error()})
}

func (h *headlessRun) finish(st session.State) {
	h.once.Do(func() { h.done <- st })
}

func (h *headlessRun) swapLine(line string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.lastLine
	h.lastLine = line
	return prev
}

func (h *headlessRun) println(w io.Writer, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintln(w, line)
}

func progressLine(st session.State) string {
	line := fmt.Sprintf("[%6s]", utils.FormatPercent(st.Progress))
	if st.Stage != "" {
		line += " " + st.Stage
	}
	if len(st.CurrentComparison) == 2 {
		a, b := st.CurrentComparison[0], st.CurrentComparison[1]
		line += fmt.Sprintf(": %s (%s) vs %s (%s)", a.User, a.File, b.User, b.File)
	}
	return line
}

func (h *headlessRun) printJSON(results []models.PlagiarismResult, summary models.AnalysisSummary) error {
	enc := json.NewEncoder(h.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(models.ResultsResponse{
		Results: models.NewResultViews(results),
		Summary: summary,
	}); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

func (h *headlessRun) printTable(results []models.PlagiarismResult, summary models.AnalysisSummary) error {
	fmt.Fprintf(h.out, "\nSubmissions: %d  Files: %d  Comparisons: %d  Significant: %d\n\n",
		summary.TotalSubmissions, summary.TotalFiles, summary.TotalComparisons, summary.SignificantMatches)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "SCORE", "SEVERITY", "FIRST", "SECOND")
	for _, v := range models.NewResultViews(results) {
		level := v.Severity.String()
		if v.ExactMatch {
			level += " (exact)"
		}
		t.Row(
			strconv.Itoa(v.Index),
			utils.FormatPercent(v.EffectiveScore),
			level,
			fmt.Sprintf("%s (%s)", v.Result.User1, v.Result.File1),
			fmt.Sprintf("%s (%s)", v.Result.User2, v.Result.File2),
		)
	}

	_, err := fmt.Fprintln(h.out, t.Render())
	return err
}
