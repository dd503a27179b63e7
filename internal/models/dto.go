package models

import (
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/severity"
)

// Data Transfer Objects

type CheckPlagiarismResponse struct {
	SessionID string `json:"session_id"`
}

type StartAnalysisResponse struct {
	RunID     string    `json:"run_id"`
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

type ResultView struct {
	Index          int              `json:"index"`
	EffectiveScore float64          `json:"effective_score"`
	Severity       severity.Level   `json:"severity"`
	ExactMatch     bool             `json:"exact_match"`
	Result         PlagiarismResult `json:"result"`
}

type ResultsResponse struct {
	Results []ResultView    `json:"results"`
	Summary AnalysisSummary `json:"summary"`
}

type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Phase     string    `json:"phase"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

func NewResultViews(results []PlagiarismResult) []ResultView {
	views := make([]ResultView, 0, len(results))
	for i, r := range results {
		views = append(views, ResultView{
			Index:          i,
			EffectiveScore: r.EffectiveScore(),
			Severity:       r.Severity(),
			ExactMatch:     r.ExactMatch(),
			Result:         r,
		})
	}
	return views
}
