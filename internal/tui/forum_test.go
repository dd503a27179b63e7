package tui

import (
	"strings"
	"testing"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
)

func TestRenderSubmission(t *testing.T) {
	answer := "Copied answer text"
	s := models.Submission{
		TraineeNumber:          "T-17",
		ForumQuestion:          "What is a goroutine?",
		ForumAnswer:            "A lightweight thread.",
		SimilarityResults:      models.SimilarityResults{Submission: 80, Browser: 55, AI: 10},
		OverallPlagiarismScore: 82.5,
		MatchedSources: []models.MatchedSource{
			{Type: models.MatchedSourceBrowser, Source: "https://go.dev/tour", Similarity: 55, SourceAnswer: &answer},
		},
	}

	out := RenderSubmission(s)
	for _, want := range []string{"Trainee T-17", "82.50%", "80.00%", "55.00%", "10.00%", "Web", "https://go.dev/tour", answer} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestRenderSubmissionsEmpty(t *testing.T) {
	if out := RenderSubmissions(nil); !strings.Contains(out, "No forum submissions") {
		t.Fatalf("output = %q", out)
	}
}
