package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/tui"
	"github.com/urfave/cli/v3"
)

var errForumArgs = errors.New("expected exactly one argument: submissions JSON file")

func forumCommand() *cli.Command {
	return &cli.Command{
		Name:      "forum",
		Usage:     "Render forum submission reports with severity coloring",
		ArgsUsage: "<submissions.json>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errForumArgs, cmd.NArg())
			}

			data, err := os.ReadFile(cmd.Args().First())
			if err != nil {
				return fmt.Errorf("failed to read submissions: %w", err)
			}

			subs, err := decodeSubmissions(data)
			if err != nil {
				return err
			}

			fmt.Fprintln(stdout(cmd), tui.RenderSubmissions(subs))
			return nil
		},
	}
}

// decodeSubmissions принимает и массив отчетов, и одиночный объект.
func decodeSubmissions(data []byte) ([]models.Submission, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var subs []models.Submission
		if err := json.Unmarshal(trimmed, &subs); err != nil {
			return nil, fmt.Errorf("failed to decode submissions: %w", err)
		}
		return subs, nil
	}

	var sub models.Submission
	if err := json.Unmarshal(trimmed, &sub); err != nil {
		return nil, fmt.Errorf("failed to decode submission: %w", err)
	}
	return []models.Submission{sub}, nil
}
