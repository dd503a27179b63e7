package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/repository"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/severity"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"
)

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List analysis runs kept in the result store, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs (1-100)",
				Value:   repository.DefaultListLimit,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print runs as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			limit := cmd.Int("limit")
			if limit < 1 || limit > 100 {
				return fmt.Errorf("limit must be between 1 and 100, got %d", limit)
			}

			cfg, log, cleanup, err := setup(cmd, logToStderr)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := repository.NewResultStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(ctx, int(limit))
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := stdout(cmd)
			if cmd.Bool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Fprintf(out, "No stored runs in %q store\n", store.Driver())
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("KEY", "SESSION", "FILES", "RESULTS", "WORST")
			for _, run := range runs {
				t.Row(run.Key, run.SessionID,
					strconv.Itoa(len(run.Files)), strconv.Itoa(len(run.Results)),
					worstSeverity(run.Results))
			}
			_, err = fmt.Fprintln(out, t.Render())
			return err
		},
	}
}

func worstSeverity(results []models.PlagiarismResult) string {
	if len(results) == 0 {
		return "-"
	}
	worst := severity.Low
	for _, r := range results {
		if lvl := r.Severity(); lvl > worst {
			worst = lvl
		}
	}
	return worst.String()
}
