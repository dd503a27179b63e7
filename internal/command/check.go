package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/app"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/service/integration"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/tui"
	"github.com/urfave/cli/v3"
)

var errNoFiles = errors.New("expected at least one archive to upload")

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Upload archives and follow the analysis session",
		ArgsUsage: "<archive> [archive...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "Print progress and results instead of opening the terminal UI",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "With --headless, print results as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return errNoFiles
			}

			files, err := integration.ReadUploadFiles(cmd.Args().Slice())
			if err != nil {
				return err
			}

			headless := cmd.Bool("headless")
			mode := logAwayFromTerminal
			if headless {
				mode = logToStderr
			}

			cfg, log, cleanup, err := setup(cmd, mode)
			if err != nil {
				return err
			}
			defer cleanup()

			core, err := app.NewCore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer core.Close()

			if !headless {
				return tui.Run(ctx, core.Checker, files)
			}

			h := &headlessRun{
				out:    stdout(cmd),
				errOut: stderr(cmd),
				json:   cmd.Bool("json"),
			}
			if err := h.run(ctx, core.Checker, files); err != nil {
				return fmt.Errorf("check: %w", err)
			}
			return nil
		},
	}
}
