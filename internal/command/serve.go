package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/app"
	"github.com/urfave/cli/v3"
)

const defaultShutdownTimeout = 30 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Expose the analysis session over the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "Override server.address",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, cleanup, err := setup(cmd, logToConfig)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr := cmd.String("address"); addr != "" {
				cfg.Server.Address = addr
			}

			application, err := app.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}

			// Запуск сервера в горутине
			errCh := make(chan error, 1)
			go func() {
				if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			var runErr error
			select {
			case <-ctx.Done():
				log.Info().Msg("Shutdown signal received")
			case runErr = <-errCh:
				log.Error().Err(runErr).Msg("Failed to run application")
			}

			timeout := cfg.Server.ShutdownTimeout
			if timeout <= 0 {
				timeout = defaultShutdownTimeout
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := application.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown gracefully")
			}

			log.Info().Msg("Checker API stopped")
			return runErr
		},
	}
}
