package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/config"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

// ErrSessionFailed - сессия завершилась ошибкой, текст уже выведен в stderr.
var ErrSessionFailed = errors.New("analysis session failed")

const tuiLogFile = "logs/checker-client.log"

func NewRoot(version string) *cli.Command {
	return &cli.Command{
		Name:    "checker-client",
		Usage:   "Plagiarism analysis client: upload archives, follow progress, inspect matches",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override logging.level (debug, info, warn, error, off)",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			serveCommand(),
			runsCommand(),
			forumCommand(),
			migrateCommand(),
		},
	}
}

type logMode int

const (
	logToConfig logMode = iota
	// интерфейс занимает терминал
	logAwayFromTerminal
	// stdout занят результатами
	logToStderr
)

// setup загружает конфигурацию и логгер. cleanup закрывает файл логов.
func setup(cmd *cli.Command, mode logMode) (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	output := cfg.Logging.Output
	if output == "" || output == "stdout" {
		switch mode {
		case logAwayFromTerminal:
			output = tuiLogFile
		case logToStderr:
			output = "stderr"
		}
	}

	out, closeOut, err := logger.OpenOutput(output)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	noColor := cfg.Logging.NoColor || (output != "stdout" && output != "stderr")
	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, noColor, out)

	return cfg, log, func() { _ = closeOut() }, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
