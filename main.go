package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/command"
)

var version = "dev"

func main() {
	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	err := command.NewRoot(version).Run(ctx, os.Args)
	stop()

	if err != nil {
		// ошибки сессии уже показаны пользователю
		if !errors.Is(err, command.ErrSessionFailed) {
			fmt.Fprintf(os.Stderr, "checker-client: %v\n", err)
		}
		os.Exit(1)
	}
}
