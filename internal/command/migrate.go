package command

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/database"
	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back the postgres result store schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "direction",
				Aliases: []string{"d"},
				Usage:   "Direction of migration (up/down)",
				Value:   "up",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "Directory with migration files",
				Value: "migrations",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			direction := cmd.String("direction")
			if direction != "up" && direction != "down" {
				return fmt.Errorf("invalid migration direction %q, use 'up' or 'down'", direction)
			}

			cfg, log, cleanup, err := setup(cmd, logToConfig)
			if err != nil {
				return err
			}
			defer cleanup()

			db, err := database.Open(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			migrator, err := database.NewMigrator(db, cmd.String("path"))
			if err != nil {
				db.Close()
				return err
			}

			switch direction {
			case "up":
				if err := migrator.Up(); err != nil {
					return err
				}
				log.Info().Msg("Migrations applied successfully")
			case "down":
				if err := migrator.Down(); err != nil {
					return err
				}
				log.Info().Msg("Migrations rolled back successfully")
			}
			return nil
		},
	}
}
