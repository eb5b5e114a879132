package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/joseph-ayodele/usage-tracker/internal/common"
	repo "github.com/joseph-ayodele/usage-tracker/internal/repository"
)

func dbhealthCommand(cfg *common.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "dbhealth",
		Usage: "Open the configured database (DB_URL), ping it and apply the schema",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: time.Second,
				Usage: "Ping timeout",
			},
		},
		Action: func(c *cli.Context) error {
			db, err := repo.Open(c.Context, repoConfig(cfg), logger)
			if err != nil {
				return cli.Exit(fmt.Sprintf("opening DB: %v", err), 1)
			}
			defer db.Close()

			if err := db.HealthCheck(c.Context, c.Duration("timeout")); err != nil {
				return cli.Exit(fmt.Sprintf("DB health: FAIL (%v)", err), 1)
			}
			if err := db.Migrate(c.Context); err != nil {
				return cli.Exit(fmt.Sprintf("DB schema: FAIL (%v)", err), 1)
			}
			_, err = fmt.Fprintf(c.App.Writer, "DB health: OK (%s)\n", db.Dialect)
			return err
		},
	}
}
