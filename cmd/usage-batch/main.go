// usage-batch reads electricity bills (PDF) and fills the monthly kWh usage
// row of a spreadsheet template.
//
// Usage:
//
//	usage-batch run --dir bills/ --mode single --label "ACME Co." --out usage.xlsx
//	usage-batch run --mode multi --start-month 4 year.pdf
//	usage-batch text bill.pdf
//	usage-batch dbhealth
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/joseph-ayodele/usage-tracker/internal/common"
	repo "github.com/joseph-ayodele/usage-tracker/internal/repository"
)

func main() {
	cfg := common.LoadConfig()

	// stdout carries the report; logs go to stderr
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(cfg, logger).RunContext(ctx, os.Args); err != nil {
		if _, werr := fmt.Fprintf(os.Stderr, "Error: %v\n", err); werr != nil {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newApp(cfg *common.Config, logger *slog.Logger) *cli.App {
	return &cli.App{
		Name:  "usage-batch",
		Usage: "extract monthly kWh usage from electricity bills into a workbook",
		Commands: []*cli.Command{
			runCommand(cfg, logger),
			textCommand(cfg, logger),
			dbhealthCommand(cfg, logger),
		},
	}
}

func repoConfig(cfg *common.Config) repo.Config {
	return repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}
}
