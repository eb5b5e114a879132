package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/joseph-ayodele/usage-tracker/internal/common"
	"github.com/joseph-ayodele/usage-tracker/internal/extract"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

func textCommand(cfg *common.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "text",
		Usage:     "Print the extracted text of a bill and what each mode reads from it",
		ArgsUsage: "FILE.pdf",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "start-month",
				Value: 1,
				Usage: "Start month for the multi mode preview",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			v := common.NewValidator().
				Field("file", path, common.Required, common.ExistingFile).
				Field("start-month", c.Int("start-month"), common.IntBetween(1, 12))
			if err := common.ValidateAndReturnError(v); err != nil {
				return cli.Exit(err, 2)
			}

			ctx, cancel := common.WithTimeout(c.Context, cfg.Batch.DocumentTimeout)
			defer cancel()
			res, err := extract.NewFromConfig(cfg, logger).Extract(ctx, path)
			if err != nil {
				return fmt.Errorf("extract %s: %w", path, err)
			}
			return printPreview(c.App.Writer, res, c.Int("start-month"))
		},
	}
}

func printPreview(w io.Writer, res extract.TextExtractionResult, startMonth int) error {
	pages := usage.SlicePages(res.Text, res.Pages)
	if _, err := fmt.Fprintf(w, "method=%s pages=%d confidence=%.2f\n", res.Method, len(pages), res.Confidence); err != nil {
		return err
	}
	for i, p := range pages {
		if _, err := fmt.Fprintf(w, "\n--- page %d ---\n%s\n", i+1, p); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\n== single =="); err != nil {
		return err
	}
	printRecord(w, usage.BuildFromWholeText(res.Text))

	if _, err := fmt.Fprintln(w, "\n== segmented =="); err != nil {
		return err
	}
	printRecord(w, usage.BuildFromSegmentedText(res.Text))

	if _, err := fmt.Fprintf(w, "\n== multi (start month %d) ==\n", startMonth); err != nil {
		return err
	}
	rec, err := usage.BuildFromPaginated(pages, startMonth)
	if err != nil {
		_, err = fmt.Fprintf(w, "not available: %v\n", err)
		return err
	}
	printRecord(w, rec)
	return nil
}
