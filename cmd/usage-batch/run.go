package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/joseph-ayodele/usage-tracker/internal/common"
	"github.com/joseph-ayodele/usage-tracker/internal/export"
	"github.com/joseph-ayodele/usage-tracker/internal/extract"
	"github.com/joseph-ayodele/usage-tracker/internal/ingest"
	"github.com/joseph-ayodele/usage-tracker/internal/pipeline"
	repo "github.com/joseph-ayodele/usage-tracker/internal/repository"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

type runParams struct {
	Dir        string
	Files      []string
	Mode       string
	StartMonth int
	Label      string
	Template   string
	Layout     string
	Out        string
	Workers    int
	SkipHidden bool
}

func (p runParams) validate() error {
	v := common.NewValidator()
	if p.Dir == "" {
		v.Field("files", p.Files, common.Required)
	} else if len(p.Files) > 0 {
		v.Field("files", p.Files, func(field string, value interface{}) *common.ValidationError {
			return &common.ValidationError{Field: field, Value: value, Message: "cannot be combined with --dir"}
		})
	}
	v.Field("mode", p.Mode, common.OneOf(string(usage.ModeSingle), string(usage.ModeMulti), string(usage.ModeSegmented)))
	if strings.EqualFold(strings.TrimSpace(p.Mode), string(usage.ModeMulti)) {
		v.Field("start-month", p.StartMonth, common.IntBetween(1, 12))
	}
	v.Field("workers", p.Workers, common.IntBetween(1, 64))
	v.Field("out", p.Out, common.Required)
	v.Field("layout", p.Layout, common.ExistingFile)
	return common.ValidateAndReturnError(v)
}

func runCommand(cfg *common.Config, logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Extract usage from bills, merge them and write the workbook",
		ArgsUsage: "[FILE.pdf ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory to read bills from (instead of FILE arguments)",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Value:   string(usage.ModeSingle),
				Usage:   "single (one month per file), multi (12/24/36 page files) or segmented (several months in one text)",
			},
			&cli.IntFlag{
				Name:  "start-month",
				Usage: "Calendar month (1-12) of the first page group in multi mode",
			},
			&cli.StringFlag{
				Name:  "label",
				Usage: "Customer or company name written to the label cell",
			},
			&cli.StringFlag{
				Name:  "template",
				Value: cfg.Workbook.TemplatePath,
				Usage: "Workbook template; a blank workbook is used when it does not exist",
			},
			&cli.StringFlag{
				Name:  "layout",
				Value: cfg.Workbook.LayoutPath,
				Usage: "Workbook layout JSON (sheet, label cell, month cells)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   cfg.Workbook.OutputPath,
				Usage:   "Output XLSX path",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: cfg.Batch.Workers,
				Usage: "Documents extracted in parallel",
			},
			&cli.BoolFlag{
				Name:  "skip-hidden",
				Value: true,
				Usage: "Skip dot files and directories when reading --dir",
			},
		},
		Action: func(c *cli.Context) error {
			p := runParams{
				Dir:        c.String("dir"),
				Files:      c.Args().Slice(),
				Mode:       c.String("mode"),
				StartMonth: c.Int("start-month"),
				Label:      c.String("label"),
				Template:   c.String("template"),
				Layout:     c.String("layout"),
				Out:        c.String("out"),
				Workers:    c.Int("workers"),
				SkipHidden: c.Bool("skip-hidden"),
			}
			if err := p.validate(); err != nil {
				return cli.Exit(err, 2)
			}
			return runBatch(c, cfg, logger, p)
		},
	}
}

func runBatch(c *cli.Context, cfg *common.Config, logger *slog.Logger, p runParams) error {
	ctx := c.Context

	mode, err := usage.ParseMode(p.Mode)
	if err != nil {
		return cli.Exit(err, 2)
	}
	batch, err := pipeline.NewBatch(usage.Options{Mode: mode, StartMonth: p.StartMonth}, p.Label)
	if err != nil {
		return cli.Exit(err, 2)
	}
	layout, err := export.LoadLayout(p.Layout)
	if err != nil {
		return cli.Exit(err, 2)
	}

	ing := ingest.NewFSIngestor(logger)
	var results []ingest.IngestionResult
	if p.Dir != "" {
		results, _, err = ing.IngestDirectory(ctx, p.Dir, p.SkipHidden)
	} else {
		results, _, err = ing.IngestPaths(ctx, p.Files)
	}
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	for _, r := range ingest.Accepted(results) {
		batch.Add(r.SourcePath, r.HashHex).PageCount = r.Pages
	}
	if len(batch.Documents) == 0 {
		printSkipped(c.App.Writer, results)
		return cli.Exit("no PDF files to process", 1)
	}

	db, err := repo.Open(ctx, repoConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	proc := pipeline.NewProcessor(logger, extract.NewFromConfig(cfg, logger),
		repo.NewExtractJobRepository(db, logger), cfg.Batch.DocumentTimeout)
	runner := pipeline.NewRunner(proc, logger,
		pipeline.WithWorkers(p.Workers),
		pipeline.WithBatchRepository(repo.NewBatchRepository(db, logger)),
	)

	sum, err := runner.Run(ctx, batch)
	if err != nil {
		return fmt.Errorf("batch %s: %w", batch.ID, err)
	}

	printSkipped(c.App.Writer, results)
	printDocuments(c.App.Writer, batch)
	printRecord(c.App.Writer, sum.Record)

	if sum.Succeeded == 0 {
		return cli.Exit("every document failed; workbook not written", 1)
	}
	wb := export.NewWorkbook(layout, p.Template, logger)
	if err := wb.WriteFile(ctx, p.Out, sum.Record, batch.Label); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "\nbatch %s: %d/%d documents, %d months -> %s\n",
		batch.ID, sum.Succeeded, sum.Documents, sum.Record.Len(), p.Out)
	return err
}
