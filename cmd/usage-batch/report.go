package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/usage-tracker/internal/ingest"
	"github.com/joseph-ayodele/usage-tracker/internal/pipeline"
	"github.com/joseph-ayodele/usage-tracker/internal/usage"
)

func printDocuments(w io.Writer, b *pipeline.Batch) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"#", "File", "Status", "Method", "Months", "Error"})
	t.SetAutoWrapText(false)
	for _, d := range b.Documents {
		months, errMsg := "", ""
		if res, ok := d.Result(); ok {
			months = strconv.Itoa(res.Record.Len())
		}
		if err := d.Err(); err != nil {
			errMsg = err.Error()
		}
		t.Append([]string{
			strconv.Itoa(d.Seq + 1),
			filepath.Base(d.Path),
			string(d.Status()),
			d.Method(),
			months,
			errMsg,
		})
	}
	t.Render()
}

func printSkipped(w io.Writer, results []ingest.IngestionResult) {
	for _, r := range results {
		switch {
		case r.Err != "":
			_, _ = fmt.Fprintf(w, "skipped %s: %s\n", r.SourcePath, r.Err)
		case r.Deduplicated:
			_, _ = fmt.Fprintf(w, "skipped %s: same content as %s\n", r.SourcePath, r.DuplicateOf)
		}
	}
}

// printRecord lists months 1..12; months without a reading show "-".
func printRecord(w io.Writer, rec usage.Record) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Month", "kWh"})
	for m := 1; m <= 12; m++ {
		v, ok := rec.Get(m)
		if !ok {
			v = "-"
		}
		t.Append([]string{strconv.Itoa(m), v})
	}
	t.Render()
}
