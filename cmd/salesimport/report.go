package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"github.com/salesview-lab/salesview/internal/ingestion"
	"github.com/salesview-lab/salesview/internal/normalize"
)

func printBatch(w io.Writer, res storage.BatchResult, progress ingestion.Report) {
	if res.Failed {
		fmt.Fprintf(w, "  batch %d failed (%d records): %s\n", res.Number, res.Size, res.Error)
		return
	}
	fmt.Fprintf(w, "  batch %d: inserted %d (total %d)\n", res.Number, res.Inserted, progress.Imported)
}

func renderReport(w io.Writer, r ingestion.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Import report")

	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRows([]table.Row{
		{"Rows read", r.RowsSeen},
		{"Imported", r.Imported},
		{"Skipped (invalid)", r.Skipped},
		{"Failed (batch errors)", r.Failed},
		{"Malformed lines", r.Malformed},
		{"Batches", r.Batches},
		{"Failed batches", r.FailedBatches},
	})

	if len(r.SkipReasons) > 0 {
		t.AppendSeparator()
		reasons := make([]string, 0, len(r.SkipReasons))
		for reason := range r.SkipReasons {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			t.AppendRow(table.Row{"  " + reason, r.SkipReasons[normalize.Reason(reason)]})
		}
	}

	t.Render()
}
