package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	v1 "github.com/salesview-lab/salesview/internal/api/v1"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"github.com/salesview-lab/salesview/internal/normalize"
)

const (
	DefaultCSVBatchSize  = 500
	DefaultJSONBatchSize = 1000
)

// Report summarizes one import run.
type Report struct {
	// RowsSeen counts every row the reader produced.
	RowsSeen int `json:"rowsSeen"`
	// Imported counts records stored by successful batches.
	Imported int64 `json:"imported"`
	// Skipped counts rows rejected by the normalizer.
	Skipped int `json:"skipped"`
	// Failed counts records lost because their batch insert failed.
	Failed int `json:"failed"`
	// Malformed counts input lines the reader could not parse.
	Malformed     int                      `json:"malformed"`
	Batches       int                      `json:"batches"`
	FailedBatches int                      `json:"failedBatches"`
	SkipReasons   map[normalize.Reason]int `json:"skipReasons"`
}

// Loader pulls rows from a RowReader, normalizes them and inserts them in
// fixed-size batches. Inserts are synchronous: no row is read while a batch
// is being written, which bounds memory to one batch.
type Loader struct {
	BatchSize  int
	Store      storage.SalesWriter
	Normalizer *normalize.Normalizer

	// OnBatch, when set, is called after every insert attempt.
	OnBatch func(result storage.BatchResult, progress Report)
}

// Load runs the import to completion. A failed batch is logged and counted
// and loading continues. A reader error or context cancellation stops the
// run and returns the partial report alongside the error.
func (l *Loader) Load(ctx context.Context, rows RowReader) (Report, error) {
	if l.Store == nil {
		return Report{}, errors.New("loader: store must not be nil")
	}
	size := l.BatchSize
	if size <= 0 {
		size = DefaultCSVBatchSize
	}
	normalizer := l.Normalizer
	if normalizer == nil {
		normalizer = normalize.NewNormalizer(nil, nil)
	}

	report := Report{SkipReasons: make(map[normalize.Reason]int)}
	batch := make([]v1.Sale, 0, size)

	finish := func(err error) (Report, error) {
		if mc, ok := rows.(malformedCounter); ok {
			report.Malformed = mc.Malformed()
		}
		return report, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		row, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return finish(err)
		}
		report.RowsSeen++

		res := normalizer.Normalize(row)
		if res.Rejected() {
			report.Skipped++
			report.SkipReasons[res.Reason]++
			continue
		}

		batch = append(batch, res.Sale)
		if len(batch) >= size {
			l.flush(ctx, batch, &report)
			batch = make([]v1.Sale, 0, size)
		}
	}

	if len(batch) > 0 {
		l.flush(ctx, batch, &report)
	}

	slog.Info("[Loader] Import finished",
		"rows_seen", report.RowsSeen,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"batches", report.Batches)

	return finish(nil)
}

func (l *Loader) flush(ctx context.Context, batch []v1.Sale, report *Report) {
	report.Batches++
	result := storage.BatchResult{Number: report.Batches, Size: len(batch)}

	inserted, err := l.Store.InsertSales(ctx, batch)
	if err != nil {
		result.Failed = true
		result.Error = err.Error()
		report.Failed += len(batch)
		report.FailedBatches++
		slog.Error("[Loader] Batch insert failed",
			"batch", result.Number,
			"size", result.Size,
			"error", err)
	} else {
		result.Inserted = inserted
		report.Imported += inserted
		slog.Info(fmt.Sprintf("[Loader] Imported %d records", report.Imported),
			"batch", result.Number,
			"skipped", report.Skipped)
	}

	if l.OnBatch != nil {
		l.OnBatch(result, *report)
	}
}
