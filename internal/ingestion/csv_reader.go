package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/salesview-lab/salesview/internal/normalize"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVReader streams a CSV file row by row. The first line is the header.
// A leading BOM (UTF-8 or UTF-16) is consumed by the decoder, and lines that
// fail to parse or carry more cells than the header are skipped and counted.
type CSVReader struct {
	cr        *csv.Reader
	table     *tabular
	malformed int
}

// NewCSVReader reads the header line and prepares streaming.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	table := newTabular(header)
	if table.skipFirstData {
		slog.Info("[Import] Metadata prefix detected in CSV header")
	}

	return &CSVReader{cr: cr, table: table}, nil
}

// Header returns the cleaned header names.
func (r *CSVReader) Header() []string {
	return r.table.header
}

// Malformed returns the number of lines skipped so far.
func (r *CSVReader) Malformed() int {
	return r.malformed
}

func (r *CSVReader) Read() (normalize.Row, error) {
	for {
		record, err := r.cr.Read()
		if err == io.EOF {
			return nil, io.EOF
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			r.malformed++
			slog.Debug("[Import] Skipping malformed CSV line", "line", parseErr.Line, "error", parseErr.Err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}

		if isBlank(record) {
			continue
		}
		if len(record) > len(r.table.header) {
			r.malformed++
			line, _ := r.cr.FieldPos(0)
			slog.Debug("[Import] Skipping CSV line with extra cells", "line", line, "cells", len(record))
			continue
		}

		row, ok := r.table.row(record)
		if !ok {
			continue
		}
		return row, nil
	}
}
