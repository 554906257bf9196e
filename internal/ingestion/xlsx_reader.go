package ingestion

import (
	"errors"
	"fmt"
	"io"

	"github.com/salesview-lab/salesview/internal/normalize"
	"github.com/xuri/excelize/v2"
)

// XLSXReader streams rows of the first worksheet. The first non-empty row is
// the header. Cells are read as their formatted text.
type XLSXReader struct {
	file  *excelize.File
	rows  *excelize.Rows
	table *tabular
}

// NewXLSXReader opens a workbook and positions on the header row.
// Close must be called when done.
func NewXLSXReader(r io.Reader) (*XLSXReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, errors.New("xlsx: workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx: read rows from %s: %w", sheets[0], err)
	}

	x := &XLSXReader{file: f, rows: rows}
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			x.Close()
			return nil, fmt.Errorf("xlsx: read header: %w", err)
		}
		if isBlank(cols) {
			continue
		}
		x.table = newTabular(cols)
		return x, nil
	}

	x.Close()
	return nil, errors.New("xlsx: sheet has no header row")
}

func (x *XLSXReader) Read() (normalize.Row, error) {
	for x.rows.Next() {
		cols, err := x.rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("xlsx: read row: %w", err)
		}
		if isBlank(cols) {
			continue
		}
		row, ok := x.table.row(cols)
		if !ok {
			continue
		}
		return row, nil
	}
	if err := x.rows.Error(); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	return nil, io.EOF
}

// Close releases the row iterator and the workbook's temp files.
func (x *XLSXReader) Close() error {
	if x.rows != nil {
		x.rows.Close()
	}
	return x.file.Close()
}
