package ingestion

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/salesview-lab/salesview/internal/normalize"
)

// ErrNotArray is returned when a JSON import payload is not a top-level array.
var ErrNotArray = errors.New("data must be an array")

// RowReader yields raw rows one at a time and io.EOF at the end.
// Readers never buffer the whole input.
type RowReader interface {
	Read() (normalize.Row, error)
}

// malformedCounter is implemented by readers that skip unparseable input.
type malformedCounter interface {
	Malformed() int
}

// SliceReader serves rows that are already decoded.
type SliceReader struct {
	rows []normalize.Row
	pos  int
}

func NewSliceReader(rows []normalize.Row) *SliceReader {
	return &SliceReader{rows: rows}
}

func (r *SliceReader) Read() (normalize.Row, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

// Some spreadsheet exports prepend "file in" to the first header line.
var metadataPrefix = regexp.MustCompile(`(?i)^file in\s*`)

// cleanHeader trims a header cell and strips the export metadata prefix.
func cleanHeader(h string) string {
	return metadataPrefix.ReplaceAllString(strings.TrimSpace(h), "")
}

// hasMetadataPrefix reports whether the header line carries the export marker.
func hasMetadataPrefix(header []string) bool {
	return strings.Contains(strings.ToLower(strings.Join(header, ",")), "file in")
}

// restatesHeader reports whether a data row is a repeated header line.
func restatesHeader(first string) bool {
	return strings.Contains(first, "Transaction ID") || strings.Contains(first, "Customer ID")
}

// tabular turns header-keyed string records into rows. It is shared by the
// CSV and XLSX readers.
type tabular struct {
	header        []string
	skipFirstData bool
	seenData      bool
}

func newTabular(raw []string) *tabular {
	header := make([]string, len(raw))
	for i, h := range raw {
		header[i] = cleanHeader(h)
	}
	return &tabular{
		header:        header,
		skipFirstData: hasMetadataPrefix(raw),
	}
}

// row maps a record onto the header. ok is false when the record must be
// dropped (restated header after a metadata line).
func (t *tabular) row(record []string) (normalize.Row, bool) {
	first := !t.seenData
	t.seenData = true
	if first && t.skipFirstData && len(record) > 0 && restatesHeader(record[0]) {
		return nil, false
	}

	row := make(normalize.Row, len(t.header))
	for i, name := range t.header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, true
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
