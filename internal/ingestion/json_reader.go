package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/salesview-lab/salesview/internal/normalize"
)

// JSONArrayReader streams the elements of a top-level JSON array without
// decoding the whole document. Numbers are kept as json.Number so phone
// numbers and epoch dates keep their digits.
type JSONArrayReader struct {
	dec       *json.Decoder
	started   bool
	done      bool
	malformed int
}

func NewJSONArrayReader(r io.Reader) *JSONArrayReader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &JSONArrayReader{dec: dec}
}

// Malformed returns the number of array elements that were not objects.
func (r *JSONArrayReader) Malformed() int {
	return r.malformed
}

func (r *JSONArrayReader) Read() (normalize.Row, error) {
	if r.done {
		return nil, io.EOF
	}
	if !r.started {
		if err := r.open(); err != nil {
			return nil, err
		}
	}

	for r.dec.More() {
		var row normalize.Row
		err := r.dec.Decode(&row)
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			r.malformed++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("json: decode element: %w", err)
		}
		if row == nil {
			r.malformed++
			continue
		}
		return row, nil
	}

	if _, err := r.dec.Token(); err != nil {
		return nil, fmt.Errorf("json: close array: %w", err)
	}
	r.done = true
	return nil, io.EOF
}

func (r *JSONArrayReader) open() error {
	r.started = true
	tok, err := r.dec.Token()
	if errors.Is(err, io.EOF) {
		return ErrNotArray
	}
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return ErrNotArray
	}
	return nil
}
