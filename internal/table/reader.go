package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// utf8BOM is stripped from the start of the input; spreadsheet exports
// often begin with it and it would otherwise end up in the first header.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header holds the section titles, one per column.
type Header []string

// Title returns the section title for column i. Columns past the end of
// the header are named "Column <i+1>".
func (h Header) Title(i int) string {
	if i >= 0 && i < len(h) {
		return h[i]
	}
	return "Column " + strconv.Itoa(i+1)
}

// Row is one data record. Cells are ordered by column position.
type Row []string

// Cell returns the cell at column i, or "" if the row is shorter.
func (r Row) Cell(i int) string {
	if i >= 0 && i < len(r) {
		return r[i]
	}
	return ""
}

// LastIndex returns the index of the last cell, or -1 for an empty row.
func (r Row) LastIndex() int {
	return len(r) - 1
}

// Reader yields the rows of a comma-separated input one at a time.
type Reader struct {
	csv    *csv.Reader
	header Header
	closer io.Closer
}

// NewReader reads the header from r and returns a Reader positioned at the
// first data row.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM)) //nolint:errcheck // Peek guaranteed the bytes are buffered
	}

	cr := csv.NewReader(br)
	cr.Comma = ','
	cr.FieldsPerRecord = -1

	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	return &Reader{csv: cr, header: Header(record)}, nil
}

// Open opens the CSV file at path. The caller must Close the Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// Header returns the header row.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next data row, or io.EOF when the input is exhausted.
func (r *Reader) Next() (Row, error) {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read row: %w", err)
	}
	return Row(record), nil
}

// Close releases the underlying file when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// FromValues splits a grid of values, as returned by the Google Sheets API,
// into a header and data rows.
func FromValues(values [][]string) (Header, []Row, error) {
	if len(values) == 0 {
		return nil, nil, ErrNoHeader
	}
	rows := make([]Row, 0, len(values)-1)
	for _, v := range values[1:] {
		rows = append(rows, Row(v))
	}
	return Header(values[0]), rows, nil
}

// Write encodes a header and rows as CSV.
func Write(w io.Writer, header Header, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
