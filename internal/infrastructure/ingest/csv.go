package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a UTF-8 CSV upload with a header row. Records are keyed by
// the header exactly as written. At most limit rows are read when limit > 0.
func ReadCSV(r io.Reader, limit int) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableCSV, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrUnreadableCSV)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := newReader(bytes.NewReader(data), ',')
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Fields: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableCSV, err)
	}

	table := &Table{Fields: header}
	for limit <= 0 || len(table.Rows) < limit {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableCSV, err)
		}
		table.Rows = append(table.Rows, record(header, cells))
	}
	return table, nil
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}
