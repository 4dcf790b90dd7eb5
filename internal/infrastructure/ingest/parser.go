package ingest

import (
	"bytes"
	"fmt"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
)

// Parser implements port.UploadParser for CSV and PDF uploads.
type Parser struct {
	// Limit caps the rows read from a CSV; 0 reads all.
	Limit int
}

func (p Parser) Parse(kind valueobject.FileKind, data []byte) ([]string, []feature.RawRecord, error) {
	var (
		table *Table
		err   error
	)
	switch kind {
	case valueobject.FileKindCSV:
		table, err = ReadCSV(bytes.NewReader(data), p.Limit)
	case valueobject.FileKindPDF:
		table, err = ReadPDF(bytes.NewReader(data), int64(len(data)))
	default:
		return nil, nil, fmt.Errorf("unsupported file kind %q", kind.String())
	}
	if err != nil {
		return nil, nil, err
	}
	return table.Fields, table.Rows, nil
}
