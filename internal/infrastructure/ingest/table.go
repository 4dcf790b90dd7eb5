// Package ingest turns uploaded CSV and PDF files into raw records.
package ingest

import (
	"errors"
	"strings"

	"github.com/bibbank/fraudscore/internal/domain/feature"
)

var (
	ErrUnreadableCSV = errors.New("unable to read csv file")
	ErrUnreadablePDF = errors.New("unable to read pdf file")
	ErrNoText        = errors.New("no readable text found in pdf")
	ErrNoTable       = errors.New("could not detect a tabular csv-like table in the pdf")
	ErrNoRows        = errors.New("no data rows found in pdf table")
)

// Table is a parsed upload: the header as found and one record per data row.
type Table struct {
	Fields []string
	Rows   []feature.RawRecord
}

// NormalizeHeader lowercases a header, treats "/" as a space and joins the
// remaining words with underscores: "Txn Amount/USD" becomes "txn_amount_usd".
func NormalizeHeader(name string) string {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "/", " ")
	return strings.Join(strings.Fields(name), "_")
}

// record zips a header with one row; short rows leave trailing fields absent
// and extra cells are dropped.
func record(keys, cells []string) feature.RawRecord {
	rec := make(feature.RawRecord, len(keys))
	for i, key := range keys {
		if key == "" || i >= len(cells) {
			continue
		}
		rec[key] = cells[i]
	}
	return rec
}
