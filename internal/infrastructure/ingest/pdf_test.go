package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudscore/internal/domain/feature"
)

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"  Amount ":            "amount",
		"Transactions Last 1h": "transactions_last_1h",
		"Txn Amount/USD":       "txn_amount_usd",
		"device_id":            "device_id",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), "header %q", in)
	}
}

func TestParseTable(t *testing.T) {
	text := "Statement for March\n" +
		"Page 1 of 1\n" +
		`"Amount", "Merchant ID", Currency` + "\n" +
		"\n" +
		"120.50, m1, usd\n" +
		"99, m2\n" +
		"Total: 219.50\n" +
		"5, ignored, row\n"

	table, err := ParseTable(text)
	require.NoError(t, err)

	assert.Equal(t, []string{"Amount", "Merchant ID", "Currency"}, table.Fields)
	assert.Equal(t, []feature.RawRecord{
		{"amount": "120.50", "merchant_id": " m1", "currency": " usd"},
		{"amount": "99", "merchant_id": " m2"},
	}, table.Rows)
}

func TestParseTable_TabDelimited(t *testing.T) {
	table, err := ParseTable("amount\tchannel\n10\tweb\n20\tpos\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"amount", "channel"}, table.Fields)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, "pos", table.Rows[1]["channel"])
}

func TestParseTable_SkipsDelimitedLinesWithoutAmount(t *testing.T) {
	table, err := ParseTable("Name, Address\nacme, street\namount,city\n1,paris\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"amount", "city"}, table.Fields)
	assert.Equal(t, []feature.RawRecord{{"amount": "1", "city": "paris"}}, table.Rows)
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"blank", " \n\t\n", ErrNoText},
		{"no table", "just some prose\nand more", ErrNoTable},
		{"header without amount", "a,b\n1,2\n", ErrNoTable},
		{"header without rows", "amount,currency\nthanks for banking with us\n", ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(tt.text)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadPDF_NotAPDF(t *testing.T) {
	data := []byte("amount,currency\n1,usd\n")

	_, err := ReadPDF(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, ErrUnreadablePDF)
}
