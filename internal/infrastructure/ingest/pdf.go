package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the text of every page, pages joined by newlines.
// Each text row of a page becomes one line.
func ExtractText(r io.ReaderAt, size int64) (text string, err error) {
	// The parser panics on some malformed documents.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadablePDF, p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := pageText(page)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadablePDF, i, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}

func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return page.GetPlainText(nil)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n"), nil
}

// ReadPDF extracts the text of a PDF upload and detects its table.
func ReadPDF(r io.ReaderAt, size int64) (*Table, error) {
	text, err := ExtractText(r, size)
	if err != nil {
		return nil, err
	}
	return ParseTable(text)
}

// ParseTable finds a CSV-like table in extracted text. The header is the
// first line that holds a delimiter (comma, else tab) and, once normalized,
// an amount column. Lines with the delimiter that follow it are rows; the
// first line without one after a row ends the table.
//
// Fields are the header cells trimmed of spaces and quotes. Records are keyed
// by the normalized header.
func ParseTable(text string) (*Table, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, ErrNoText
	}

	for i, line := range lines {
		delimiter := detectDelimiter(line)
		if delimiter == "" {
			continue
		}

		headers := strings.Split(line, delimiter)
		keys := make([]string, len(headers))
		hasAmount := false
		for j, h := range headers {
			headers[j] = strings.Trim(strings.TrimSpace(h), `"`)
			keys[j] = NormalizeHeader(headers[j])
			hasAmount = hasAmount || keys[j] == "amount"
		}
		if !hasAmount {
			continue
		}

		var data []string
		for _, next := range lines[i+1:] {
			if strings.Contains(next, delimiter) {
				data = append(data, next)
			} else if len(data) > 0 {
				break
			}
		}
		if len(data) == 0 {
			return nil, ErrNoRows
		}

		cr := newReader(strings.NewReader(strings.Join(data, "\n")), rune(delimiter[0]))
		table := &Table{Fields: headers}
		for {
			cells, err := cr.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
			}
			table.Rows = append(table.Rows, record(keys, cells))
		}
		return table, nil
	}
	return nil, ErrNoTable
}

func detectDelimiter(line string) string {
	switch {
	case strings.Contains(line, ","):
		return ","
	case strings.Contains(line, "\t"):
		return "\t"
	}
	return ""
}
