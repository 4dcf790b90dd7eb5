package valueobject

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileKind identifies the format of an uploaded batch file.
type FileKind struct {
	value string
}

var (
	FileKindCSV = FileKind{value: "csv"}
	FileKindPDF = FileKind{value: "pdf"}
)

// FileKindFromString parses "csv" or "pdf", case-insensitively.
func FileKindFromString(s string) (FileKind, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FileKindCSV, nil
	case "pdf":
		return FileKindPDF, nil
	default:
		return FileKind{}, fmt.Errorf("invalid file kind: %s", s)
	}
}

// FileKindFromName infers the kind from a file extension.
func FileKindFromName(name string) (FileKind, error) {
	return FileKindFromString(strings.TrimPrefix(filepath.Ext(name), "."))
}

// String returns the string representation.
func (k FileKind) String() string {
	return k.value
}

// Matches reports whether name carries this kind's extension.
func (k FileKind) Matches(name string) bool {
	return strings.EqualFold(filepath.Ext(name), "."+k.value)
}
