package port

import (
	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
)

// UploadParser extracts the header and records of an uploaded file.
type UploadParser interface {
	Parse(kind valueobject.FileKind, data []byte) (fields []string, rows []feature.RawRecord, err error)
}
