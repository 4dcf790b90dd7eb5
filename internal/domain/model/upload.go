package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/fraudscore/internal/domain/event"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
	"github.com/bibbank/fraudscore/pkg/events"
)

// Upload is the aggregate root for a scored batch file.
type Upload struct {
	events.EventCollector

	createdAt  time.Time
	filename   string
	storedPath string
	kind       valueobject.FileKind
	summary    BatchSummary
	id         uuid.UUID
	userID     uuid.UUID
}

// NewUpload records a freshly scored upload and raises its domain events.
func NewUpload(
	userID uuid.UUID,
	filename string,
	storedPath string,
	kind valueobject.FileKind,
	summary BatchSummary,
) (*Upload, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID is required")
	}
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if storedPath == "" {
		return nil, fmt.Errorf("stored path is required")
	}

	u := &Upload{
		id:         uuid.New(),
		userID:     userID,
		filename:   filename,
		storedPath: storedPath,
		kind:       kind,
		summary:    summary,
		createdAt:  time.Now().UTC(),
	}

	u.Record(event.NewUploadScored(
		u.id, u.userID, u.filename, u.kind.String(),
		summary.Total, summary.Scored, summary.Errors,
		summary.LabelCounts.Fraud, summary.LabelCounts.Review, summary.LabelCounts.Normal,
	))
	if summary.LabelCounts.Fraud > 0 {
		u.Record(event.NewHighRiskDetected(u.id, u.userID, u.filename, summary.LabelCounts.Fraud))
	}

	return u, nil
}

// ReconstructUpload rebuilds an Upload from persisted data (no validation, no events).
func ReconstructUpload(
	id, userID uuid.UUID,
	filename, storedPath string,
	kind valueobject.FileKind,
	summary BatchSummary,
	createdAt time.Time,
) *Upload {
	return &Upload{
		id:         id,
		userID:     userID,
		filename:   filename,
		storedPath: storedPath,
		kind:       kind,
		summary:    summary,
		createdAt:  createdAt,
	}
}

// --- Accessors ---

func (u *Upload) ID() uuid.UUID              { return u.id }
func (u *Upload) UserID() uuid.UUID          { return u.userID }
func (u *Upload) Filename() string           { return u.filename }
func (u *Upload) StoredPath() string         { return u.storedPath }
func (u *Upload) Kind() valueobject.FileKind { return u.kind }
func (u *Upload) Summary() BatchSummary      { return u.summary }
func (u *Upload) CreatedAt() time.Time       { return u.createdAt }
