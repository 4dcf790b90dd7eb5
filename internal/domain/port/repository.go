package port

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/pkg/events"
)

// UploadRepository is the persistence port for scored uploads.
type UploadRepository interface {
	// Save persists a new upload.
	Save(ctx context.Context, upload *model.Upload) error

	// FindByID returns the caller's upload or model.ErrUploadNotFound.
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Upload, error)

	// ListRecent returns the caller's newest uploads first.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Upload, error)

	// Delete removes the caller's upload and returns its stored file path.
	Delete(ctx context.Context, userID, id uuid.UUID) (storedPath string, err error)
}

// VisualStateRepository stores one dashboard snapshot per user.
type VisualStateRepository interface {
	// Get returns the snapshot or model.ErrVisualStateNotFound.
	Get(ctx context.Context, userID uuid.UUID) (*model.VisualState, error)

	// Save inserts or replaces the user's snapshot.
	Save(ctx context.Context, state *model.VisualState) error
}

// FileStore keeps the raw bytes of uploaded files.
type FileStore interface {
	// Save writes content under a unique name derived from filename and
	// returns the stored path.
	Save(ctx context.Context, filename string, content io.Reader) (string, error)

	// Open returns the stored file.
	Open(path string) (io.ReadCloser, error)

	// Remove deletes the stored file. A missing file is not an error.
	Remove(path string) error
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}
