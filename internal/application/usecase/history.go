package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bibbank/fraudscore/internal/application/dto"
	"github.com/bibbank/fraudscore/internal/domain/port"
)

// HistoryLimit is how many uploads the history lists.
const HistoryLimit = 20

// ListHistory returns the caller's most recent uploads.
type ListHistory struct {
	uploads port.UploadRepository
}

func NewListHistory(uploads port.UploadRepository) *ListHistory {
	return &ListHistory{uploads: uploads}
}

func (uc *ListHistory) Execute(ctx context.Context, userID uuid.UUID) ([]dto.UploadItem, error) {
	uploads, err := uc.uploads.ListRecent(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	items := make([]dto.UploadItem, 0, len(uploads))
	for _, u := range uploads {
		items = append(items, dto.FromUpload(u))
	}
	return items, nil
}

// DownloadUpload opens a stored upload of the caller.
type DownloadUpload struct {
	uploads port.UploadRepository
	files   port.FileStore
}

func NewDownloadUpload(uploads port.UploadRepository, files port.FileStore) *DownloadUpload {
	return &DownloadUpload{uploads: uploads, files: files}
}

// Execute returns model.ErrUploadNotFound for an unknown ID and
// ErrFileMissingOnServer when the row outlived its file.
func (uc *DownloadUpload) Execute(ctx context.Context, userID, id uuid.UUID) (dto.Download, error) {
	upload, err := uc.uploads.FindByID(ctx, userID, id)
	if err != nil {
		return dto.Download{}, err
	}

	content, err := uc.files.Open(upload.StoredPath())
	if errors.Is(err, fs.ErrNotExist) {
		return dto.Download{}, ErrFileMissingOnServer
	}
	if err != nil {
		return dto.Download{}, fmt.Errorf("failed to open upload: %w", err)
	}
	return dto.Download{Content: content, Filename: upload.Filename()}, nil
}

// DeleteUpload removes a history entry and its stored file.
type DeleteUpload struct {
	uploads port.UploadRepository
	files   port.FileStore
	logger  *slog.Logger
}

func NewDeleteUpload(uploads port.UploadRepository, files port.FileStore, logger *slog.Logger) *DeleteUpload {
	return &DeleteUpload{uploads: uploads, files: files, logger: logger}
}

// Execute deletes the row first; a file that cannot be removed is logged.
func (uc *DeleteUpload) Execute(ctx context.Context, userID, id uuid.UUID) error {
	path, err := uc.uploads.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.files.Remove(path); err != nil {
		uc.logger.WarnContext(ctx, "failed to remove stored upload", "upload_id", id, "path", path, "error", err)
	}
	return nil
}
