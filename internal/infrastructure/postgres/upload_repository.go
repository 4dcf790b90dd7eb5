package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
	pgpkg "github.com/bibbank/fraudscore/pkg/postgres"
)

// DB is the pool surface the repositories need; *pgxpool.Pool satisfies it.
type DB interface {
	pgpkg.Querier
	pgpkg.Beginner
}

// UploadRepository implements port.UploadRepository using PostgreSQL.
type UploadRepository struct {
	db DB
}

// NewUploadRepository creates a new PostgreSQL-backed upload repository.
func NewUploadRepository(db DB) *UploadRepository {
	return &UploadRepository{db: db}
}

const uploadColumns = `id, user_id, filename, stored_path, file_kind, summary, created_at`

// Save inserts a new upload row.
func (r *UploadRepository) Save(ctx context.Context, upload *model.Upload) error {
	summary, err := json.Marshal(upload.Summary())
	if err != nil {
		return fmt.Errorf("failed to encode upload summary: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO upload_history (`+uploadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		upload.ID(),
		upload.UserID(),
		upload.Filename(),
		upload.StoredPath(),
		upload.Kind().String(),
		summary,
		upload.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

// FindByID returns the caller's upload.
func (r *UploadRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Upload, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+uploadColumns+`
		FROM upload_history
		WHERE user_id = $1 AND id = $2
	`, userID, id)

	upload, err := scanUpload(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return upload, nil
}

// ListRecent returns the caller's newest uploads first.
func (r *UploadRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Upload, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+uploadColumns+`
		FROM upload_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	uploads := make([]*model.Upload, 0, limit)
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate uploads: %w", err)
	}
	return uploads, nil
}

// Delete removes the caller's upload and returns where its file was stored.
func (r *UploadRepository) Delete(ctx context.Context, userID, id uuid.UUID) (string, error) {
	var storedPath string
	err := pgpkg.WithTx(ctx, r.db, func(q pgpkg.Querier) error {
		err := q.QueryRow(ctx, `
			SELECT stored_path FROM upload_history
			WHERE user_id = $1 AND id = $2
			FOR UPDATE
		`, userID, id).Scan(&storedPath)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrUploadNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock upload: %w", err)
		}

		if _, err := q.Exec(ctx, `DELETE FROM upload_history WHERE user_id = $1 AND id = $2`, userID, id); err != nil {
			return fmt.Errorf("failed to delete upload: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return storedPath, nil
}

func scanUpload(row pgx.Row) (*model.Upload, error) {
	var (
		id         uuid.UUID
		userID     uuid.UUID
		filename   string
		storedPath string
		kindStr    string
		summaryRaw []byte
		createdAt  time.Time
	)

	if err := row.Scan(&id, &userID, &filename, &storedPath, &kindStr, &summaryRaw, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan upload: %w", err)
	}

	kind, err := valueobject.FileKindFromString(kindStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file kind: %w", err)
	}

	var summary model.BatchSummary
	if err := json.Unmarshal(summaryRaw, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode upload summary: %w", err)
	}

	return model.ReconstructUpload(id, userID, filename, storedPath, kind, summary, createdAt), nil
}
