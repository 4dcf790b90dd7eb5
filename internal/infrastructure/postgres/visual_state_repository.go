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
	pgpkg "github.com/bibbank/fraudscore/pkg/postgres"
)

// VisualStateRepository implements port.VisualStateRepository using PostgreSQL.
type VisualStateRepository struct {
	db pgpkg.Querier
}

func NewVisualStateRepository(db pgpkg.Querier) *VisualStateRepository {
	return &VisualStateRepository{db: db}
}

// Get returns the user's snapshot. NULL columns come back empty.
func (r *VisualStateRepository) Get(ctx context.Context, userID uuid.UUID) (*model.VisualState, error) {
	var (
		summary   []byte
		samples   []byte
		fieldsRaw []byte
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT summary, samples, fields, updated_at
		FROM visual_state
		WHERE user_id = $1
	`, userID).Scan(&summary, &samples, &fieldsRaw, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrVisualStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load visual state: %w", err)
	}

	var fields []string
	if len(fieldsRaw) > 0 {
		if err := json.Unmarshal(fieldsRaw, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode visual state fields: %w", err)
		}
	}

	return model.ReconstructVisualState(userID, summary, samples, fields, updatedAt), nil
}

// Save upserts the user's snapshot.
func (r *VisualStateRepository) Save(ctx context.Context, state *model.VisualState) error {
	var fields []byte
	if state.Fields() != nil {
		var err error
		if fields, err = json.Marshal(state.Fields()); err != nil {
			return fmt.Errorf("failed to encode visual state fields: %w", err)
		}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO visual_state (user_id, summary, samples, fields, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			samples = EXCLUDED.samples,
			fields = EXCLUDED.fields,
			updated_at = EXCLUDED.updated_at
	`,
		state.UserID(),
		nullableJSON(state.Summary()),
		nullableJSON(state.Samples()),
		nullableJSON(fields),
		state.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save visual state: %w", err)
	}
	return nil
}

// nullableJSON maps empty input to SQL NULL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
