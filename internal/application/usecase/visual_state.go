package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bibbank/fraudscore/internal/application/dto"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/port"
)

// GetVisualState loads the caller's dashboard snapshot.
type GetVisualState struct {
	repo port.VisualStateRepository
}

func NewGetVisualState(repo port.VisualStateRepository) *GetVisualState {
	return &GetVisualState{repo: repo}
}

// Execute returns nil when nothing was saved yet.
func (uc *GetVisualState) Execute(ctx context.Context, userID uuid.UUID) (*dto.VisualState, error) {
	state, err := uc.repo.Get(ctx, userID)
	if errors.Is(err, model.ErrVisualStateNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load visual state: %w", err)
	}
	out := dto.FromVisualState(state)
	return &out, nil
}

// SaveVisualState replaces the caller's dashboard snapshot.
type SaveVisualState struct {
	repo port.VisualStateRepository
}

func NewSaveVisualState(repo port.VisualStateRepository) *SaveVisualState {
	return &SaveVisualState{repo: repo}
}

func (uc *SaveVisualState) Execute(ctx context.Context, userID uuid.UUID, req dto.SaveVisualStateRequest) error {
	state, err := model.NewVisualState(userID, dropNull(req.Summary), dropNull(req.Samples), req.Fields)
	if err != nil {
		return fmt.Errorf("invalid visual state: %w", err)
	}
	if err := uc.repo.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save visual state: %w", err)
	}
	return nil
}

// dropNull treats an explicit JSON null like an absent value.
func dropNull(raw json.RawMessage) json.RawMessage {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}
