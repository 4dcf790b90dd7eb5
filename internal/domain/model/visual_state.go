package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VisualState is the dashboard snapshot a user last saved. Summary and
// samples are opaque JSON owned by the front end.
type VisualState struct {
	updatedAt time.Time
	summary   json.RawMessage
	samples   json.RawMessage
	fields    []string
	userID    uuid.UUID
}

// NewVisualState validates a snapshot about to be saved.
func NewVisualState(userID uuid.UUID, summary, samples json.RawMessage, fields []string) (*VisualState, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID is required")
	}
	if len(summary) > 0 && !json.Valid(summary) {
		return nil, fmt.Errorf("summary is not valid JSON")
	}
	if len(samples) > 0 && !json.Valid(samples) {
		return nil, fmt.Errorf("samples is not valid JSON")
	}
	return &VisualState{
		userID:    userID,
		summary:   summary,
		samples:   samples,
		fields:    fields,
		updatedAt: time.Now().UTC(),
	}, nil
}

// ReconstructVisualState rebuilds a VisualState from persisted data.
func ReconstructVisualState(userID uuid.UUID, summary, samples json.RawMessage, fields []string, updatedAt time.Time) *VisualState {
	return &VisualState{
		userID:    userID,
		summary:   summary,
		samples:   samples,
		fields:    fields,
		updatedAt: updatedAt,
	}
}

func (v *VisualState) UserID() uuid.UUID        { return v.userID }
func (v *VisualState) Summary() json.RawMessage { return v.summary }
func (v *VisualState) Samples() json.RawMessage { return v.samples }
func (v *VisualState) Fields() []string         { return v.fields }
func (v *VisualState) UpdatedAt() time.Time     { return v.updatedAt }
