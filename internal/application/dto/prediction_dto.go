package dto

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
)

// PredictionResponse is the output of a single-record prediction.
type PredictionResponse struct {
	Probability float64  `json:"probability"`
	Label       string   `json:"label"`
	Reasons     []string `json:"reasons"`
	Model       string   `json:"model"`
}

// FromPrediction maps a prediction and the serving model's source tag.
func FromPrediction(p model.Prediction, source string) PredictionResponse {
	return PredictionResponse{
		Probability: p.Probability(),
		Label:       p.Label().String(),
		Reasons:     p.Reasons(),
		Model:       source,
	}
}

// RowResult is one examined upload row: a prediction or its problems.
type RowResult struct {
	Row         int      `json:"row"`
	Label       string   `json:"label,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	Reasons     []string `json:"reasons,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

func FromRowResult(r model.RowResult) RowResult {
	if !r.Scored() {
		return RowResult{Row: r.Row, Errors: r.Problems}
	}
	probability := r.Prediction.Probability()
	return RowResult{
		Row:         r.Row,
		Label:       r.Prediction.Label().String(),
		Probability: &probability,
		Reasons:     r.Prediction.Reasons(),
	}
}

// ScoreUploadRequest is the input of the ScoreUpload use case.
type ScoreUploadRequest struct {
	Content  io.Reader
	Filename string
	Kind     valueobject.FileKind
	UserID   uuid.UUID
}

// BatchResponse summarizes a scored upload with its first labeled rows.
type BatchResponse struct {
	UploadID uuid.UUID          `json:"upload_id"`
	Summary  model.BatchSummary `json:"summary"`
	Samples  []RowResult        `json:"samples"`
	Fields   []string           `json:"fields"`
	Model    string             `json:"model"`
}

// FromBatchResult maps a batch result; only the samples are carried.
func FromBatchResult(uploadID uuid.UUID, b *model.BatchResult, source string) BatchResponse {
	samples := b.Samples()
	out := BatchResponse{
		UploadID: uploadID,
		Summary:  b.Summary,
		Samples:  make([]RowResult, 0, len(samples)),
		Fields:   b.Fields,
		Model:    source,
	}
	for _, s := range samples {
		out.Samples = append(out.Samples, FromRowResult(s))
	}
	return out
}

// UploadItem is one entry of the upload history.
type UploadItem struct {
	ID        uuid.UUID          `json:"id"`
	Filename  string             `json:"filename"`
	Kind      string             `json:"kind"`
	Summary   model.BatchSummary `json:"summary"`
	CreatedAt time.Time          `json:"created_at"`
}

func FromUpload(u *model.Upload) UploadItem {
	return UploadItem{
		ID:        u.ID(),
		Filename:  u.Filename(),
		Kind:      u.Kind().String(),
		Summary:   u.Summary(),
		CreatedAt: u.CreatedAt(),
	}
}

// Download is a stored upload opened for streaming; the caller closes Content.
type Download struct {
	Content  io.ReadCloser
	Filename string
}

// VisualState is the saved dashboard snapshot. Summary is null and samples
// and fields are empty when never saved.
type VisualState struct {
	Summary   json.RawMessage `json:"summary"`
	Samples   json.RawMessage `json:"samples"`
	Fields    []string        `json:"fields"`
	UpdatedAt time.Time       `json:"updated_at"`
}

var (
	jsonNull       = json.RawMessage("null")
	jsonEmptyArray = json.RawMessage("[]")
)

func FromVisualState(v *model.VisualState) VisualState {
	out := VisualState{
		Summary:   v.Summary(),
		Samples:   v.Samples(),
		Fields:    v.Fields(),
		UpdatedAt: v.UpdatedAt(),
	}
	if len(out.Summary) == 0 {
		out.Summary = jsonNull
	}
	if len(out.Samples) == 0 {
		out.Samples = jsonEmptyArray
	}
	if out.Fields == nil {
		out.Fields = []string{}
	}
	return out
}

// SaveVisualStateRequest is the dashboard snapshot to store.
type SaveVisualStateRequest struct {
	Summary json.RawMessage `json:"summary"`
	Samples json.RawMessage `json:"samples"`
	Fields  []string        `json:"fields"`
}
