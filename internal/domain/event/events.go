package event

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/fraudscore/pkg/events"
)

const (
	// EventTypeUploadScored is emitted once an uploaded batch has been scored.
	EventTypeUploadScored = "fraudscore.upload.scored"

	// EventTypeHighRiskDetected is emitted when an upload holds Fraud rows.
	EventTypeHighRiskDetected = "fraudscore.high_risk.detected"

	// EventTypePredictionScored is emitted for every streamed record.
	EventTypePredictionScored = "fraudscore.prediction.scored"

	AggregateUpload     = "Upload"
	AggregatePrediction = "Prediction"
)

// UploadScored carries the summary of a scored upload.
type UploadScored struct {
	events.BaseEvent
	UploadID   uuid.UUID `json:"upload_id"`
	UserID     uuid.UUID `json:"user_id"`
	Filename   string    `json:"filename"`
	Kind       string    `json:"kind"`
	Total      int       `json:"total"`
	Scored     int       `json:"scored"`
	Errors     int       `json:"errors"`
	FraudRows  int       `json:"fraud_rows"`
	ReviewRows int       `json:"review_rows"`
	NormalRows int       `json:"normal_rows"`
}

// NewUploadScored builds an UploadScored event.
func NewUploadScored(
	uploadID, userID uuid.UUID,
	filename, kind string,
	total, scored, errs, fraud, review, normal int,
) UploadScored {
	return UploadScored{
		BaseEvent:  events.NewBaseEvent(EventTypeUploadScored, uploadID, AggregateUpload),
		UploadID:   uploadID,
		UserID:     userID,
		Filename:   filename,
		Kind:       kind,
		Total:      total,
		Scored:     scored,
		Errors:     errs,
		FraudRows:  fraud,
		ReviewRows: review,
		NormalRows: normal,
	}
}

// HighRiskDetected flags an upload that needs analyst attention.
type HighRiskDetected struct {
	events.BaseEvent
	UploadID  uuid.UUID `json:"upload_id"`
	UserID    uuid.UUID `json:"user_id"`
	Filename  string    `json:"filename"`
	FraudRows int       `json:"fraud_rows"`
}

// NewHighRiskDetected builds a HighRiskDetected event.
func NewHighRiskDetected(uploadID, userID uuid.UUID, filename string, fraudRows int) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent: events.NewBaseEvent(EventTypeHighRiskDetected, uploadID, AggregateUpload),
		UploadID:  uploadID,
		UserID:    userID,
		Filename:  filename,
		FraudRows: fraudRows,
	}
}

// PredictionScored is the outcome of one streamed record.
type PredictionScored struct {
	events.BaseEvent
	RecordKey   string          `json:"record_key,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Probability float64         `json:"probability"`
	Label       string          `json:"label"`
	Reasons     []string        `json:"reasons"`
	Model       string          `json:"model"`
}

// NewPredictionScored builds a PredictionScored event under a fresh aggregate id.
func NewPredictionScored(recordKey string, amount decimal.Decimal, probability float64, label string, reasons []string, model string) PredictionScored {
	return PredictionScored{
		BaseEvent:   events.NewBaseEvent(EventTypePredictionScored, uuid.New(), AggregatePrediction),
		RecordKey:   recordKey,
		Amount:      amount,
		Probability: probability,
		Label:       label,
		Reasons:     reasons,
		Model:       model,
	}
}
