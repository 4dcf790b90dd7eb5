package model

import (
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
)

const (
	// MaxBatchRows bounds how many rows of one upload are examined.
	MaxBatchRows = 1000
	// SampleSize is how many labeled rows are echoed back with a batch.
	SampleSize = 5
)

// LabelCounts tallies scored rows per label.
type LabelCounts struct {
	Fraud  int `json:"Fraud"`
	Review int `json:"Review"`
	Normal int `json:"Normal"`
}

// Add counts one row with the given label.
func (c *LabelCounts) Add(label valueobject.Label) {
	switch label {
	case valueobject.LabelFraud:
		c.Fraud++
	case valueobject.LabelReview:
		c.Review++
	case valueobject.LabelNormal:
		c.Normal++
	}
}

// Sum returns the number of counted rows.
func (c LabelCounts) Sum() int {
	return c.Fraud + c.Review + c.Normal
}

// BatchSummary is the digest persisted for every upload.
type BatchSummary struct {
	Total       int         `json:"total"`
	Scored      int         `json:"scored"`
	Errors      int         `json:"errors"`
	LabelCounts LabelCounts `json:"label_counts"`
}

// RowResult is the outcome of one batch row: either problems or a prediction.
type RowResult struct {
	Prediction *Prediction
	Problems   []string
	Row        int
}

// Scored reports whether the row produced a prediction.
func (r RowResult) Scored() bool {
	return r.Prediction != nil
}

// BatchResult aggregates the rows of one upload.
type BatchResult struct {
	Fields  []string
	Results []RowResult
	Summary BatchSummary
}

// NewBatchResult starts an empty batch over the detected columns.
func NewBatchResult(fields []string) *BatchResult {
	if fields == nil {
		fields = []string{}
	}
	return &BatchResult{Fields: fields}
}

// Full reports whether the row bound has been reached.
func (b *BatchResult) Full() bool {
	return b.Summary.Total >= MaxBatchRows
}

// AddRejected records a row that failed validation.
func (b *BatchResult) AddRejected(row int, problems []string) {
	b.Summary.Total++
	b.Summary.Errors++
	b.Results = append(b.Results, RowResult{Row: row, Problems: problems})
}

// AddScored records a scored row.
func (b *BatchResult) AddScored(row int, p Prediction) {
	b.Summary.Total++
	b.Summary.Scored++
	b.Summary.LabelCounts.Add(p.Label())
	b.Results = append(b.Results, RowResult{Row: row, Prediction: &p})
}

// Samples returns the first SampleSize scored rows.
func (b *BatchResult) Samples() []RowResult {
	samples := make([]RowResult, 0, SampleSize)
	for _, r := range b.Results {
		if len(samples) == SampleSize {
			break
		}
		if r.Scored() {
			samples = append(samples, r)
		}
	}
	return samples
}
