package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/fraudscore/internal/application/dto"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/port"
	"github.com/bibbank/fraudscore/internal/domain/service"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
)

// ScoreUpload stores an uploaded CSV or PDF, scores its rows and records the
// upload in the caller's history.
type ScoreUpload struct {
	files     port.FileStore
	parser    port.UploadParser
	batch     *service.BatchScorer
	uploads   port.UploadRepository
	publisher port.EventPublisher
	metrics   port.Metrics
	source    string
	logger    *slog.Logger
}

// NewScoreUpload creates a ScoreUpload use case. metrics may be nil.
func NewScoreUpload(
	files port.FileStore,
	parser port.UploadParser,
	batch *service.BatchScorer,
	uploads port.UploadRepository,
	publisher port.EventPublisher,
	metrics port.Metrics,
	source string,
	logger *slog.Logger,
) *ScoreUpload {
	return &ScoreUpload{
		files:     files,
		parser:    parser,
		batch:     batch,
		uploads:   uploads,
		publisher: publisher,
		metrics:   metrics,
		source:    source,
		logger:    logger,
	}
}

// Execute runs the upload end to end. Parse failures return the parser's
// error and leave no history row behind.
func (uc *ScoreUpload) Execute(ctx context.Context, req dto.ScoreUploadRequest) (dto.BatchResponse, error) {
	ctx, span := tracer.Start(ctx, "ScoreUpload")
	defer span.End()
	span.SetAttributes(attribute.String("fraudscore.file_kind", req.Kind.String()))

	if req.Content == nil || req.Filename == "" {
		return dto.BatchResponse{}, ErrMissingFile
	}
	if req.Kind == valueobject.FileKindPDF && !req.Kind.Matches(req.Filename) {
		return dto.BatchResponse{}, ErrUnsupportedFile
	}

	path, err := uc.files.Save(ctx, req.Filename, req.Content)
	if err != nil {
		return dto.BatchResponse{}, fmt.Errorf("failed to store upload: %w", err)
	}

	result, err := uc.score(ctx, req.Kind, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		if rmErr := uc.files.Remove(path); rmErr != nil {
			uc.logger.Warn("failed to remove unreadable upload", "path", path, "error", rmErr)
		}
		return dto.BatchResponse{}, err
	}

	upload, err := model.NewUpload(req.UserID, req.Filename, path, req.Kind, result.Summary)
	if err != nil {
		return dto.BatchResponse{}, fmt.Errorf("failed to create upload: %w", err)
	}
	if err := uc.uploads.Save(ctx, upload); err != nil {
		return dto.BatchResponse{}, fmt.Errorf("failed to save upload: %w", err)
	}

	// Publishing is best effort once the upload is committed.
	if evts := upload.ClearEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			uc.logger.Warn("failed to publish upload events", "upload_id", upload.ID(), "error", err)
		}
	}

	uc.record(ctx, req.Kind, result)
	uc.logger.InfoContext(ctx, "upload scored",
		slog.String("upload_id", upload.ID().String()),
		slog.String("kind", req.Kind.String()),
		slog.Int("total", result.Summary.Total),
		slog.Int("scored", result.Summary.Scored),
		slog.Int("errors", result.Summary.Errors),
	)
	span.SetAttributes(
		attribute.Int("fraudscore.rows.total", result.Summary.Total),
		attribute.Int("fraudscore.rows.fraud", result.Summary.LabelCounts.Fraud),
	)

	return dto.FromBatchResult(upload.ID(), result, uc.source), nil
}

func (uc *ScoreUpload) score(ctx context.Context, kind valueobject.FileKind, path string) (*model.BatchResult, error) {
	f, err := uc.files.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored upload: %w", err)
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read stored upload: %w", err)
	}

	fields, rows, err := uc.parser.Parse(kind, data)
	if err != nil {
		return nil, err
	}
	return uc.batch.Score(ctx, fields, rows, nil), nil
}

func (uc *ScoreUpload) record(ctx context.Context, kind valueobject.FileKind, result *model.BatchResult) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordBatch(ctx, kind.String(), result.Summary)
	for _, r := range result.Results {
		if r.Scored() {
			uc.metrics.RecordPrediction(ctx, r.Prediction.Label().String(), uc.source)
		}
	}
}
