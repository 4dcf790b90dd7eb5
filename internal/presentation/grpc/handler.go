package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/fraudscore/internal/application/usecase"
	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/pkg/auth"
)

// requireRole checks that the caller has at least one of the given roles.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	for _, role := range roles {
		if claims.HasRole(role) {
			return nil
		}
	}
	return status.Error(codes.PermissionDenied, "insufficient permissions")
}

func userIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok || claims.UserID == uuid.Nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	return claims.UserID, nil
}

// Compile-time assertion that FraudScoringHandler implements FraudScoringServiceServer.
var _ FraudScoringServiceServer = (*FraudScoringHandler)(nil)

// FraudScoringHandler implements the gRPC FraudScoringServiceServer interface.
type FraudScoringHandler struct {
	UnimplementedFraudScoringServiceServer
	predict     *usecase.Predict
	listHistory *usecase.ListHistory
	logger      *slog.Logger
}

// NewFraudScoringHandler creates a new gRPC handler.
func NewFraudScoringHandler(predict *usecase.Predict, listHistory *usecase.ListHistory, logger *slog.Logger) *FraudScoringHandler {
	return &FraudScoringHandler{
		predict:     predict,
		listHistory: listHistory,
		logger:      logger,
	}
}

// Predict scores one record. Validation problems map to InvalidArgument.
func (h *FraudScoringHandler) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if err := requireRole(ctx, auth.RoleAnalyst, auth.RoleAdmin, auth.RoleService); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.predict.Execute(ctx, feature.RawRecord(req.Record))
	if err != nil {
		var verr *feature.ValidationError
		if errors.As(err, &verr) {
			return nil, status.Error(codes.InvalidArgument, verr.Error())
		}
		h.logger.ErrorContext(ctx, "failed to predict", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &PredictResponse{
		Probability: result.Probability,
		Label:       result.Label,
		Reasons:     result.Reasons,
		Model:       result.Model,
	}, nil
}

// ListUploads returns the caller's most recent uploads.
func (h *FraudScoringHandler) ListUploads(ctx context.Context, _ *ListUploadsRequest) (*ListUploadsResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	items, err := h.listHistory.Execute(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list uploads",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return nil, status.Error(codes.Internal, "internal error")
	}

	resp := &ListUploadsResponse{Uploads: make([]*UploadMsg, 0, len(items))}
	for _, it := range items {
		resp.Uploads = append(resp.Uploads, &UploadMsg{
			ID:         it.ID.String(),
			Filename:   it.Filename,
			Kind:       it.Kind,
			Total:      int32(it.Summary.Total),
			Scored:     int32(it.Summary.Scored),
			Errors:     int32(it.Summary.Errors),
			FraudRows:  int32(it.Summary.LabelCounts.Fraud),
			ReviewRows: int32(it.Summary.LabelCounts.Review),
			NormalRows: int32(it.Summary.LabelCounts.Normal),
			CreatedAt:  it.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}
