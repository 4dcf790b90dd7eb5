package rest

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/google/uuid"

	"github.com/bibbank/fraudscore/internal/application/dto"
	"github.com/bibbank/fraudscore/internal/application/usecase"
	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
	"github.com/bibbank/fraudscore/internal/infrastructure/ingest"
	"github.com/bibbank/fraudscore/pkg/auth"
)

// ScoringHandler serves the /api routes.
type ScoringHandler struct {
	predict        *usecase.Predict
	scoreUpload    *usecase.ScoreUpload
	listHistory    *usecase.ListHistory
	download       *usecase.DownloadUpload
	deleteUpload   *usecase.DeleteUpload
	getState       *usecase.GetVisualState
	saveState      *usecase.SaveVisualState
	maxUploadBytes int64
	logger         *slog.Logger
}

// UseCases groups the application services behind the REST API.
type UseCases struct {
	Predict        *usecase.Predict
	ScoreUpload    *usecase.ScoreUpload
	ListHistory    *usecase.ListHistory
	DownloadUpload *usecase.DownloadUpload
	DeleteUpload   *usecase.DeleteUpload
	GetVisualState *usecase.GetVisualState
	SaveVisual     *usecase.SaveVisualState
}

// NewScoringHandler creates the API handler. Multipart bodies are capped at
// maxUploadBytes.
func NewScoringHandler(uc UseCases, maxUploadBytes int64, logger *slog.Logger) *ScoringHandler {
	return &ScoringHandler{
		predict:        uc.Predict,
		scoreUpload:    uc.ScoreUpload,
		listHistory:    uc.ListHistory,
		download:       uc.DownloadUpload,
		deleteUpload:   uc.DeleteUpload,
		getState:       uc.GetVisualState,
		saveState:      uc.SaveVisual,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers the API routes on the provided ServeMux.
func (h *ScoringHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/predict", h.Predict)
	mux.HandleFunc("POST /api/upload-csv", h.UploadCSV)
	mux.HandleFunc("POST /api/upload-pdf", h.UploadPDF)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("DELETE /api/history/{id}", h.DeleteHistory)
	mux.HandleFunc("GET /api/download/{id}", h.Download)
	mux.HandleFunc("GET /api/visuals/state", h.GetVisualState)
	mux.HandleFunc("POST /api/visuals/state", h.SaveVisualState)
}

func userID(r *http.Request) (uuid.UUID, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// Predict scores one JSON record. An unparsable body is treated as an empty
// record, which fails validation on the required amount.
func (h *ScoringHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(r); !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	var raw feature.RawRecord
	if err := readJSON(w, r, &raw); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		raw = feature.RawRecord{}
	}

	resp, err := h.predict.Execute(r.Context(), raw)
	if err != nil {
		var verr *feature.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.internalError(w, r, "predict failed", err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Status: statusOK, PredictionResponse: resp})
}

func (h *ScoringHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, valueobject.FileKindCSV, "CSV file missing.")
}

func (h *ScoringHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, valueobject.FileKindPDF, "PDF file missing.")
}

func (h *ScoringHandler) upload(w http.ResponseWriter, r *http.Request, kind valueobject.FileKind, missing string) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large.")
			return
		}
		writeError(w, http.StatusBadRequest, missing)
		return
	}
	defer file.Close()
	defer r.MultipartForm.RemoveAll()

	resp, err := h.scoreUpload.Execute(r.Context(), dto.ScoreUploadRequest{
		Content:  file,
		Filename: header.Filename,
		Kind:     kind,
		UserID:   uid,
	})
	if err != nil {
		if msg, ok := uploadErrorMessage(err, missing); ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		h.internalError(w, r, "upload failed", err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Status: statusOK, BatchResponse: resp})
}

var uploadErrors = []struct {
	err     error
	message string
}{
	{usecase.ErrUnsupportedFile, "Only PDF files are supported."},
	{ingest.ErrUnreadableCSV, "Unable to read CSV file."},
	{ingest.ErrUnreadablePDF, "Unable to read PDF file."},
	{ingest.ErrNoText, "No readable text found in PDF."},
	{ingest.ErrNoTable, "Could not detect a tabular CSV-like table in the PDF."},
	{ingest.ErrNoRows, "No data rows found in PDF table."},
}

func uploadErrorMessage(err error, missing string) (string, bool) {
	if errors.Is(err, usecase.ErrMissingFile) {
		return missing, true
	}
	for _, e := range uploadErrors {
		if errors.Is(err, e.err) {
			return e.message, true
		}
	}
	return "", false
}

func (h *ScoringHandler) History(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	items, err := h.listHistory.Execute(r.Context(), uid)
	if err != nil {
		h.internalError(w, r, "list history failed", err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Status: statusOK, Items: items})
}

func (h *ScoringHandler) Download(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found.")
		return
	}

	d, err := h.download.Execute(r.Context(), uid, id)
	switch {
	case errors.Is(err, model.ErrUploadNotFound):
		writeError(w, http.StatusNotFound, "File not found.")
		return
	case errors.Is(err, usecase.ErrFileMissingOnServer):
		writeError(w, http.StatusNotFound, "File missing on server.")
		return
	case err != nil:
		h.internalError(w, r, "download failed", err)
		return
	}
	defer d.Content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, d.Content); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted", "upload_id", id, "error", err)
	}
}

func (h *ScoringHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found.")
		return
	}

	err = h.deleteUpload.Execute(r.Context(), uid, id)
	if errors.Is(err, model.ErrUploadNotFound) {
		writeError(w, http.StatusNotFound, "File not found.")
		return
	}
	if err != nil {
		h.internalError(w, r, "delete failed", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Status: statusOK, Message: "Deleted."})
}

func (h *ScoringHandler) GetVisualState(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	state, err := h.getState.Execute(r.Context(), uid)
	if err != nil {
		h.internalError(w, r, "load visual state failed", err)
		return
	}
	writeJSON(w, http.StatusOK, visualStateResponse{Status: statusOK, State: state})
}

func (h *ScoringHandler) SaveVisualState(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	var req dto.SaveVisualStateRequest
	if err := readJSON(w, r, &req); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		if !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid JSON body.")
			return
		}
	}

	if err := h.saveState.Execute(r.Context(), uid, req); err != nil {
		h.internalError(w, r, "save visual state failed", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Status: statusOK})
}

func (h *ScoringHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error.")
}
