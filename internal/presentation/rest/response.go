package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bibbank/fraudscore/internal/application/dto"
)

const (
	statusOK    = "ok"
	statusError = "error"

	// maxJSONBody bounds JSON request bodies.
	maxJSONBody = 1 << 20
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type predictResponse struct {
	Status string `json:"status"`
	dto.PredictionResponse
}

type batchResponse struct {
	Status string `json:"status"`
	dto.BatchResponse
}

type historyResponse struct {
	Status string           `json:"status"`
	Items  []dto.UploadItem `json:"items"`
}

type visualStateResponse struct {
	Status string           `json:"status"`
	State  *dto.VisualState `json:"state"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Status: statusError, Message: message})
}

// readJSON decodes a bounded JSON body, keeping numbers as json.Number.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.UseNumber()
	return dec.Decode(v)
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
