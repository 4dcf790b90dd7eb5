package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	assert.Equal(t, code, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, message, body["message"])
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc123"},
		{"invalid token", "Bearer not-a-jwt"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := srv.do(req, "")
			assertError(t, rec, http.StatusUnauthorized, "Authentication required.")
		})
	}
}

func TestPredict(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, uuid.New())

	t.Run("scores a record", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"amount": 150000}`))
		rec := srv.do(req, token)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.InDelta(t, 0.4, body["probability"], 1e-9)
		assert.Equal(t, "Normal", body["label"])
		assert.Equal(t, []any{"High amount"}, body["reasons"])
		assert.Equal(t, "placeholder", body["model"])
	})

	t.Run("validation problems are joined", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"amount": "abc", "hour_of_day": "noon"}`))
		rec := srv.do(req, token)
		assertError(t, rec, http.StatusBadRequest, "Invalid amount, Invalid hour_of_day")
	})

	t.Run("unparsable body is an empty record", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{not json`))
		rec := srv.do(req, token)
		assertError(t, rec, http.StatusBadRequest, "Missing amount")
	})
}

func TestUploadCSV(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, uuid.New())

	t.Run("scores rows", func(t *testing.T) {
		csv := "\ufeffamount,transactions_last_1h\n150000,60\n,1\n20,0\n"
		rec := srv.do(multipartRequest(t, "/api/upload-csv", "batch.csv", []byte(csv)), token)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, []any{"amount", "transactions_last_1h"}, body["fields"])

		summary := body["summary"].(map[string]any)
		assert.EqualValues(t, 3, summary["total"])
		assert.EqualValues(t, 2, summary["scored"])
		assert.EqualValues(t, 1, summary["errors"])
		assert.Equal(t, map[string]any{"Fraud": 0.0, "Review": 1.0, "Normal": 1.0}, summary["label_counts"])

		samples := body["samples"].([]any)
		require.Len(t, samples, 2)
		first := samples[0].(map[string]any)
		assert.EqualValues(t, 1, first["row"])
		assert.Equal(t, "Review", first["label"])
	})

	t.Run("missing file", func(t *testing.T) {
		rec := srv.do(multipartRequest(t, "/api/upload-csv", "", nil), token)
		assertError(t, rec, http.StatusBadRequest, "CSV file missing.")
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		rec := srv.do(multipartRequest(t, "/api/upload-csv", "bad.csv", []byte("amount\n\xff\n")), token)
		assertError(t, rec, http.StatusBadRequest, "Unable to read CSV file.")
	})
}

func TestUploadPDF(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, uuid.New())

	t.Run("missing file", func(t *testing.T) {
		rec := srv.do(multipartRequest(t, "/api/upload-pdf", "", nil), token)
		assertError(t, rec, http.StatusBadRequest, "PDF file missing.")
	})

	t.Run("wrong extension", func(t *testing.T) {
		rec := srv.do(multipartRequest(t, "/api/upload-pdf", "table.csv", []byte("amount\n1\n")), token)
		assertError(t, rec, http.StatusBadRequest, "Only PDF files are supported.")
		assert.Empty(t, srv.files.files)
	})

	t.Run("unreadable pdf", func(t *testing.T) {
		rec := srv.do(multipartRequest(t, "/api/upload-pdf", "scan.pdf", []byte("garbage")), token)
		assertError(t, rec, http.StatusBadRequest, "Unable to read PDF file.")
		assert.Empty(t, srv.files.files)
	})
}

func TestHistoryDownloadDelete(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.token(t, uuid.New())
	stranger := srv.token(t, uuid.New())

	rec := srv.do(multipartRequest(t, "/api/upload-csv", "batch.csv", []byte("amount\n5\n")), owner)
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec)["upload_id"].(string)

	t.Run("history lists the upload", func(t *testing.T) {
		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/history", nil), owner)
		require.Equal(t, http.StatusOK, rec.Code)
		items := decode(t, rec)["items"].([]any)
		require.Len(t, items, 1)
		item := items[0].(map[string]any)
		assert.Equal(t, id, item["id"])
		assert.Equal(t, "batch.csv", item["filename"])
		assert.NotEmpty(t, item["created_at"])
	})

	t.Run("history of another user is empty", func(t *testing.T) {
		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/history", nil), stranger)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{}, decode(t, rec)["items"])
	})

	t.Run("download", func(t *testing.T) {
		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil), owner)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "amount\n5\n", rec.Body.String())
		assert.Equal(t, `attachment; filename=batch.csv`, rec.Header().Get("Content-Disposition"))
	})

	t.Run("download unknown", func(t *testing.T) {
		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil), stranger)
		assertError(t, rec, http.StatusNotFound, "File not found.")

		rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/download/42", nil), owner)
		assertError(t, rec, http.StatusNotFound, "File not found.")
	})

	t.Run("delete", func(t *testing.T) {
		rec := srv.do(httptest.NewRequest(http.MethodDelete, "/api/history/"+id, nil), owner)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "Deleted.", body["message"])
		assert.Empty(t, srv.files.files)

		rec = srv.do(httptest.NewRequest(http.MethodDelete, "/api/history/"+id, nil), owner)
		assertError(t, rec, http.StatusNotFound, "File not found.")
	})
}

func TestDownload_FileMissingOnServer(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, uuid.New())

	rec := srv.do(multipartRequest(t, "/api/upload-csv", "batch.csv", []byte("amount\n5\n")), token)
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec)["upload_id"].(string)
	for path := range srv.files.files {
		delete(srv.files.files, path)
	}

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil), token)
	assertError(t, rec, http.StatusNotFound, "File missing on server.")
}

func TestVisualState(t *testing.T) {
	srv := newTestServer(t)
	token := srv.token(t, uuid.New())

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/visuals/state", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","state":null}`, rec.Body.String())

	save := httptest.NewRequest(http.MethodPost, "/api/visuals/state",
		strings.NewReader(`{"summary":{"total":2},"samples":[{"row":1}],"fields":["amount"]}`))
	rec = srv.do(save, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/api/visuals/state", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode(t, rec)["state"].(map[string]any)
	assert.Equal(t, map[string]any{"total": 2.0}, state["summary"])
	assert.Equal(t, []any{map[string]any{"row": 1.0}}, state["samples"])
	assert.Equal(t, []any{"amount"}, state["fields"])
	assert.NotEmpty(t, state["updated_at"])

	rec = srv.do(httptest.NewRequest(http.MethodPost, "/api/visuals/state", strings.NewReader(`{"summary":`)), token)
	assertError(t, rec, http.StatusBadRequest, "Invalid JSON body.")
}
