//go:build e2e

package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudscore/pkg/auth"
)

// These tests run against a live fraudscored started with the same
// JWT_SECRET and JWT_ISSUER as the test process.

var (
	baseURL string
	bearer  string
)

func TestMain(m *testing.M) {
	baseURL = os.Getenv("FRAUDSCORE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "fraudscore"
	}
	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: os.Getenv("JWT_SECRET"), Issuer: issuer, Expiration: time.Hour})
	if err == nil {
		bearer, _ = jwt.GenerateToken(uuid.New(), "e2e@example.com", []string{auth.RoleAnalyst})
	}

	for i := 0; i < 30; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}

	os.Exit(m.Run())
}

func send(t *testing.T, method, path, contentType string, body []byte) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealthCheck(t *testing.T) {
	resp, err := http.Get(baseURL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestPredictFlow(t *testing.T) {
	if bearer == "" {
		t.Skip("JWT_SECRET not set")
	}

	resp, body := send(t, http.MethodPost, "/api/predict", "application/json",
		[]byte(`{"amount": 150000, "transactions_last_1h": 60, "blacklist_match_flag": 1}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Fraud", body["label"])

	resp, body = send(t, http.MethodPost, "/api/predict", "application/json", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing amount", body["message"])
}

func TestUploadHistoryFlow(t *testing.T) {
	if bearer == "" {
		t.Skip("JWT_SECRET not set")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "e2e.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("amount,transactions_last_1h\n150000,60\n12,1\n"))
	require.NoError(t, mw.Close())

	// Step 1: score a CSV
	resp, body := send(t, http.MethodPost, "/api/upload-csv", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	uploadID, _ := body["upload_id"].(string)
	require.NotEmpty(t, uploadID)

	// Step 2: it shows up in history
	resp, body = send(t, http.MethodGet, "/api/history", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ := body["items"].([]any)
	require.NotEmpty(t, items)
	assert.Equal(t, uploadID, items[0].(map[string]any)["id"])

	// Step 3: delete it, a second delete is a 404
	resp, _ = send(t, http.MethodDelete, "/api/history/"+uploadID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = send(t, http.MethodDelete, "/api/history/"+uploadID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
