package rest_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudscore/internal/application/usecase"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/service"
	"github.com/bibbank/fraudscore/internal/infrastructure/ingest"
	"github.com/bibbank/fraudscore/internal/infrastructure/messaging"
	"github.com/bibbank/fraudscore/internal/presentation/rest"
	"github.com/bibbank/fraudscore/pkg/auth"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type memUploads struct {
	mu      sync.Mutex
	uploads map[uuid.UUID]*model.Upload
}

func (m *memUploads) Save(_ context.Context, u *model.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads[u.ID()] = u
	return nil
}

func (m *memUploads) FindByID(_ context.Context, userID, id uuid.UUID) (*model.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.uploads[id]
	if !ok || u.UserID() != userID {
		return nil, model.ErrUploadNotFound
	}
	return u, nil
}

func (m *memUploads) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]*model.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Upload
	for _, u := range m.uploads {
		if u.UserID() == userID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUploads) Delete(ctx context.Context, userID, id uuid.UUID) (string, error) {
	u, err := m.FindByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, id)
	return u.StoredPath(), nil
}

type memFiles struct {
	mu    sync.Mutex
	files map[string][]byte
	n     int
}

func (s *memFiles) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	path := fmt.Sprintf("/uploads/%d_%s", s.n, filename)
	s.files[path] = data
	return path, nil
}

func (s *memFiles) Open(path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memFiles) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

type memVisualStates struct {
	mu     sync.Mutex
	states map[uuid.UUID]*model.VisualState
}

func (m *memVisualStates) Get(_ context.Context, userID uuid.UUID) (*model.VisualState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[userID]
	if !ok {
		return nil, model.ErrVisualStateNotFound
	}
	return s, nil
}

func (m *memVisualStates) Save(_ context.Context, s *model.VisualState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[s.UserID()] = s
	return nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	handler http.Handler
	files   *memFiles
	uploads *memUploads
	jwt     *auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:     "test-secret-key",
		Issuer:     "test",
		Expiration: time.Hour,
	})
	require.NoError(t, err)

	files := &memFiles{files: make(map[string][]byte)}
	uploads := &memUploads{uploads: make(map[uuid.UUID]*model.Upload)}
	states := &memVisualStates{states: make(map[uuid.UUID]*model.VisualState)}
	publisher := messaging.NewLogPublisher(discardLogger)
	scorer := service.NewRuleScorer()

	scoring := rest.NewScoringHandler(rest.UseCases{
		Predict:        usecase.NewPredict(scorer, service.SourceRules, nil, nil),
		ScoreUpload:    usecase.NewScoreUpload(files, ingest.Parser{}, service.NewBatchScorer(scorer, nil), uploads, publisher, nil, service.SourceRules, discardLogger),
		ListHistory:    usecase.NewListHistory(uploads),
		DownloadUpload: usecase.NewDownloadUpload(uploads, files),
		DeleteUpload:   usecase.NewDeleteUpload(uploads, files, discardLogger),
		GetVisualState: usecase.NewGetVisualState(states),
		SaveVisual:     usecase.NewSaveVisualState(states),
	}, 1<<20, discardLogger)

	handler := rest.NewRouter(rest.RouterConfig{
		Scoring: scoring,
		Health:  rest.NewHealthHandler("fraudscore", pinger{}, discardLogger),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "# metrics\n") }),
		JWT:     jwtSvc,
		Logger:  discardLogger,
	})

	return &testServer{handler: handler, files: files, uploads: uploads, jwt: jwtSvc}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken(userID, "analyst@example.com", []string{auth.RoleAnalyst})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
