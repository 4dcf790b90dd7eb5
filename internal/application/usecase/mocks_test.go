package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/pkg/events"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// --- Mock implementations ---

type mockUploadRepository struct {
	mu      sync.Mutex
	uploads map[uuid.UUID]*model.Upload
	saveErr error
}

func newMockUploadRepository() *mockUploadRepository {
	return &mockUploadRepository{uploads: make(map[uuid.UUID]*model.Upload)}
}

func (m *mockUploadRepository) Save(_ context.Context, u *model.Upload) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads[u.ID()] = u
	return nil
}

func (m *mockUploadRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*model.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.uploads[id]
	if !ok || u.UserID() != userID {
		return nil, model.ErrUploadNotFound
	}
	return u, nil
}

func (m *mockUploadRepository) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]*model.Upload, error) {
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

func (m *mockUploadRepository) Delete(ctx context.Context, userID, id uuid.UUID) (string, error) {
	u, err := m.FindByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, id)
	return u.StoredPath(), nil
}

type memFileStore struct {
	files     map[string][]byte
	removeErr error
	n         int
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[string][]byte)}
}

func (s *memFileStore) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.n++
	path := fmt.Sprintf("/uploads/%d_%s", s.n, filename)
	s.files[path] = data
	return path, nil
}

func (s *memFileStore) Open(path string) (io.ReadCloser, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memFileStore) Remove(path string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.files, path)
	return nil
}

type mockPublisher struct {
	published []events.DomainEvent
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, evts...)
	return nil
}

func (m *mockPublisher) types() []string {
	out := make([]string, 0, len(m.published))
	for _, e := range m.published {
		out = append(out, e.EventType())
	}
	return out
}

type mockMetrics struct {
	predictions map[string]int
	batches     []model.BatchSummary
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{predictions: make(map[string]int)}
}

func (m *mockMetrics) RecordPrediction(_ context.Context, label, source string) {
	m.predictions[label+"/"+source]++
}

func (m *mockMetrics) RecordBatch(_ context.Context, _ string, summary model.BatchSummary) {
	m.batches = append(m.batches, summary)
}

type mockVisualStateRepository struct {
	states map[uuid.UUID]*model.VisualState
	err    error
}

func (m *mockVisualStateRepository) Get(_ context.Context, userID uuid.UUID) (*model.VisualState, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.states[userID]
	if !ok {
		return nil, model.ErrVisualStateNotFound
	}
	return s, nil
}

func (m *mockVisualStateRepository) Save(_ context.Context, s *model.VisualState) error {
	if m.err != nil {
		return m.err
	}
	m.states[s.UserID()] = s
	return nil
}
