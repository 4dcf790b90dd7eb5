//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/valueobject"
	"github.com/bibbank/fraudscore/pkg/testutil"
)

func setup(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	pc := testutil.NewPostgresContainer(context.Background(), t)
	pc.Migrate(t, "../../../migrations")
	return pc
}

func newUpload(t *testing.T, userID uuid.UUID, name string, fraud int) *model.Upload {
	t.Helper()
	u, err := model.NewUpload(userID, name, "/uploads/"+name, valueobject.FileKindCSV, model.BatchSummary{
		Total: 3, Scored: 2, Errors: 1,
		LabelCounts: model.LabelCounts{Fraud: fraud, Normal: 2 - fraud},
	})
	require.NoError(t, err)
	return u
}

func TestUploadRepository(t *testing.T) {
	pc := setup(t)
	repo := NewUploadRepository(pc.Pool)
	ctx := context.Background()

	first := newUpload(t, testutil.TestUserID1, "first.csv", 0)
	require.NoError(t, repo.Save(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := newUpload(t, testutil.TestUserID1, "second.csv", 1)
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, newUpload(t, testutil.TestUserID2, "other.csv", 0)))

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, testutil.TestUserID1, second.ID())
		require.NoError(t, err)
		assert.Equal(t, "second.csv", got.Filename())
		assert.Equal(t, valueobject.FileKindCSV, got.Kind())
		assert.Equal(t, second.Summary(), got.Summary())
	})

	t.Run("other users cannot see the upload", func(t *testing.T) {
		_, err := repo.FindByID(ctx, testutil.TestUserID2, second.ID())
		assert.ErrorIs(t, err, model.ErrUploadNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		items, err := repo.ListRecent(ctx, testutil.TestUserID1, 20)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, second.ID(), items[0].ID())
		assert.Equal(t, first.ID(), items[1].ID())

		items, err = repo.ListRecent(ctx, testutil.TestUserID1, 1)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("delete returns stored path", func(t *testing.T) {
		path, err := repo.Delete(ctx, testutil.TestUserID1, first.ID())
		require.NoError(t, err)
		assert.Equal(t, "/uploads/first.csv", path)

		_, err = repo.Delete(ctx, testutil.TestUserID1, first.ID())
		assert.ErrorIs(t, err, model.ErrUploadNotFound)
	})
}

func TestVisualStateRepository(t *testing.T) {
	pc := setup(t)
	repo := NewVisualStateRepository(pc.Pool)
	ctx := context.Background()

	_, err := repo.Get(ctx, testutil.TestUserID1)
	assert.ErrorIs(t, err, model.ErrVisualStateNotFound)

	state, err := model.NewVisualState(testutil.TestUserID1, json.RawMessage(`{"total":3}`), nil, []string{"amount"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, state))

	got, err := repo.Get(ctx, testutil.TestUserID1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3}`, string(got.Summary()))
	assert.Empty(t, got.Samples())
	assert.Equal(t, []string{"amount"}, got.Fields())

	replaced, err := model.NewVisualState(testutil.TestUserID1, nil, json.RawMessage(`[{"row":1}]`), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, replaced))

	got, err = repo.Get(ctx, testutil.TestUserID1)
	require.NoError(t, err)
	assert.Empty(t, got.Summary())
	assert.JSONEq(t, `[{"row":1}]`, string(got.Samples()))
	assert.Nil(t, got.Fields())
}
