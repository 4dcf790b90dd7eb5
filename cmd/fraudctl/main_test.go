package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MODEL_PATH", "")
	t.Setenv("MODEL_REMOTE_ADDR", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestScore_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv")
	csv := "amount,transactions_last_1h,blacklist_match_flag\n150000,60,1\n10,,\n,3,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out, err := execute(t, "", "score", "--no-progress", path)
	require.NoError(t, err)

	var got scoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Summary.Total)
	assert.Equal(t, 2, got.Summary.Scored)
	assert.Equal(t, 1, got.Summary.Errors)
	assert.Equal(t, 1, got.Summary.LabelCounts.Fraud)
	assert.Equal(t, 1, got.Summary.LabelCounts.Normal)
	assert.Equal(t, "placeholder", got.Model)
	assert.Len(t, got.Samples, 2)
	assert.Empty(t, got.Results)
}

func TestScore_AllRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv")
	require.NoError(t, os.WriteFile(path, []byte("amount\n5\nabc\n"), 0o600))

	out, err := execute(t, "", "score", "--no-progress", "--all", path)
	require.NoError(t, err)

	var got scoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Results, 2)
}

func TestScore_UnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.txt")
	require.NoError(t, os.WriteFile(path, []byte("amount\n5\n"), 0o600))

	_, err := execute(t, "", "score", "--no-progress", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--kind")

	_, err = execute(t, "", "score", "--no-progress", "--kind", "csv", path)
	assert.NoError(t, err)
}

func TestPredict(t *testing.T) {
	out, err := execute(t, "", "predict", "--record", `{"amount": 150000, "transactions_last_1h": 60, "blacklist_match_flag": true}`)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Fraud", got["label"])
	assert.Equal(t, "placeholder", got["model"])
}

func TestPredict_Stdin(t *testing.T) {
	out, err := execute(t, `{"amount": 12}`, "predict")
	require.NoError(t, err)
	assert.Contains(t, out, `"Normal"`)
}

func TestPredict_Invalid(t *testing.T) {
	_, err := execute(t, "", "predict", "--record", `{"user_age": "old"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing amount")

	_, err = execute(t, "", "predict", "--record", `[1]`)
	assert.Error(t, err)
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "", "migrate", "up")
	require.Error(t, err)

	_, err = execute(t, "", "migrate", "sideways")
	assert.Error(t, err)
}
