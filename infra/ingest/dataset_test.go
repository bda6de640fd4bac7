package ingest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rulecheck/core/model"
)

const unifiedJSON = `{
  "Clients": [{"client_id": 1, "GroupTag": "A", "AvailableSlots": [1, 2]}],
  "worker_sheet": [{"WorkerID": "W1", "Skills": "a,b", "MaxLoadPerPhase": 2}],
  "tasks": [{"TaskID": "T1", "Duration": 2, "PreferredPhases": "1-3"}]
}`

const unifiedYAML = `
clients:
  - ClientID: C1
    GroupTag: A
workers:
  - WorkerID: W1
    Skills: [a, b]
tasks:
  - TaskID: T1
    Duration: 1
`

func TestParseDatasetJSON(t *testing.T) {
	ds, err := ParseDataset([]byte(unifiedJSON), FormatJSON)
	require.NoError(t, err)
	require.Len(t, ds.Clients, 1)
	assert.Equal(t, "1", ds.Clients[0].ClientID)
	assert.Equal(t, []any{float64(1), float64(2)}, ds.Clients[0].AvailableSlots)
	assert.Equal(t, "W1", ds.Workers[0].WorkerID)
	assert.Equal(t, "1-3", ds.Tasks[0].PreferredPhases)
}

func TestParseDatasetYAML(t *testing.T) {
	ds, err := ParseDataset([]byte(unifiedYAML), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "C1", ds.Clients[0].ClientID)
	assert.Equal(t, []any{"a", "b"}, ds.Workers[0].Skills)
	assert.Equal(t, 1, ds.Tasks[0].Duration)
}

func TestParseDatasetMissingSheet(t *testing.T) {
	_, err := ParseDataset([]byte(`{"clients": [], "tasks": []}`), FormatJSON)
	if !errors.Is(err, ErrMissingSheet) {
		t.Fatalf("expected ErrMissingSheet, got %v", err)
	}
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "found clients, tasks")
}

func TestParseDatasetBadShape(t *testing.T) {
	_, err := ParseDataset([]byte(`{"clients": {}, "workers": [], "tasks": []}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a list")
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("data.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = FormatOf("data.xlsx")
	assert.Error(t, err)
}

func TestSaveAndLoadDataset(t *testing.T) {
	ds := model.Dataset{
		Clients: []model.Client{{ClientID: "C1", GroupTag: "A", AvailableSlots: "[1,2]"}},
		Workers: []model.Worker{{WorkerID: "W1", WorkerGroup: "G"}},
		Tasks:   []model.Task{{TaskID: "T1", Duration: "2"}},
	}
	for _, name := range []string{"ds.json", "ds.yaml"} {
		p := filepath.Join(t.TempDir(), name)
		require.NoError(t, SaveDataset(p, ds))
		got, err := LoadDataset(p)
		require.NoError(t, err, name)
		assert.Equal(t, ds, got, name)
	}
}
