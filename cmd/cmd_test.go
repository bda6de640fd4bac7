package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rulecheck/core/model"
	"github.com/kilianp07/rulecheck/core/rules"
	"github.com/kilianp07/rulecheck/infra/ingest"
)

func init() { color.NoColor = true }

func fixture(t *testing.T) (dataFile, rulesFile string) {
	t.Helper()
	dir := t.TempDir()
	dataFile = filepath.Join(dir, "dataset.json")
	rulesFile = filepath.Join(dir, "rules.json")
	ds := model.Dataset{
		Clients: []model.Client{
			{ClientID: "C1", GroupTag: "A", RequestedTaskIDs: "T1", AvailableSlots: "[1,2,3]"},
			{ClientID: "C2", GroupTag: "A", RequestedTaskIDs: "T2", AvailableSlots: "[2,3,4]"},
		},
		Workers: []model.Worker{{WorkerID: "W1", WorkerGroup: "G", Skills: "a,b", AvailableSlots: "[1,2]", MaxLoadPerPhase: 1}},
		Tasks: []model.Task{
			{TaskID: "T1", Duration: 1, RequiredSkills: "a", PreferredPhases: "1-2"},
			{TaskID: "T2", Duration: 2, RequiredSkills: "b", PreferredPhases: "2-4"},
		},
	}
	require.NoError(t, ingest.SaveDataset(dataFile, ds))
	require.NoError(t, ingest.SaveRules(rulesFile, []rules.Rule{rules.CoRun{ID: "r1", Tasks: []string{"T1", "T2"}}}))
	return dataFile, rulesFile
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath, dataPath, rulesPath = "", "", ""
	validateFormat, applyFormat, recommendFormat, rulesFormat, filterFormat = formatText, formatText, formatText, formatText, formatText
	recommendMinConfidence, recommendLimit = -1, -1
	filterWrite = ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateJSON(t *testing.T) {
	data, rulesFile := fixture(t)
	out, err := run(t, "validate", "-d", data, "-r", rulesFile, "-f", "json")
	require.NoError(t, err)
	var rep struct {
		Counts     map[string]int    `json:"counts"`
		Violations []json.RawMessage `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Counts["tasks"])
	assert.Empty(t, rep.Violations)
}

func TestValidateReportsFindings(t *testing.T) {
	data, rulesFile := fixture(t)
	require.NoError(t, ingest.SaveRules(rulesFile, []rules.Rule{rules.CoRun{ID: "bad", Tasks: []string{"T1"}}}))
	out, err := run(t, "validate", "-d", data, "-r", rulesFile)
	assert.True(t, errors.Is(err, errFindings))
	assert.Contains(t, out, "1 rule violations")
	assert.Contains(t, out, "bad [coRun]")
}

func TestApplyCSV(t *testing.T) {
	data, rulesFile := fixture(t)
	out, err := run(t, "apply", "-d", data, "-r", rulesFile, "-f", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "RuleID,RuleType,Passed,Reason", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "r1,coRun,Yes"), lines[1])
}

func TestRecommendLimit(t *testing.T) {
	data, rulesFile := fixture(t)
	out, err := run(t, "recommend", "-d", data, "-r", rulesFile, "-f", "json", "-n", "1")
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 1)
}

func TestRulesAddAcceptRemove(t *testing.T) {
	data, rulesFile := fixture(t)

	_, err := run(t, "rules", "add", `{"id":"r2","type":"loadLimit","workerGroup":"G","maxSlotsPerPhase":"2"}`, "-d", data, "-r", rulesFile)
	require.NoError(t, err)
	rs, err := ingest.LoadRules(rulesFile)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, rules.LoadLimit{ID: "r2", WorkerGroup: "G", MaxSlotsPerPhase: 2}, rs[1])

	out, err := run(t, "recommend", "-d", data, "-r", rulesFile, "-f", "json")
	require.NoError(t, err)
	var recs []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.NotEmpty(t, recs)
	_, err = run(t, "rules", "accept", recs[0].ID, "-d", data, "-r", rulesFile)
	require.NoError(t, err)

	_, err = run(t, "rules", "rm", "r1", "-d", data, "-r", rulesFile)
	require.NoError(t, err)
	rs, err = ingest.LoadRules(rulesFile)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "r2", rs[0].RuleID())

	_, err = run(t, "rules", "rm", "missing", "-d", data, "-r", rulesFile)
	assert.True(t, errors.Is(err, rules.ErrUnknownRule))

	_, err = run(t, "rules", "add", `{"type":"precedence"}`, "-d", data, "-r", rulesFile)
	assert.Error(t, err)

	out, err = run(t, "rules", "list", "-d", data, "-r", rulesFile)
	require.NoError(t, err)
	assert.Contains(t, out, "r2 [loadLimit] workerGroup=G maxSlotsPerPhase=2")
}

func TestFilterProxy(t *testing.T) {
	data, rulesFile := fixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"TaskID":"T2","Duration":2,"RequiredSkills":"b","PreferredPhases":"2-4"}]`))
	}))
	defer srv.Close()
	cfgFile := filepath.Join(t.TempDir(), "rulecheck.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(fmt.Sprintf("filter:\n  type: proxy\n  conf:\n    url: %q\n", srv.URL)), 0o644))
	written := filepath.Join(t.TempDir(), "filtered.yaml")

	out, err := run(t, "filter", "tasks", "long", "tasks", "-c", cfgFile, "-d", data, "-r", rulesFile, "-w", written)
	require.NoError(t, err)
	assert.Contains(t, out, "tasks: 2 -> 1 rows")

	ds, err := ingest.LoadDataset(written)
	require.NoError(t, err)
	require.Len(t, ds.Tasks, 1)
	assert.Equal(t, "T2", ds.Tasks[0].TaskID)
	assert.Len(t, ds.Clients, 2)
}

func TestFilterWithoutConnector(t *testing.T) {
	data, rulesFile := fixture(t)
	_, err := run(t, "filter", "tasks", "q", "-d", data, "-r", rulesFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no filter configured")

	_, err = run(t, "filter", "vehicles", "q", "-d", data)
	assert.Error(t, err)
}
