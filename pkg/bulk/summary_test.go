package bulk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportSummary_AddAndCounts(t *testing.T) {
	s := &ImportSummary{}
	s.Add(ImportResult{Type: ResultLocation, Action: ActionCreated, Name: "HQ"})
	s.Add(ImportResult{Type: ResultLocation, Action: ActionMatched, Name: "HQ/B1"})
	s.Add(ImportResult{Type: ResultDevice, Action: ActionCreated, Name: "a1", Row: 2})
	s.Add(ImportResult{Type: ResultDevice, Action: ActionFailed, Name: "a2", Row: 3, Error: "boom"})

	assert.Equal(t, Counts{Created: 1, Matched: 1}, s.Locations)
	assert.Equal(t, Counts{Created: 1, Failed: 1}, s.Devices)
	assert.True(t, s.HasFailures())
	assert.Len(t, s.Results, 4)
}

func TestImportSummary_WriteText(t *testing.T) {
	s := &ImportSummary{}
	s.Add(ImportResult{Type: ResultLocation, Action: ActionCreated, Name: "HQ"})
	s.Add(ImportResult{Type: ResultDevice, Action: ActionFailed, Name: "a2", Row: 3, Error: "boom"})
	s.Add(ImportResult{Type: ResultDevice, Action: ActionCreated, Name: "a3", Row: 4, Warning: "settings update failed"})

	var b strings.Builder
	s.WriteText(&b)
	out := b.String()

	assert.Contains(t, out, "Locations: 1 created, 0 matched, 0 failed")
	assert.Contains(t, out, "Devices:   1 created, 0 matched, 1 failed")
	assert.Contains(t, out, "Failed rows:")
	assert.Contains(t, out, `row 3: device "a2": boom`)
	assert.Contains(t, out, `warning: device "a3": settings update failed`)
}

func TestImportSummary_WriteTextNoFailures(t *testing.T) {
	s := &ImportSummary{}
	s.Add(ImportResult{Type: ResultLocation, Action: ActionCreated, Name: "HQ"})

	var b strings.Builder
	s.WriteText(&b)
	assert.NotContains(t, b.String(), "Failed rows:")
}

func TestWriteResultLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "result.json")

	s := &ImportSummary{}
	s.Add(ImportResult{Type: ResultDevice, Action: ActionCreated, Name: "a1", ID: "dev-1", Row: 2})

	log := &ResultLog{
		RunID:      "run-1",
		StartedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC),
		Params:     ResultParams{File: "devices.csv", CompanyID: "co-1", DryRun: true},
		Summary:    s,
	}
	require.NoError(t, WriteResultLog(path, log))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var back ResultLog
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "run-1", back.RunID)
	assert.Equal(t, "devices.csv", back.Params.File)
	require.NotNil(t, back.Summary)
	assert.Equal(t, Counts{Created: 1}, back.Summary.Devices)
}
