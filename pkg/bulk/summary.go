package bulk

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

type ResultType string

const (
	ResultLocation ResultType = "location"
	ResultDevice   ResultType = "device"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionMatched Action = "matched"
	ActionFailed  Action = "failed"
)

// ImportResult is one per-node or per-row outcome.
type ImportResult struct {
	Type    ResultType `json:"type"`
	Action  Action     `json:"action"`
	Name    string     `json:"name"`
	ID      string     `json:"id,omitempty"`
	Row     int        `json:"row,omitempty"`
	Error   string     `json:"error,omitempty"`
	Warning string     `json:"warning,omitempty"`
}

type Counts struct {
	Created int `json:"created"`
	Matched int `json:"matched"`
	Failed  int `json:"failed"`
}

func (c *Counts) add(a Action) {
	switch a {
	case ActionCreated:
		c.Created++
	case ActionMatched:
		c.Matched++
	case ActionFailed:
		c.Failed++
	}
}

// ImportSummary accumulates outcomes strictly append-only during the
// reconciliation pass and is never mutated afterwards.
type ImportSummary struct {
	Locations Counts         `json:"locations"`
	Devices   Counts         `json:"devices"`
	Results   []ImportResult `json:"results"`
}

func (s *ImportSummary) Add(r ImportResult) {
	switch r.Type {
	case ResultLocation:
		s.Locations.add(r.Action)
	case ResultDevice:
		s.Devices.add(r.Action)
	}
	s.Results = append(s.Results, r)
}

func (s *ImportSummary) HasFailures() bool {
	return s.Locations.Failed > 0 || s.Devices.Failed > 0
}

// WriteText renders the compact human-readable report: a counts block
// plus enumerated failures and warnings.
func (s *ImportSummary) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Locations: %d created, %d matched, %d failed\n",
		s.Locations.Created, s.Locations.Matched, s.Locations.Failed)
	fmt.Fprintf(w, "Devices:   %d created, %d matched, %d failed\n",
		s.Devices.Created, s.Devices.Matched, s.Devices.Failed)

	if s.HasFailures() {
		fmt.Fprintln(w, "\nFailed rows:")
		for _, r := range s.Results {
			if r.Action != ActionFailed {
				continue
			}
			if r.Row > 0 {
				fmt.Fprintf(w, "  row %d: %s %q: %s\n", r.Row, r.Type, r.Name, r.Error)
			} else {
				fmt.Fprintf(w, "  %s %q: %s\n", r.Type, r.Name, r.Error)
			}
		}
	}

	for _, r := range s.Results {
		if r.Warning != "" {
			fmt.Fprintf(w, "warning: %s %q: %s\n", r.Type, r.Name, r.Warning)
		}
	}
}

// ResultLog is the optional on-disk artifact capturing the input
// parameters and the full result list for audit or replay.
type ResultLog struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Params     ResultParams   `json:"params"`
	Summary    *ImportSummary `json:"summary"`
}

type ResultParams struct {
	File             string            `json:"file"`
	CompanyID        string            `json:"company_id"`
	UserID           string            `json:"user_id,omitempty"`
	DryRun           bool              `json:"dry_run"`
	PrefixNames      bool              `json:"prefix_names"`
	LocationDefaults map[string]string `json:"location_defaults,omitempty"`
	DeviceTypeID     string            `json:"device_type_id,omitempty"`
	DeviceSettings   map[string]string `json:"device_settings,omitempty"`
}

// WriteResultLog persists the artifact as indented JSON.
func WriteResultLog(path string, log *ResultLog) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "bulk: mkdir %s", dir)
		}
	}
	b, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return errors.Wrap(err, "bulk: marshal result log")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "bulk: write %s", path)
	}
	return nil
}
