/*
PURPOSE:
  Defines the core data structures used throughout eda-runner.
  These models represent synthesis runs, QoR metrics and the baseline snapshot.

REQUIREMENTS:
  User-specified:
  - Record cell count, logic levels, optional area and warning count.
  - Track provenance (tool, version, commit, host) for every run.
  - Keep exactly one last-run Result and one Baseline.

  Implementation-discovered:
  - Optional numbers must serialize as null, not zero, so pointers are used.
  - Loaded records need validation before they are compared.

ARCHITECTURE INTEGRATION:
  - Used by: internal/extract, internal/engine, internal/store, internal/output, internal/render
  - Shared across boundaries.

ERROR HANDLING:
  - Validate() returns a MalformedPersistedRecord error (see errors.go).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - JSON keys are snake_case and stable; they are the on-disk format.

USAGE:
  res := model.Result{...}

SELF-HEALING INSTRUCTIONS:
  - If new metrics are needed, add the field and update the CSV ledger and renderers.

RELATED FILES:
  - internal/output/csv.go
  - internal/render/render.go

MAINTENANCE:
  - Update when adding new metrics to capture.
*/

package model

import (
	"time"
)

// ToolOutput is the raw capture of a single external tool invocation.
type ToolOutput struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMs int64
	TimedOut   bool
}

// Combined returns stdout followed by stderr, the buffer the extractor scans.
func (o ToolOutput) Combined() string {
	if o.Stderr == "" {
		return o.Stdout
	}
	return o.Stdout + "\n" + o.Stderr
}

// Metrics are the QoR figures scraped from the tool output.
type Metrics struct {
	Cells    int      `json:"cells"`
	Levels   int      `json:"levels"`
	AreaUm2  *float64 `json:"area_um2"`
	Warnings *int     `json:"warnings"`
}

// Provenance describes where and with what a run was produced.
type Provenance struct {
	Tool             string    `json:"tool"`
	ToolVersion      string    `json:"tool_version"`
	Commit           *string   `json:"commit"`
	Timestamp        time.Time `json:"timestamp"`
	Hostname         string    `json:"hostname"`
	Platform         string    `json:"platform"`
	ExtensionVersion string    `json:"extension_version"`
}

// RunRecord describes the invocation itself.
type RunRecord struct {
	RunID      string `json:"run_id"`
	ScriptPath string `json:"script_path"`
	Seed       *int   `json:"seed"`
	WorkingDir string `json:"working_dir"`
	Command    string `json:"command"`
	DurationMs int64  `json:"duration_ms"`
	ExitCode   int    `json:"exit_code"`
}

// Artifacts are the files a run left behind.
type Artifacts struct {
	LogPath string  `json:"log_path"`
	Netlist *string `json:"netlist"`
}

// Result is the unit of persistence after every successful run.
type Result struct {
	Provenance Provenance `json:"provenance"`
	Run        RunRecord  `json:"run"`
	Metrics    *Metrics   `json:"metrics"`
	Artifacts  Artifacts  `json:"artifacts"`
}

// BaselineSource identifies the run a baseline was taken from.
type BaselineSource struct {
	ScriptPath string `json:"script_path"`
	Seed       *int   `json:"seed"`
}

// Baseline is the reduced snapshot of a Result used as the regression reference.
type Baseline struct {
	Metrics   *Metrics       `json:"metrics"`
	Timestamp time.Time      `json:"timestamp"`
	Source    BaselineSource `json:"source"`
}

// CellsComparison holds the cell-count side of a verification.
type CellsComparison struct {
	Base     int      `json:"base"`
	Now      int      `json:"now"`
	Delta    int      `json:"delta"`
	DeltaPct *float64 `json:"delta_pct"` // nil when the baseline recorded zero cells
}

// LevelsComparison holds the logic-depth side of a verification.
type LevelsComparison struct {
	Base  int `json:"base"`
	Now   int `json:"now"`
	Delta int `json:"delta"`
}

// VerificationOutcome is the verdict of comparing the last run against the baseline.
type VerificationOutcome struct {
	Accepted bool             `json:"accepted"`
	Cells    CellsComparison  `json:"cells"`
	Levels   LevelsComparison `json:"levels"`
	Message  string           `json:"message"`
}
