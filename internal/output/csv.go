/*
PURPOSE:
  Appends one row per successful run to a CSV QoR ledger.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Spreadsheet-friendly QoR trend alongside the JSON history.

  Implementation-discovered:
  - The file is appended to across invocations; the header is written only
    when the file is new or empty.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).

USAGE:
  w, err := output.NewCSVWriter(".eda/qor.csv")
  w.Write(result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Result struct changes.
*/

package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/daryltucker/eda-runner/internal/model"
)

// CSVHeader is the ledger's column layout.
var CSVHeader = []string{
	"timestamp", "run_id", "script_path", "seed", "tool_version", "commit",
	"exit_code", "duration_s", "cells", "levels", "area_um2", "warnings",
}

// CSVWriter handles appending results to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter opens path for appending and writes the header if the file is empty.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(CSVHeader); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
	}

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write appends a single result. It is thread-safe.
func (cw *CSVWriter) Write(r *model.Result) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		r.Provenance.Timestamp.UTC().Format(time.RFC3339),
		r.Run.RunID,
		r.Run.ScriptPath,
		optInt(r.Run.Seed),
		r.Provenance.ToolVersion,
		optString(r.Provenance.Commit),
		strconv.Itoa(r.Run.ExitCode),
		strconv.FormatFloat(float64(r.Run.DurationMs)/1000, 'f', 3, 64),
		strconv.Itoa(r.Metrics.Cells),
		strconv.Itoa(r.Metrics.Levels),
		optFloat(r.Metrics.AreaUm2),
		optInt(r.Metrics.Warnings),
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func optFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func optString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
