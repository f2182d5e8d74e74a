/*
PURPOSE:
  Appends successful run Results to a JSON Lines history file (NDJSON).
  The last-run slot is overwritten every run; this file is the only history.

REQUIREMENTS:
  User-specified:
  - Keep the single-slot records simple; history lives outside them.

  Implementation-discovered:
  - JSON Lines is append-friendly and survives a torn final line.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (write), internal/cli history command (read)
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file open or write failure.
  - ReadHistory skips malformed lines and reports how many were skipped.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter(".eda/history.jsonl")
  w.Write(result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update if we switch to plain JSON array (not recommended for streaming).
*/

package output

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/daryltucker/eda-runner/internal/model"
)

// JSONWriter appends results to a JSON Lines file.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter opens path for appending, creating it if needed.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single result as a JSON line.
func (jw *JSONWriter) Write(r *model.Result) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(r)
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}

// ReadHistory reads every result in a JSON Lines file, oldest first.
// A missing file is an empty history.
func ReadHistory(path string) (results []model.Result, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r model.Result
		if err := json.Unmarshal(line, &r); err != nil || r.Metrics == nil {
			skipped++
			continue
		}
		results = append(results, r)
	}
	if err := scanner.Err(); err != nil {
		return results, skipped, err
	}
	return results, skipped, nil
}
