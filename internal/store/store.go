// Package store persists the single-slot records of a project under
//
//	<project>/.eda/
//
// Every record write is whole-file atomic (temp file + sync + rename), so a
// reader sees either the previous record or the new one, never a mix.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/project"
)

// LogSeparator divides stdout from stderr in the raw tool log.
const LogSeparator = "\n----- stderr -----\n"

type Store struct {
	layout project.Layout
}

func New(layout project.Layout) *Store {
	return &Store{layout: layout}
}

func (s *Store) Layout() project.Layout { return s.layout }

// SaveResult overwrites the last-run slot.
func (s *Store) SaveResult(r *model.Result) error {
	if err := r.Metrics.Validate(); err != nil {
		return model.Wrap(model.KindFileSystemError, err, "refusing to persist incomplete result")
	}
	return s.writeJSON(s.layout.ResultPath(), r)
}

// LoadResult reads the last-run slot. A missing file is NoLastRun.
func (s *Store) LoadResult() (*model.Result, error) {
	var r model.Result
	if err := s.readJSON(s.layout.ResultPath(), &r); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.Errorf(model.KindNoLastRun,
				"no last run found at %s; execute 'run' first", s.layout.ResultPath())
		}
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// HasResult reports whether the last-run slot is populated.
func (s *Store) HasResult() bool {
	_, err := os.Stat(s.layout.ResultPath())
	return err == nil
}

// SaveBaseline overwrites the baseline slot.
func (s *Store) SaveBaseline(b *model.Baseline) error {
	if err := b.Metrics.Validate(); err != nil {
		return model.Wrap(model.KindFileSystemError, err, "refusing to persist incomplete baseline")
	}
	return s.writeJSON(s.layout.BaselinePath(), b)
}

// LoadBaseline reads the baseline slot. A missing file is NoBaseline.
func (s *Store) LoadBaseline() (*model.Baseline, error) {
	var b model.Baseline
	if err := s.readJSON(s.layout.BaselinePath(), &b); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.Errorf(model.KindNoBaseline,
				"no baseline found at %s; run 'baseline-seed' after an accepted run", s.layout.BaselinePath())
		}
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// WriteLog writes stdout, a separator, then stderr to the fixed log path and
// returns that path.
func (s *Store) WriteLog(out model.ToolOutput) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(out.Stdout)
	buf.WriteString(LogSeparator)
	buf.WriteString(out.Stderr)
	path := s.layout.LogPath()
	if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", model.Wrap(model.KindFileSystemError, err, "failed to write log "+path)
	}
	return path, nil
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return model.Wrap(model.KindFileSystemError, err, "marshal "+filepath.Base(path))
	}
	data = append(data, '\n')
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return model.Wrap(model.KindFileSystemError, err, "failed to write "+path)
	}
	return nil
}

func (s *Store) readJSON(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return model.Wrap(model.KindFileSystemError, err, "failed to open "+path)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(dst); err != nil {
		return model.Wrap(model.KindMalformedPersistedRecord, err, "invalid JSON in "+path)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return model.Errorf(model.KindMalformedPersistedRecord, "invalid JSON in %s: trailing content", path)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
