// Package project knows the fixed directory layout of a synthesis project and
// checks that the directories a run depends on exist.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daryltucker/eda-runner/internal/model"
)

// Directory and file names relative to the project root.
const (
	StateDir   = ".eda"
	RTLDir     = "rtl"
	RecipesDir = "recipes"
	BuildDir   = "build"
)

// Layout resolves every path the runner reads or writes.
type Layout struct {
	Root string
}

// New returns the layout rooted at dir, made absolute when possible.
func New(dir string) Layout {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return Layout{Root: dir}
}

func (l Layout) StateDir() string     { return filepath.Join(l.Root, StateDir) }
func (l Layout) BaselinePath() string { return filepath.Join(l.StateDir(), "baseline.json") }
func (l Layout) LastRunDir() string   { return filepath.Join(l.StateDir(), "last_run") }
func (l Layout) ResultPath() string   { return filepath.Join(l.LastRunDir(), "result.json") }
func (l Layout) LogsDir() string      { return filepath.Join(l.StateDir(), "logs") }
func (l Layout) LogPath() string      { return filepath.Join(l.LogsDir(), "tool.log") }
func (l Layout) HistoryPath() string  { return filepath.Join(l.StateDir(), "history.jsonl") }
func (l Layout) LedgerPath() string   { return filepath.Join(l.StateDir(), "qor.csv") }
func (l Layout) RTLDir() string       { return filepath.Join(l.Root, RTLDir) }
func (l Layout) RecipesDir() string   { return filepath.Join(l.Root, RecipesDir) }
func (l Layout) BuildDir() string     { return filepath.Join(l.Root, BuildDir) }

// Recipe resolves a recipe name to a path under the recipes directory.
func (l Layout) Recipe(name string) string { return filepath.Join(l.RecipesDir(), name) }

// Resolve makes a user-supplied path absolute against the project root.
func (l Layout) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.Root, p)
}

// Rel returns p relative to the project root when it lies inside it.
func (l Layout) Rel(p string) string {
	rel, err := filepath.Rel(l.Root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}

// Validate checks the directories a run needs. The RTL directory is required;
// a missing recipes directory is only reported as a warning.
func (l Layout) Validate() (warnings []string, err error) {
	if !isDir(l.Root) {
		return nil, model.Errorf(model.KindInvalidProjectStructure, "project directory %s does not exist", l.Root)
	}
	if !isDir(l.RTLDir()) {
		return nil, model.Errorf(model.KindInvalidProjectStructure,
			"required source directory %s is missing; create it and place the RTL sources there", l.RTLDir())
	}
	if !isDir(l.RecipesDir()) {
		warnings = append(warnings, fmt.Sprintf("recipes directory %s is missing", l.RecipesDir()))
	}
	return warnings, nil
}

// EnsureStateDirs creates the .eda tree and the build output directory
// recipes write into.
func (l Layout) EnsureStateDirs() error {
	for _, dir := range []string{l.StateDir(), l.LastRunDir(), l.LogsDir(), l.BuildDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return model.Wrap(model.KindFileSystemError, err, "failed to create "+dir)
		}
	}
	return nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
