/*
PURPOSE:
  Manages operator-authored synthesis recipes (Yosys scripts).
  Generates the default recipe, lists recipes and inspects recipe text.

REQUIREMENTS:
  User-specified:
  - recipe-init writes a default script and refuses to overwrite without --force.
  - recipe-list shows scripts newest-first; an empty list is not an error.

  Implementation-discovered:
  - The output netlist path is only known from the recipe's own write directive.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/engine
  - Uses: embedded templates/default.ys.tmpl

ERROR HANDLING:
  - Existing recipe without force -> FileSystemError naming the file.
  - Missing recipes directory on List -> empty slice.

IMPLEMENTATION RULES:
  - Use text/template with //go:embed.

USAGE:
  path, err := recipe.Init(dir, "synth.ys", false, recipe.DefaultData("top", version, "yosys"))

SELF-HEALING INSTRUCTIONS:
  - If the generated script stops producing the scraped report lines, fix the template,
    not the extractor.

RELATED FILES:
  - internal/extract/yosys.go

MAINTENANCE:
  - Update the template when new metrics are scraped.
*/

package recipe

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/project"
)

//go:embed templates/default.ys.tmpl
var templates embed.FS

var defaultTmpl = template.Must(template.ParseFS(templates, "templates/default.ys.tmpl"))

// Data fills the default recipe template.
type Data struct {
	Top      string
	RTLDir   string
	BuildDir string
	Tool     string
	Version  string
}

// DefaultData returns template data using the standard project directories.
func DefaultData(top, version, tool string) Data {
	return Data{
		Top:      top,
		RTLDir:   project.RTLDir,
		BuildDir: project.BuildDir,
		Tool:     tool,
		Version:  version,
	}
}

// Render returns the default recipe text.
func Render(d Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := defaultTmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render default recipe: %w", err)
	}
	return buf.Bytes(), nil
}

// Init writes the default recipe as dir/name and returns its path.
func Init(dir, name string, force bool, d Data) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil && !force {
		return "", model.Errorf(model.KindFileSystemError,
			"recipe %s already exists; pass --force to overwrite it", path)
	}

	content, err := Render(d)
	if err != nil {
		return "", model.Wrap(model.KindFileSystemError, err, "failed to generate recipe")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", model.Wrap(model.KindFileSystemError, err, "failed to create recipes directory "+dir)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", model.Wrap(model.KindFileSystemError, err, "failed to write recipe "+path)
	}
	return path, nil
}

// Entry is one recipe file found by List.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// List returns recipe files in dir with extension ext, newest first.
func List(dir, ext string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, model.Wrap(model.KindFileSystemError, err, "failed to read recipes directory "+dir)
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].Name < out[j].Name
		}
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}

// Matches "write_verilog -noattr build/top.v", skipping option flags
var netlistRe = regexp.MustCompile(`(?m)^[ \t]*write_verilog\b((?:[ \t]+-\S+)*)[ \t]+("[^"\n]+"|'[^'\n]+'|[^\s;#\-][^\s;#]*)`)

// OutputNetlist returns the file path of the first write_verilog directive in
// the recipe text, or nil when there is none.
func OutputNetlist(text string) *string {
	m := netlistRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	p := strings.Trim(m[2], `"'`)
	return &p
}
