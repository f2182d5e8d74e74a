package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/recipe"
)

func ptr[T any](v T) *T { return &v }

func TestCount_ThousandsSeparator(t *testing.T) {
	p := New(&bytes.Buffer{}, false)
	assert.Equal(t, "200", p.Count(200))
	assert.Equal(t, "12,345", p.Count(12345))
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Summary(&model.Result{
		Provenance: model.Provenance{
			ToolVersion: "Yosys 0.38",
			Commit:      ptr("0123456789abcdef0123"),
			Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Run: model.RunRecord{
			RunID:      "run-1",
			ScriptPath: "recipes/synth.ys",
			Seed:       ptr(7),
			Command:    "yosys -s recipes/synth.ys",
			DurationMs: 1500,
			ExitCode:   2,
		},
		Metrics:   &model.Metrics{Cells: 1200, Levels: 15, AreaUm2: ptr(3.5)},
		Artifacts: model.Artifacts{LogPath: ".eda/logs/tool.log"},
	})

	out := buf.String()
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "recipes/synth.ys")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "3.50")
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abc")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "2026-03-01T12:00:00Z")
	assert.Contains(t, out, "tool exited with code 2")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")

	warnings := lineWith(t, out, "warnings")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(warnings), "-"))
}

func TestComparison(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	o := model.VerificationOutcome{
		Accepted: true,
		Cells:    model.CellsComparison{Base: 200, Now: 180, Delta: -20, DeltaPct: ptr(-10.0)},
		Levels:   model.LevelsComparison{Base: 15, Now: 15},
		Message:  "QoR accepted: cells 200 -> 180 (-20, -10.00%), levels 15 -> 15 (+0)",
	}
	p.Comparison(&o)

	out := buf.String()
	cells := lineWith(t, out, "cells ")
	assert.Equal(t, []string{"cells", "200", "180", "-20", "-10.00%"}, strings.Fields(cells))
	levels := lineWith(t, out, "levels ")
	assert.Equal(t, []string{"levels", "15", "15", "+0"}, strings.Fields(levels))
	assert.Contains(t, out, "✓ QoR accepted")
}

func TestComparison_RejectedWithoutPercent(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Comparison(&model.VerificationOutcome{
		Cells:   model.CellsComparison{Base: 0, Now: 3, Delta: 3},
		Levels:  model.LevelsComparison{Base: 1, Now: 1},
		Message: "QoR rejected (cells regressed)",
	})

	out := buf.String()
	assert.Contains(t, lineWith(t, out, "cells "), "n/a")
	assert.Contains(t, out, "✗ QoR rejected")
}

func TestRecipes(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	long := "recipes/" + strings.Repeat("x", 80) + ".ys"
	p.Recipes([]recipe.Entry{
		{Name: "synth.ys", Path: "recipes/synth.ys", Size: 2048, ModTime: time.Now()},
		{Name: "long.ys", Path: long, Size: 10, ModTime: time.Now()},
	})

	out := buf.String()
	assert.Contains(t, out, "recipes/synth.ys")
	assert.Contains(t, out, "2,048")
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "…")
}

func TestRecipes_Empty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Recipes(nil)
	assert.Contains(t, buf.String(), "no recipes found")
}

func TestHistory(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.History([]model.Result{
		{
			Provenance: model.Provenance{Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			Run:        model.RunRecord{RunID: "0f8c1e2a-1111-2222-3333-444455556666", ScriptPath: "recipes/synth.ys"},
			Metrics:    &model.Metrics{Cells: 200, Levels: 15},
		},
	})

	row := lineWith(t, buf.String(), "0f8c1e2a")
	assert.Equal(t,
		[]string{"2026-03-01T00:00:00Z", "0f8c1e2a", "recipes/synth.ys", "-", "200", "15", "-", "0"},
		strings.Fields(row))
}

func TestProvenance(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Provenance(model.Provenance{
		Tool:             "yosys",
		ToolVersion:      "Yosys 0.38",
		Hostname:         "bench-01",
		Platform:         "linux/amd64",
		ExtensionVersion: "dev",
	}, "/usr/bin/yosys")

	out := buf.String()
	assert.Contains(t, out, "/usr/bin/yosys")
	assert.Contains(t, out, "bench-01")
	assert.Contains(t, lineWith(t, out, "commit"), "-")
}

func TestColorEnabled(t *testing.T) {
	assert.False(t, ColorEnabled(&bytes.Buffer{}, false))
	assert.False(t, ColorEnabled(&bytes.Buffer{}, true))
}

func TestSpin_NonTerminalRunsFn(t *testing.T) {
	var buf bytes.Buffer
	want := errors.New("boom")
	called := false

	err := Spin(context.Background(), &buf, "synthesizing", func() error {
		called = true
		return want
	})

	assert.True(t, called)
	assert.ErrorIs(t, err, want)
	assert.Empty(t, buf.String())
}

func lineWith(t *testing.T, out, needle string) string {
	t.Helper()
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, needle) {
			return l
		}
	}
	require.Failf(t, "line not found", "no line containing %q in:\n%s", needle, out)
	return ""
}
