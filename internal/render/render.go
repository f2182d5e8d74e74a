/*
PURPOSE:
  Formats eda-runner records for the terminal: the last-run summary, the
  baseline, the QoR comparison, recipe listings, history and provenance.

REQUIREMENTS:
  User-specified:
  - Print a readable summary of metrics after a run and on `last`.
  - Print a comparison table with deltas on `verify`.

  Implementation-discovered:
  - Colors must be off for --no-color, NO_COLOR and non-terminal writers.
  - Large cell counts are easier to read with thousands separators.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Dependencies: lipgloss, termenv, x/term, x/text/message, go-runewidth

ERROR HANDLING:
  - Write errors on the underlying writer are ignored; output is best effort.

IMPLEMENTATION RULES:
  - Never print persisted values differently from what is stored (no rounding of counts).
  - Optional metrics render as "-" when absent.

USAGE:
  p := render.New(os.Stdout, render.ColorEnabled(os.Stdout, noColor))
  p.Summary(res)

SELF-HEALING INSTRUCTIONS:
  - If a new metric is added to model.Metrics, add a row to metricRows.

RELATED FILES:
  - internal/model/types.go
  - internal/cli/*.go

MAINTENANCE:
  - Keep column order in History aligned with output/csv.go.
*/

package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/recipe"
)

// MaxPathWidth bounds path columns in listings.
const MaxPathWidth = 48

// Printer writes formatted records to w.
type Printer struct {
	w     io.Writer
	theme Theme
	num   *message.Printer
}

// New returns a Printer for w. With color false every style renders as plain text.
func New(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:     w,
		theme: NewTheme(r),
		num:   message.NewPrinter(language.English),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ColorEnabled reports whether styled output should be written to w.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(w)
}

// Count formats n with thousands separators.
func (p *Printer) Count(n int) string {
	return p.num.Sprintf("%d", n)
}

func (p *Printer) area(v *float64) string {
	if v == nil {
		return "-"
	}
	return p.num.Sprintf("%.2f", *v)
}

func (p *Printer) optCount(v *int) string {
	if v == nil {
		return "-"
	}
	return p.Count(*v)
}

func seedText(s *int) string {
	if s == nil {
		return "-"
	}
	return strconv.Itoa(*s)
}

func commitText(c *string) string {
	if c == nil || *c == "" {
		return "-"
	}
	if len(*c) > 12 {
		return (*c)[:12]
	}
	return *c
}

// kv prints aligned "key  value" lines.
func (p *Printer) kv(rows [][2]string) {
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		fmt.Fprintf(p.w, "  %s  %s\n", p.theme.Muted.Render(runewidth.FillRight(r[0], width)), r[1])
	}
}

func (p *Printer) metricRows(m *model.Metrics) [][2]string {
	return [][2]string{
		{"cells", p.Count(m.Cells)},
		{"levels", p.Count(m.Levels)},
		{"area (um²)", p.area(m.AreaUm2)},
		{"warnings", p.optCount(m.Warnings)},
	}
}

// Summary prints a persisted Result.
func (p *Printer) Summary(r *model.Result) {
	fmt.Fprintln(p.w, p.theme.Bold.Render("Run "+r.Run.RunID))
	rows := [][2]string{
		{"script", r.Run.ScriptPath},
		{"seed", seedText(r.Run.Seed)},
		{"command", r.Run.Command},
		{"exit code", strconv.Itoa(r.Run.ExitCode)},
		{"duration", (time.Duration(r.Run.DurationMs) * time.Millisecond).String()},
		{"tool", r.Provenance.ToolVersion},
		{"commit", commitText(r.Provenance.Commit)},
		{"timestamp", r.Provenance.Timestamp.UTC().Format(time.RFC3339)},
	}
	if r.Metrics != nil {
		rows = append(rows, p.metricRows(r.Metrics)...)
	}
	rows = append(rows, [2]string{"log", r.Artifacts.LogPath})
	if r.Artifacts.Netlist != nil {
		rows = append(rows, [2]string{"netlist", *r.Artifacts.Netlist})
	}
	p.kv(rows)
	if r.Run.ExitCode != 0 {
		fmt.Fprintln(p.w, p.theme.Warning.Render(p.theme.Icons.Warn+" tool exited with code "+strconv.Itoa(r.Run.ExitCode)))
	}
}

// Baseline prints a freshly seeded or loaded Baseline.
func (p *Printer) Baseline(b *model.Baseline) {
	fmt.Fprintln(p.w, p.theme.Bold.Render("Baseline"))
	rows := [][2]string{
		{"script", b.Source.ScriptPath},
		{"seed", seedText(b.Source.Seed)},
		{"timestamp", b.Timestamp.UTC().Format(time.RFC3339)},
	}
	rows = append(rows, p.metricRows(b.Metrics)...)
	p.kv(rows)
}

// Comparison prints the baseline/current table followed by the verdict.
func (p *Printer) Comparison(o *model.VerificationOutcome) {
	pct := "n/a"
	if o.Cells.DeltaPct != nil {
		pct = fmt.Sprintf("%+.2f%%", *o.Cells.DeltaPct)
	}
	header := []string{"metric", "baseline", "current", "delta", "delta %"}
	body := [][]string{
		{"cells", p.Count(o.Cells.Base), p.Count(o.Cells.Now), fmt.Sprintf("%+d", o.Cells.Delta), pct},
		{"levels", p.Count(o.Levels.Base), p.Count(o.Levels.Now), fmt.Sprintf("%+d", o.Levels.Delta), ""},
	}
	p.table(header, body, func(row, col int) lipgloss.Style {
		if col != 3 {
			return p.theme.Plain
		}
		var d int
		if row == 0 {
			d = o.Cells.Delta
		} else {
			d = o.Levels.Delta
		}
		switch {
		case d > 0:
			return p.theme.Error
		case d < 0:
			return p.theme.Success
		}
		return p.theme.Plain
	})
	if o.Accepted {
		fmt.Fprintln(p.w, p.theme.Success.Render(p.theme.Icons.Pass+" "+o.Message))
	} else {
		fmt.Fprintln(p.w, p.theme.Error.Render(p.theme.Icons.Fail+" "+o.Message))
	}
}

// Recipes lists recipe files, newest first as given.
func (p *Printer) Recipes(entries []recipe.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.theme.Muted.Render("no recipes found (try recipe-init)"))
		return
	}
	header := []string{"recipe", "size", "modified"}
	body := make([][]string, 0, len(entries))
	for _, e := range entries {
		body = append(body, []string{
			runewidth.Truncate(e.Path, MaxPathWidth, "…"),
			p.Count(int(e.Size)),
			e.ModTime.Local().Format("2006-01-02 15:04:05"),
		})
	}
	p.table(header, body, nil)
}

// History prints ledger entries oldest first.
func (p *Printer) History(results []model.Result) {
	if len(results) == 0 {
		fmt.Fprintln(p.w, p.theme.Muted.Render("no runs recorded"))
		return
	}
	header := []string{"timestamp", "run", "script", "seed", "cells", "levels", "area", "exit"}
	body := make([][]string, 0, len(results))
	for _, r := range results {
		id := r.Run.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		body = append(body, []string{
			r.Provenance.Timestamp.UTC().Format(time.RFC3339),
			id,
			runewidth.Truncate(r.Run.ScriptPath, MaxPathWidth, "…"),
			seedText(r.Run.Seed),
			p.Count(r.Metrics.Cells),
			p.Count(r.Metrics.Levels),
			p.area(r.Metrics.AreaUm2),
			strconv.Itoa(r.Run.ExitCode),
		})
	}
	p.table(header, body, nil)
}

// Provenance prints what a run would record about its environment.
func (p *Printer) Provenance(pv model.Provenance, binary string) {
	fmt.Fprintln(p.w, p.theme.Bold.Render("Environment"))
	p.kv([][2]string{
		{"tool", pv.Tool},
		{"binary", binary},
		{"tool version", pv.ToolVersion},
		{"commit", commitText(pv.Commit)},
		{"hostname", pv.Hostname},
		{"platform", pv.Platform},
		{"eda-runner", pv.ExtensionVersion},
	})
}

// Warn prints a non-fatal notice.
func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.w, p.theme.Warning.Render(p.theme.Icons.Warn+" "+msg))
}

// table prints a left-aligned table. style, if set, colors individual body cells.
func (p *Printer) table(header []string, body [][]string, style func(row, col int) lipgloss.Style) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range body {
		for i, c := range row {
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = p.theme.Bold.Render(runewidth.FillRight(h, widths[i]))
	}
	fmt.Fprintln(p.w, strings.TrimRight("  "+strings.Join(cells, "  "), " "))

	for r, row := range body {
		for i, c := range row {
			padded := runewidth.FillRight(c, widths[i])
			if style != nil {
				padded = style(r, i).Render(padded)
			}
			cells[i] = padded
		}
		fmt.Fprintln(p.w, strings.TrimRight("  "+strings.Join(cells, "  "), " "))
	}
}
