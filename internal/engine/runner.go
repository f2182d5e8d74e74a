/*
PURPOSE:
  High-level runner that orchestrates one synthesis run.
  Checks preconditions, runs the tool, extracts QoR and persists the Result.

REQUIREMENTS:
  User-specified:
  - Preconditions in order: script exists, project structure, tool available.
  - Optional seed threaded into the tool's optimization step.
  - 30 minute hard timeout; no retries; no partial Results.

  Implementation-discovered:
  - The raw log is written even when extraction fails so it can be inspected.
  - History ledger failures are logged and never fail the run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/extract, internal/store, internal/recipe, internal/output

ERROR HANDLING:
  - Every failure is a classified *model.Error (see internal/model/errors.go).

IMPLEMENTATION RULES:
  - Script check -> project check -> tool probe -> exec -> extract -> persist.

USAGE:
  r, err := engine.New(cfg, layout, engine.NewExecTool(cfg.Tool))
  report, err := r.Run(ctx, engine.RunRequest{ScriptPath: "recipes/synth.ys"})

SELF-HEALING INSTRUCTIONS:
  - If metrics stop parsing after a tool upgrade, register a new extractor.

RELATED FILES:
  - internal/engine/tool.go
  - internal/extract/yosys.go

MAINTENANCE:
  - Update BuildArgs if the tool's script invocation changes.
*/

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daryltucker/eda-runner/internal/config"
	"github.com/daryltucker/eda-runner/internal/extract"
	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/output"
	"github.com/daryltucker/eda-runner/internal/project"
	"github.com/daryltucker/eda-runner/internal/recipe"
	"github.com/daryltucker/eda-runner/internal/store"
)

// Runner executes synthesis scripts for one project.
type Runner struct {
	Config    *config.Config
	Layout    project.Layout
	Store     *store.Store
	Tool      Tool
	Extractor extract.Extractor
	Logger    *slog.Logger

	// Overridable for tests.
	Now      func() time.Time
	Commit   func(ctx context.Context, dir string) *string
	NewRunID func() string
}

// New creates a Runner using the extractor named in cfg.
func New(cfg *config.Config, layout project.Layout, tool Tool) (*Runner, error) {
	ex, err := extract.Lookup(cfg.Extractor)
	if err != nil {
		return nil, err
	}
	return &Runner{
		Config:    cfg,
		Layout:    layout,
		Store:     store.New(layout),
		Tool:      tool,
		Extractor: ex,
	}, nil
}

// RunRequest selects the script and optional seed.
type RunRequest struct {
	ScriptPath string
	Seed       *int
}

// RunReport is what a successful run produced.
type RunReport struct {
	Result     *model.Result
	ResultPath string
	Warnings   []string
}

// Run executes one synthesis run and persists its Result.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	log := r.log()

	// 1. Script
	script := req.ScriptPath
	if script == "" {
		script = r.Layout.Recipe(r.Config.DefaultRecipe)
	}
	script = r.Layout.Resolve(script)
	info, err := os.Stat(script)
	if err != nil || !info.Mode().IsRegular() {
		return nil, model.Errorf(model.KindScriptNotFound,
			"synthesis script %s does not exist or is not a regular file; create it with 'recipe-init' or pass a path", script)
	}
	recipeText, err := os.ReadFile(script)
	if err != nil {
		return nil, model.Wrap(model.KindFileSystemError, err, "failed to read "+script)
	}

	// 2. Project structure
	warnings, err := r.Layout.Validate()
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warn("Project structure", "warning", w)
	}

	// 3. Tool
	probeCtx, cancel := context.WithTimeout(ctx, r.Config.ProbeTimeout)
	toolVersion, err := r.Tool.Probe(probeCtx)
	cancel()
	if err != nil {
		if model.KindOf(err) == "" {
			err = model.Wrap(model.KindToolUnavailable, err, r.Tool.Name()+" version probe failed")
		}
		return nil, err
	}
	log.Debug("Tool available", "tool", r.Tool.Name(), "version", toolVersion)

	if err := r.Layout.EnsureStateDirs(); err != nil {
		return nil, err
	}

	// 4. Execute
	scriptArg := r.Layout.Rel(script)
	args := BuildArgs(r.Config.Tool, scriptArg, req.Seed)
	command := CommandString(r.Tool.Name(), args)
	log.Info("Running synthesis", "command", command, "timeout", r.Config.RunTimeout)

	runCtx, cancel := context.WithTimeout(ctx, r.Config.RunTimeout)
	out, err := r.Tool.Exec(runCtx, r.Layout.Root, args)
	cancel()
	if err != nil {
		return nil, model.Wrap(model.KindToolUnavailable, err, "failed to execute "+command)
	}
	log.Debug("Tool exited", "exit_code", out.ExitCode, "duration_ms", out.DurationMs)

	if out.TimedOut {
		logPath, logErr := r.Store.WriteLog(out)
		msg := fmt.Sprintf("%s was killed after %s (exit code %d)", command, r.Config.RunTimeout, out.ExitCode)
		if logErr == nil {
			msg += "; partial output in " + logPath
		}
		return nil, model.Errorf(model.KindToolExecutionTimeout, "%s", msg)
	}

	// 5. Extract
	metrics, err := r.Extractor.Extract(out)
	if err != nil {
		logPath, logErr := r.Store.WriteLog(out)
		if logErr != nil {
			log.Error("Failed to write tool log", "error", logErr)
			logPath = "(log not written)"
		}
		return nil, model.Wrap(model.KindParseFailure, err,
			fmt.Sprintf("%s exited with code %d but its output could not be understood; raw log: %s",
				command, out.ExitCode, logPath))
	}
	if out.ExitCode != 0 {
		log.Warn("Tool exited non-zero but reported metrics", "exit_code", out.ExitCode)
	}

	// 6. Assemble and persist
	result := &model.Result{
		Provenance: r.Provenance(ctx),
		Run: model.RunRecord{
			RunID:      r.runID(),
			ScriptPath: scriptArg,
			Seed:       req.Seed,
			WorkingDir: r.Layout.Root,
			Command:    command,
			DurationMs: out.DurationMs,
			ExitCode:   out.ExitCode,
		},
		Metrics: &metrics,
		Artifacts: model.Artifacts{
			Netlist: recipe.OutputNetlist(string(recipeText)),
		},
	}

	logPath, err := r.Store.WriteLog(out)
	if err != nil {
		return nil, err
	}
	result.Artifacts.LogPath = logPath

	if err := r.Store.SaveResult(result); err != nil {
		return nil, err
	}

	if err := output.AppendLedger(r.Layout.HistoryPath(), r.Layout.LedgerPath(), result); err != nil {
		log.Warn("Failed to append run history", "error", err)
	}

	log.Info("Synthesis complete",
		"cells", metrics.Cells,
		"levels", metrics.Levels,
		"duration", time.Duration(out.DurationMs)*time.Millisecond,
	)

	return &RunReport{
		Result:     result,
		ResultPath: r.Layout.ResultPath(),
		Warnings:   warnings,
	}, nil
}

// BuildArgs returns the tool arguments for script. Without a seed the script
// is passed with -s. With a seed the seed directive runs first and the script
// is sourced from the same -p command so the seed is in effect for its
// optimization passes.
func BuildArgs(tc config.ToolConfig, script string, seed *int) []string {
	if seed == nil {
		return []string{"-s", script}
	}
	directive := fmt.Sprintf(tc.SeedDirective, *seed)
	return []string{"-p", directive + "; script " + strconv.Quote(script)}
}

// CommandString renders a command line for display and the run record.
func CommandString(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, binary)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"';$&|<>") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

func (r *Runner) runID() string {
	if r.NewRunID != nil {
		return r.NewRunID()
	}
	return uuid.NewString()
}

func (r *Runner) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return output.Logger
}
