package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/eda-runner/internal/config"
	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/output"
	"github.com/daryltucker/eda-runner/internal/project"
)

type fakeTool struct {
	version  string
	probeErr error
	out      model.ToolOutput
	execErr  error

	probes      int
	gotDir      string
	gotArgs     []string
	sawBuildDir bool
}

func (f *fakeTool) Name() string { return "yosys" }

func (f *fakeTool) Probe(context.Context) (string, error) {
	f.probes++
	return f.version, f.probeErr
}

func (f *fakeTool) Exec(_ context.Context, dir string, args []string) (model.ToolOutput, error) {
	f.gotDir = dir
	f.gotArgs = args
	if info, err := os.Stat(filepath.Join(dir, project.BuildDir)); err == nil && info.IsDir() {
		f.sawBuildDir = true
	}
	return f.out, f.execErr
}

const goodOutput = "Number of cells: 200\nChip area for module top: 64.5 um2\nLongest path (levels): 15\n"

const recipeText = "read_verilog rtl/top.v\nsynth -top top\nstat\nwrite_verilog -noattr build/top_netlist.v\n"

func newProject(t *testing.T) project.Layout {
	t.Helper()
	l := project.New(t.TempDir())
	require.NoError(t, os.Mkdir(l.RTLDir(), 0o755))
	require.NoError(t, os.Mkdir(l.RecipesDir(), 0o755))
	require.NoError(t, os.WriteFile(l.Recipe("synth.ys"), []byte(recipeText), 0o644))
	return l
}

func newRunner(t *testing.T, l project.Layout, tool *fakeTool) *Runner {
	t.Helper()
	r, err := New(config.DefaultConfig(), l, tool)
	require.NoError(t, err)
	r.Now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600)) }
	r.Commit = func(context.Context, string) *string { return nil }
	r.NewRunID = func() string { return "run-1" }
	return r
}

func TestRun_PersistsResult(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	tool := &fakeTool{version: "Yosys 0.38", out: model.ToolOutput{Stdout: goodOutput, DurationMs: 1500}}
	r := newRunner(t, l, tool)

	report, err := r.Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, l.ResultPath(), report.ResultPath)
	assert.Equal(t, l.Root, tool.gotDir)
	assert.True(t, tool.sawBuildDir, "build/ exists before the recipe writes into it")
	assert.Equal(t, []string{"-s", filepath.Join("recipes", "synth.ys")}, tool.gotArgs)
	assert.Equal(t, 2, tool.probes, "availability probe plus provenance probe")

	res := report.Result
	assert.Equal(t, "run-1", res.Run.RunID)
	assert.Equal(t, filepath.Join("recipes", "synth.ys"), res.Run.ScriptPath)
	assert.Nil(t, res.Run.Seed)
	assert.Equal(t, int64(1500), res.Run.DurationMs)
	assert.Equal(t, "yosys -s "+filepath.Join("recipes", "synth.ys"), res.Run.Command)
	assert.Equal(t, 200, res.Metrics.Cells)
	assert.Equal(t, 15, res.Metrics.Levels)
	require.NotNil(t, res.Metrics.AreaUm2)
	assert.InDelta(t, 64.5, *res.Metrics.AreaUm2, 1e-9)
	assert.Equal(t, 0, *res.Metrics.Warnings)
	assert.Equal(t, "Yosys 0.38", res.Provenance.ToolVersion)
	assert.Equal(t, time.UTC, res.Provenance.Timestamp.Location())
	assert.Nil(t, res.Provenance.Commit)
	require.NotNil(t, res.Artifacts.Netlist)
	assert.Equal(t, "build/top_netlist.v", *res.Artifacts.Netlist)
	assert.Equal(t, l.LogPath(), res.Artifacts.LogPath)

	persisted, err := r.Store.LoadResult()
	require.NoError(t, err)
	assert.Equal(t, res.Metrics, persisted.Metrics)

	log, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(log), goodOutput))

	history, _, err := output.ReadHistory(l.HistoryPath())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "run-1", history[0].Run.RunID)
	assert.FileExists(t, l.LedgerPath())
}

func TestRun_Seed(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	tool := &fakeTool{version: "Yosys 0.38", out: model.ToolOutput{Stdout: goodOutput}}
	r := newRunner(t, l, tool)
	seed := 17

	report, err := r.Run(context.Background(), RunRequest{Seed: &seed})
	require.NoError(t, err)

	require.Len(t, tool.gotArgs, 2)
	assert.Equal(t, "-p", tool.gotArgs[0])
	assert.Equal(t, `scratchpad -set abc9.seed 17; script "recipes/synth.ys"`, tool.gotArgs[1])
	require.NotNil(t, report.Result.Run.Seed)
	assert.Equal(t, 17, *report.Result.Run.Seed)
}

func TestRun_ExplicitScript(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	alt := l.Recipe("fast.ys")
	require.NoError(t, os.WriteFile(alt, []byte("synth\nstat\n"), 0o644))
	tool := &fakeTool{version: "Yosys 0.38", out: model.ToolOutput{Stdout: goodOutput}}
	r := newRunner(t, l, tool)

	report, err := r.Run(context.Background(), RunRequest{ScriptPath: alt})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("recipes", "fast.ys"), report.Result.Run.ScriptPath)
	assert.Nil(t, report.Result.Artifacts.Netlist)
}

func TestRun_ScriptNotFoundChecksFirst(t *testing.T) {
	t.Parallel()

	// no rtl/ either: the script check must win
	l := project.New(t.TempDir())
	tool := &fakeTool{version: "Yosys 0.38"}
	r := newRunner(t, l, tool)

	_, err := r.Run(context.Background(), RunRequest{ScriptPath: "recipes/missing.ys"})
	require.ErrorIs(t, err, model.ErrScriptNotFound)
	assert.Zero(t, tool.probes)
}

func TestRun_ScriptIsDirectory(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	r := newRunner(t, l, &fakeTool{})

	_, err := r.Run(context.Background(), RunRequest{ScriptPath: "recipes"})
	require.ErrorIs(t, err, model.ErrScriptNotFound)
}

func TestRun_InvalidProjectStructure(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	require.NoError(t, os.Remove(l.RTLDir()))
	tool := &fakeTool{version: "Yosys 0.38"}
	r := newRunner(t, l, tool)

	_, err := r.Run(context.Background(), RunRequest{})
	require.ErrorIs(t, err, model.ErrInvalidProjectStructure)
	assert.Zero(t, tool.probes, "tool must not be probed before the project is valid")
}

func TestRun_ToolUnavailable(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	tool := &fakeTool{probeErr: errors.New("exec: \"yosys\": executable file not found in $PATH")}
	r := newRunner(t, l, tool)

	_, err := r.Run(context.Background(), RunRequest{})
	require.ErrorIs(t, err, model.ErrToolUnavailable)
	assert.Nil(t, tool.gotArgs)
}

func TestRun_ExecFailure(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	tool := &fakeTool{version: "Yosys 0.38", execErr: errors.New("fork/exec: permission denied")}
	r := newRunner(t, l, tool)

	_, err := r.Run(context.Background(), RunRequest{})
	require.ErrorIs(t, err, model.ErrToolUnavailable)
	assert.False(t, r.Store.HasResult())
}

func TestRun_Timeout(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	tool := &fakeTool{version: "Yosys 0.38", out: model.ToolOutput{
		Stdout:   "Number of cells: 10\n",
		ExitCode: TimeoutExitCode,
		TimedOut: true,
	}}
	r := newRunner(t, l, tool)

	_, err := r.Run(context.Background(), RunRequest{})
	require.ErrorIs(t, err, model.ErrToolExecutionTimeout)
	assert.Contains(t, err.Error(), "30m0s")
	assert.False(t, r.Store.HasResult())
	assert.FileExists(t, l.LogPath())
}

func TestRun_ParseFailureKeepsPreviousResult(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	tool := &fakeTool{version: "Yosys 0.38", out: model.ToolOutput{Stdout: goodOutput}}
	r := newRunner(t, l, tool)
	_, err := r.Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	tool.out = model.ToolOutput{Stdout: "ERROR: syntax error in rtl/top.v\n", Stderr: "boom"}
	_, err = r.Run(context.Background(), RunRequest{})
	require.ErrorIs(t, err, model.ErrParseFailure)
	assert.Contains(t, err.Error(), l.LogPath())

	log, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(log), "syntax error")
	assert.Contains(t, string(log), "boom")

	res, err := r.Store.LoadResult()
	require.NoError(t, err)
	assert.Equal(t, 200, res.Metrics.Cells, "failed run must not touch the last-run slot")

	history, _, err := output.ReadHistory(l.HistoryPath())
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRun_NonZeroExitWithMetrics(t *testing.T) {
	t.Parallel()

	l := newProject(t)
	tool := &fakeTool{version: "Yosys 0.38", out: model.ToolOutput{Stdout: goodOutput, ExitCode: 2}}
	r := newRunner(t, l, tool)

	report, err := r.Run(context.Background(), RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Result.Run.ExitCode)
}

func TestRun_UnknownExtractor(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Extractor = "vivado"
	_, err := New(cfg, newProject(t), &fakeTool{})
	require.Error(t, err)
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	tc := config.DefaultConfig().Tool
	assert.Equal(t, []string{"-s", "recipes/a.ys"}, BuildArgs(tc, "recipes/a.ys", nil))

	seed := 3
	tc.SeedDirective = "abc -D %d"
	assert.Equal(t, []string{"-p", `abc -D 3; script "my recipes/a.ys"`}, BuildArgs(tc, "my recipes/a.ys", &seed))
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "yosys -s recipes/a.ys", CommandString("yosys", []string{"-s", "recipes/a.ys"}))
	assert.Equal(t,
		`yosys -p "scratchpad -set abc9.seed 1; script \"a.ys\""`,
		CommandString("yosys", []string{"-p", `scratchpad -set abc9.seed 1; script "a.ys"`}))
}
