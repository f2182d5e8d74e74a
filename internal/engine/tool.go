/*
PURPOSE:
  Talks to the external synthesis tool binary.
  Discovers it, probes its version and runs it as a child process.

REQUIREMENTS:
  User-specified:
  - Tool must be discoverable and answer a version probe quickly.
  - A run is killed after a hard wall-clock timeout.

  Implementation-discovered:
  - stdout and stderr are copied concurrently so neither pipe can stall the child.
  - WaitDelay bounds the wait for pipes held open by escaped descendants.
  - The whole process group is killed so helper processes (abc) die with yosys.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Implements: Tool (fakes in tests implement it too)

ERROR HANDLING:
  - Missing binary or failed probe -> ToolUnavailable.
  - Timeout is reported in ToolOutput.TimedOut, not as an error.

IMPLEMENTATION RULES:
  - Never compute on partial output; buffers are only read after the child exits.

USAGE:
  t := engine.NewExecTool(cfg.Tool)
  out, err := t.Exec(ctx, dir, args)

SELF-HEALING INSTRUCTIONS:
  - If timeouts leave orphaned processes, check process_unix.go.

RELATED FILES:
  - internal/engine/process_unix.go

MAINTENANCE:
  - Update when supporting tools that need stdin.
*/

package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/daryltucker/eda-runner/internal/config"
	"github.com/daryltucker/eda-runner/internal/model"
)

// TimeoutExitCode is recorded when a run is killed by the wall-clock timeout.
const TimeoutExitCode = 124

// Tool is the external synthesis tool as seen by the runner.
type Tool interface {
	Name() string
	// Probe returns the tool's version line.
	Probe(ctx context.Context) (string, error)
	// Exec runs the tool with args in dir until it exits or ctx is done.
	Exec(ctx context.Context, dir string, args []string) (model.ToolOutput, error)
}

// ExecTool runs a tool binary with os/exec.
type ExecTool struct {
	Binary      string
	VersionArgs []string
	// Echo, when set, receives a live copy of stdout and stderr.
	Echo io.Writer
	// WaitDelay bounds how long Exec waits for pipes after the child is killed.
	WaitDelay time.Duration
}

// NewExecTool builds an ExecTool from configuration.
func NewExecTool(cfg config.ToolConfig) *ExecTool {
	return &ExecTool{
		Binary:      cfg.Binary,
		VersionArgs: cfg.VersionArgs,
		WaitDelay:   5 * time.Second,
	}
}

func (t *ExecTool) Name() string { return t.Binary }

// Probe locates the binary and runs the version command.
func (t *ExecTool) Probe(ctx context.Context) (string, error) {
	path, err := exec.LookPath(t.Binary)
	if err != nil {
		return "", model.Wrap(model.KindToolUnavailable, err,
			fmt.Sprintf("%s not found on PATH; install it or set tool.binary / EDA_TOOL", t.Binary))
	}

	cmd := exec.CommandContext(ctx, path, t.VersionArgs...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = t.WaitDelay
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return "", model.Wrap(model.KindToolUnavailable, ctx.Err(),
			fmt.Sprintf("%s did not answer the version probe", path))
	}
	if err != nil {
		return "", model.Wrap(model.KindToolUnavailable, err,
			fmt.Sprintf("%s %s failed", path, strings.Join(t.VersionArgs, " ")))
	}

	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", model.Errorf(model.KindToolUnavailable, "%s printed no version", path)
}

// Exec runs the tool and collects its output in memory until it exits.
// Output is copied by os/exec itself so WaitDelay also bounds descendants
// that left the process group but still hold stdout or stderr open.
func (t *ExecTool) Exec(ctx context.Context, dir string, args []string) (model.ToolOutput, error) {
	cmd := exec.CommandContext(ctx, t.Binary, args...)
	cmd.Dir = dir
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = t.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if t.Echo != nil {
		echo := &lockedWriter{w: t.Echo}
		cmd.Stdout = io.MultiWriter(&stdout, echo)
		cmd.Stderr = io.MultiWriter(&stderr, echo)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return model.ToolOutput{}, fmt.Errorf("failed to start %s: %w", t.Binary, err)
	}
	waitErr := cmd.Wait()

	out := model.ToolOutput{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		out.TimedOut = true
		out.ExitCode = TimeoutExitCode
		return out, nil
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return out, fmt.Errorf("waiting for %s: %w", t.Binary, waitErr)
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	if out.ExitCode < 0 {
		// killed by a signal
		out.ExitCode = 1
	}
	return out, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
