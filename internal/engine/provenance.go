package engine

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/version"
)

// GitCommit returns HEAD of the repository containing dir, or nil when dir is
// not in a git checkout, git is missing, or the lookup times out.
func GitCommit(ctx context.Context, dir string) *string {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return nil
	}
	commit := strings.TrimSpace(string(out))
	if commit == "" {
		return nil
	}
	return &commit
}

// Provenance gathers the descriptive fields of a run. Every lookup is
// best-effort.
func (r *Runner) Provenance(ctx context.Context) model.Provenance {
	p := model.Provenance{
		Tool:             r.Tool.Name(),
		Timestamp:        r.now().UTC(),
		Platform:         runtime.GOOS + "/" + runtime.GOARCH,
		ExtensionVersion: version.Version,
	}

	// The version probe and the git lookup are independent; run them together.
	lookupCtx, cancel := context.WithTimeout(ctx, r.Config.ProbeTimeout)
	defer cancel()
	var g errgroup.Group
	g.Go(func() error {
		v, err := r.Tool.Probe(lookupCtx)
		if err != nil {
			r.log().Warn("Version probe failed while collecting provenance", "error", err)
			return nil
		}
		p.ToolVersion = v
		return nil
	})
	g.Go(func() error {
		p.Commit = r.commit(lookupCtx, r.Layout.Root)
		return nil
	})
	_ = g.Wait()

	if host, err := os.Hostname(); err == nil {
		p.Hostname = host
	}
	return p
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) commit(ctx context.Context, dir string) *string {
	if r.Commit != nil {
		return r.Commit(ctx, dir)
	}
	return GitCommit(ctx, dir)
}
