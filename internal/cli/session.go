package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daryltucker/eda-runner/internal/config"
	"github.com/daryltucker/eda-runner/internal/engine"
	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/output"
	"github.com/daryltucker/eda-runner/internal/project"
	"github.com/daryltucker/eda-runner/internal/render"
	"github.com/daryltucker/eda-runner/internal/store"
)

// Session is the state shared by the commands of one invocation.
type Session struct {
	Config  *config.Config
	Layout  project.Layout
	Store   *store.Store
	Logger  *slog.Logger
	Out     io.Writer
	Err     io.Writer
	NoColor bool
}

func newSession(cmd *cobra.Command, opts *rootOptions) (*Session, error) {
	errOut := cmd.ErrOrStderr()
	logger := output.NewLogger(errOut, opts.verbose)
	output.SetLogger(logger)

	root, err := filepath.Abs(opts.projectDir)
	if err != nil {
		return nil, model.Wrap(model.KindInvalidProjectStructure, err, "cannot resolve project directory "+opts.projectDir)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, model.Errorf(model.KindInvalidProjectStructure, "project directory %s does not exist", root)
	}

	cfg, err := config.Load(opts.cfgFile, root)
	if err != nil {
		return nil, model.Wrap(model.KindFileSystemError, err, "failed to load configuration")
	}
	logger.Debug("Session ready", "project", root, "tool", cfg.Tool.Binary, "config", opts.cfgFile)

	layout := project.New(root)
	return &Session{
		Config:  cfg,
		Layout:  layout,
		Store:   store.New(layout),
		Logger:  logger,
		Out:     cmd.OutOrStdout(),
		Err:     errOut,
		NoColor: opts.noColor,
	}, nil
}

// Printer renders to the command's standard output.
func (s *Session) Printer() *render.Printer {
	return render.New(s.Out, render.ColorEnabled(s.Out, s.NoColor))
}

// Runner builds an engine.Runner for the configured tool. A non-nil echo
// receives the tool's output live.
func (s *Session) Runner(echo io.Writer) (*engine.Runner, error) {
	tool := engine.NewExecTool(s.Config.Tool)
	tool.Echo = echo
	r, err := engine.New(s.Config, s.Layout, tool)
	if err != nil {
		return nil, model.Wrap(model.KindFileSystemError, err, "invalid extractor in configuration")
	}
	r.Store = s.Store
	r.Logger = s.Logger
	return r, nil
}
