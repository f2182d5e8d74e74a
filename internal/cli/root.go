/*
PURPOSE:
  Defines the root Cobra command for the eda-runner CLI.
  Handles global flags and builds the per-invocation Session.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface over one hardware project directory.
  - Support global flags like --project, --config, --verbose and --no-color.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Commands receive state through an explicit *Session, never package globals,
    so each NewRootCmd() is independent (tests build many).

ARCHITECTURE INTEGRATION:
  - Called by: cmd/eda-runner/main.go
  - Calls: child commands (recipe-init, recipe-list, run, baseline-seed, verify, last, history, env)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.
  - Errors without a kind are reported as FileSystemError, text preserved.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands; root only builds the Session.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to rootOptions and NewRootCmd().

RELATED FILES:
  - cmd/eda-runner/main.go
  - internal/cli/session.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/version"
)

type rootOptions struct {
	projectDir string
	cfgFile    string
	verbose    bool
	noColor    bool
}

// NewRootCmd builds the full command tree with a fresh Session.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	sess := &Session{}

	root := &cobra.Command{
		Use:   "eda-runner",
		Short: "Reproducible synthesis runs with QoR regression checks",
		Long: `eda-runner drives an external logic-synthesis tool (Yosys by default) over a
hardware project, records the QoR metrics of every run under .eda/, and checks
the last run against a stored baseline.

A project is a directory with rtl/ (required), recipes/ and build/.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			s, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			*sess = *s
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&opts.projectDir, "project", "C", ".", "project directory")
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is <project>/eda.yaml or <project>/.eda/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newRecipeInitCmd(sess),
		newRecipeListCmd(sess),
		newRunCmd(sess),
		newBaselineSeedCmd(sess),
		newVerifyCmd(sess),
		newLastCmd(sess),
		newHistoryCmd(sess),
		newEnvCmd(sess),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return classify(NewRootCmd().ExecuteContext(ctx))
}

// classify gives every error a kind so the operator always sees one.
func classify(err error) error {
	if err == nil || model.KindOf(err) != "" {
		return err
	}
	return &model.Error{Kind: model.KindFileSystemError, Msg: err.Error(), Err: err}
}
