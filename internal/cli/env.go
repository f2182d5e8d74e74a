package cli

import (
	"os/exec"

	"github.com/spf13/cobra"
)

func newEnvCmd(sess *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the provenance a run would record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := sess.Runner(nil)
			if err != nil {
				return err
			}
			binary := sess.Config.Tool.Binary
			if path, err := exec.LookPath(binary); err == nil {
				binary = path
			}
			sess.Printer().Provenance(runner.Provenance(cmd.Context()), binary)
			return nil
		},
	}
}
