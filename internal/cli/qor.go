package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daryltucker/eda-runner/internal/engine"
	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/output"
)

func newBaselineSeedCmd(sess *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "baseline-seed",
		Short: "Make the last run the QoR baseline",
		Long: `Copies the metrics of the last successful run into .eda/baseline.json,
replacing any previous baseline. Later 'verify' calls compare against it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := engine.SeedBaseline(sess.Store, time.Now())
			if err != nil {
				return err
			}
			sess.Logger.Info("Baseline updated", "cells", b.Metrics.Cells, "levels", b.Metrics.Levels)
			sess.Printer().Baseline(b)
			return nil
		},
	}
}

func newVerifyCmd(sess *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Compare the last run against the baseline",
		Long: `Accepts the last run only if neither its cell count nor its logic depth
grew relative to the baseline. Exits non-zero on rejection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := engine.Verify(sess.Store)
			if err != nil {
				return err
			}
			sess.Printer().Comparison(o)
			if !o.Accepted {
				return model.Errorf(model.KindQoRRegression,
					"last run regressed against the baseline (cells %+d, levels %+d)", o.Cells.Delta, o.Levels.Delta)
			}
			return nil
		},
	}
}

func newLastCmd(sess *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the last successful run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := sess.Store.LoadResult()
			if err != nil {
				return err
			}
			sess.Printer().Summary(r)
			return nil
		},
	}
}

func newHistoryCmd(sess *Session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, skipped, err := output.ReadHistory(sess.Layout.HistoryPath())
			if err != nil {
				return model.Wrap(model.KindFileSystemError, err, "failed to read history")
			}
			p := sess.Printer()
			if skipped > 0 {
				p.Warn(fmt.Sprintf("skipped %d unreadable history entries", skipped))
			}
			if limit > 0 && len(results) > limit {
				results = results[len(results)-limit:]
			}
			p.History(results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most N most recent runs (0 for all)")
	return cmd
}
