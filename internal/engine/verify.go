package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/daryltucker/eda-runner/internal/model"
	"github.com/daryltucker/eda-runner/internal/store"
)

// Compare applies the acceptance rule: the current run is accepted only if
// neither cells nor levels grew. There is no tolerance band.
func Compare(base, now model.Metrics) model.VerificationOutcome {
	cellsDelta := now.Cells - base.Cells
	var pct *float64
	if base.Cells != 0 {
		p := float64(cellsDelta) / float64(base.Cells) * 100
		pct = &p
	}

	o := model.VerificationOutcome{
		Accepted: now.Levels <= base.Levels && now.Cells <= base.Cells,
		Cells: model.CellsComparison{
			Base:     base.Cells,
			Now:      now.Cells,
			Delta:    cellsDelta,
			DeltaPct: pct,
		},
		Levels: model.LevelsComparison{
			Base:  base.Levels,
			Now:   now.Levels,
			Delta: now.Levels - base.Levels,
		},
	}
	o.Message = verdictMessage(o)
	return o
}

func verdictMessage(o model.VerificationOutcome) string {
	pct := "n/a"
	if o.Cells.DeltaPct != nil {
		pct = fmt.Sprintf("%+.2f%%", *o.Cells.DeltaPct)
	}
	detail := fmt.Sprintf("cells %d -> %d (%+d, %s), levels %d -> %d (%+d)",
		o.Cells.Base, o.Cells.Now, o.Cells.Delta, pct,
		o.Levels.Base, o.Levels.Now, o.Levels.Delta)

	if o.Accepted {
		return "QoR accepted: " + detail
	}
	var regressed []string
	if o.Cells.Delta > 0 {
		regressed = append(regressed, "cells")
	}
	if o.Levels.Delta > 0 {
		regressed = append(regressed, "levels")
	}
	return fmt.Sprintf("QoR rejected (%s regressed): %s", strings.Join(regressed, " and "), detail)
}

// Verify compares the persisted last run against the persisted baseline.
// A rejection is returned as a well-formed outcome, not an error.
func Verify(s *store.Store) (*model.VerificationOutcome, error) {
	base, err := s.LoadBaseline()
	if err != nil {
		return nil, err
	}
	last, err := s.LoadResult()
	if err != nil {
		return nil, err
	}
	o := Compare(*base.Metrics, *last.Metrics)
	return &o, nil
}

// SeedBaseline copies the last run's metrics and source into the baseline
// slot, replacing whatever was there.
func SeedBaseline(s *store.Store, now time.Time) (*model.Baseline, error) {
	last, err := s.LoadResult()
	if err != nil {
		return nil, err
	}

	metrics := *last.Metrics
	b := &model.Baseline{
		Metrics:   &metrics,
		Timestamp: now.UTC(),
		Source: model.BaselineSource{
			ScriptPath: last.Run.ScriptPath,
			Seed:       last.Run.Seed,
		},
	}
	if err := s.SaveBaseline(b); err != nil {
		return nil, err
	}
	return b, nil
}
