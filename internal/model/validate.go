package model

import (
	"encoding/json"
	"errors"
)

// UnmarshalJSON requires cells and levels to be present. A missing count is
// a damaged record, not a zero.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw struct {
		Cells    *int     `json:"cells"`
		Levels   *int     `json:"levels"`
		AreaUm2  *float64 `json:"area_um2"`
		Warnings *int     `json:"warnings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Cells == nil {
		return errors.New("metrics.cells is missing")
	}
	if raw.Levels == nil {
		return errors.New("metrics.levels is missing")
	}
	*m = Metrics{Cells: *raw.Cells, Levels: *raw.Levels, AreaUm2: raw.AreaUm2, Warnings: raw.Warnings}
	return nil
}

// Validate checks the fields every comparison depends on.
func (m *Metrics) Validate() error {
	if m == nil {
		return errors.New("metrics missing")
	}
	if m.Cells < 0 {
		return errors.New("cells must be non-negative")
	}
	if m.Levels < 0 {
		return errors.New("levels must be non-negative")
	}
	if m.AreaUm2 != nil && *m.AreaUm2 < 0 {
		return errors.New("area_um2 must be non-negative")
	}
	if m.Warnings != nil && *m.Warnings < 0 {
		return errors.New("warnings must be non-negative")
	}
	return nil
}

func (r *Result) Validate() error {
	if err := r.Metrics.Validate(); err != nil {
		return Wrap(KindMalformedPersistedRecord, err, "last run result")
	}
	return nil
}

func (b *Baseline) Validate() error {
	if err := b.Metrics.Validate(); err != nil {
		return Wrap(KindMalformedPersistedRecord, err, "baseline")
	}
	return nil
}
