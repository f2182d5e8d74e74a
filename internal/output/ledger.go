package output

import (
	"errors"
	"fmt"

	"github.com/daryltucker/eda-runner/internal/model"
)

// AppendLedger records r in both the JSON Lines history and the CSV ledger.
// Both writes are attempted; their errors are joined.
func AppendLedger(historyPath, csvPath string, r *model.Result) error {
	var errs []error

	jw, err := NewJSONWriter(historyPath)
	if err != nil {
		errs = append(errs, fmt.Errorf("open history %s: %w", historyPath, err))
	} else {
		if err := jw.Write(r); err != nil {
			errs = append(errs, fmt.Errorf("write history: %w", err))
		}
		if err := jw.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	cw, err := NewCSVWriter(csvPath)
	if err != nil {
		errs = append(errs, fmt.Errorf("open ledger %s: %w", csvPath, err))
	} else {
		if err := cw.Write(r); err != nil {
			errs = append(errs, fmt.Errorf("write ledger: %w", err))
		}
		if err := cw.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
