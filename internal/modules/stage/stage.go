// Package stage provides implementations for cleaning stage modules.
// A stage takes the current accepted rows and returns the rows it keeps plus
// the rows it rejects, tagged with a reason. Transform stages keep every row;
// filter stages split rows on a predicate. Stages never re-examine rows a
// previous stage rejected, and every stage preserves input order in both
// outputs (stable partition).
package stage

import (
	"context"

	"github.com/regscrub/runtime/internal/record"
)

// Module represents one cleaning stage.
type Module interface {
	// Name returns the stage's registered type name.
	Name() string

	// Apply processes the current accepted rows. kept and rejected together
	// contain every input row exactly once, in input order.
	Apply(ctx context.Context, rows []record.Row) (kept []record.Row, rejected []record.Rejection, err error)
}

// checkCancel polls ctx every checkInterval rows so large datasets stay
// cancellable without a per-row select.
const checkInterval = 1000

func checkCancel(ctx context.Context, i int) error {
	if i%checkInterval != 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// partition splits rows on a predicate, preserving order in both halves.
// Rows failing the predicate are tagged with the given reason.
func partition(ctx context.Context, rows []record.Row, reason record.Reason, pass func(record.Row) bool) ([]record.Row, []record.Rejection, error) {
	kept := make([]record.Row, 0, len(rows))
	var rejected []record.Rejection

	for i, row := range rows {
		if err := checkCancel(ctx, i); err != nil {
			return nil, nil, err
		}
		if pass(row) {
			kept = append(kept, row)
			continue
		}
		rejected = append(rejected, record.Rejection{Row: row, Reason: reason})
	}

	return kept, rejected, nil
}

// transform applies fn to every row, keeping all of them.
func transform(ctx context.Context, rows []record.Row, fn func(record.Row) record.Row) ([]record.Row, []record.Rejection, error) {
	kept := make([]record.Row, 0, len(rows))

	for i, row := range rows {
		if err := checkCancel(ctx, i); err != nil {
			return nil, nil, err
		}
		kept = append(kept, fn(row))
	}

	return kept, nil, nil
}
