// Package stage provides implementations for cleaning stage modules.
// The prune stage removes the BrandCode and Lang columns from every row and
// records the discarded values as a column side output.
package stage

import (
	"context"
	"errors"

	"github.com/regscrub/runtime/internal/logger"
	"github.com/regscrub/runtime/internal/record"
)

// TypePrune is the registered type name of the prune stage.
const TypePrune = "prune"

// ErrNilDiscardLog is returned when a prune stage is built without a log.
var ErrNilDiscardLog = errors.New("prune stage requires a discard log")

// PruneModule clears BrandCode/Lang on each row, appending the prior values
// to the discard log keyed by line. Discards are not rejections: the row
// itself continues through the pipeline.
type PruneModule struct {
	discards *record.DiscardLog
}

// NewPrune creates a prune stage writing into the given discard log.
func NewPrune(discards *record.DiscardLog) (*PruneModule, error) {
	if discards == nil {
		return nil, ErrNilDiscardLog
	}
	return &PruneModule{discards: discards}, nil
}

// Name implements the stage.Module interface.
func (m *PruneModule) Name() string { return TypePrune }

// Apply implements the stage.Module interface.
func (m *PruneModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	kept, rejected, err := transform(ctx, rows, func(row record.Row) record.Row {
		m.discards.Add(record.Discard{
			Line:      row.Line,
			BrandCode: row.BrandCode,
			Lang:      row.Lang,
		})
		row.BrandCode = ""
		row.Lang = ""
		return row
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("columns pruned", "rows", len(kept), "discards", m.discards.Len())
	return kept, rejected, nil
}

// Verify interface compliance at compile time
var _ Module = (*PruneModule)(nil)
