// Package output provides implementations for output modules.
// Output modules persist the accepted and rejected sets, plus the pruned
// column side output, after the stage chain has run to completion.
package output

import (
	"context"

	"github.com/regscrub/runtime/internal/record"
)

// Outcome is the final state of a run handed to the output module.
type Outcome struct {
	// ExtraHeader lists passthrough column names in source order
	ExtraHeader []string

	// Accepted holds the rows that passed every stage, in source order
	Accepted []record.Row

	// Rejected holds all rejected rows with reasons, in source order
	Rejected []record.Rejection

	// Discards is the pruned-column side output
	Discards *record.DiscardLog
}

// Module represents an output module that persists a run outcome.
type Module interface {
	// Write persists the outcome. Implementations must not leave partial
	// output behind on failure.
	Write(ctx context.Context, outcome *Outcome) error

	// Close releases any resources held by the module.
	Close() error
}
