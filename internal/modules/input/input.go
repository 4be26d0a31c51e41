// Package input provides implementations for input modules.
// Input modules are responsible for loading a registration dataset from a
// source system and validating its shape before any stage runs.
package input

import (
	"context"

	"github.com/regscrub/runtime/internal/record"
)

// Module represents an input module that loads a dataset from a source.
type Module interface {
	// Fetch loads the dataset from the source system.
	// The context can be used to cancel long-running operations.
	// A missing required column is a structural error: no dataset is
	// returned and the run must abort.
	Fetch(ctx context.Context) (*record.Dataset, error)

	// Close releases any resources held by the module.
	Close() error
}
