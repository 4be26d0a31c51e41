// Package stage provides implementations for cleaning stage modules.
// The registrationComplete stage enforces that the timestamp split produced
// both a date and a time.
package stage

import (
	"context"

	"github.com/regscrub/runtime/internal/record"
)

// TypeRegistrationComplete is the registered type name of the
// registrationComplete stage.
const TypeRegistrationComplete = "registrationComplete"

// RegistrationCompleteModule rejects rows whose RegDate or RegTime is empty.
// This is where rows with an absent or unparseable RegistrationDate leave
// the pipeline; the timeSplit stage itself never rejects.
type RegistrationCompleteModule struct{}

// NewRegistrationComplete creates a registrationComplete filter stage.
func NewRegistrationComplete() *RegistrationCompleteModule {
	return &RegistrationCompleteModule{}
}

// Name implements the stage.Module interface.
func (m *RegistrationCompleteModule) Name() string { return TypeRegistrationComplete }

// Apply implements the stage.Module interface.
func (m *RegistrationCompleteModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return partition(ctx, rows, record.ReasonIncompleteRegistration, func(row record.Row) bool {
		return row.RegDate != "" && row.RegTime != ""
	})
}

// Verify interface compliance at compile time
var _ Module = (*RegistrationCompleteModule)(nil)
