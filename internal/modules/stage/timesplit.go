// Package stage provides implementations for cleaning stage modules.
// The timeSplit stage parses the raw registration timestamp into separate
// calendar-date and time-of-day fields.
package stage

import (
	"context"
	"time"

	"github.com/regscrub/runtime/internal/record"
)

// TypeTimeSplit is the registered type name of the timeSplit stage.
const TypeTimeSplit = "timeSplit"

// Output layouts for the split fields.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// registrationLayouts are the accepted input timestamp formats, tried in
// order. The first match wins.
var registrationLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
}

// TimeSplitModule parses RegistrationDate into RegDate and RegTime.
// A value that matches no accepted layout nulls both fields; the row is not
// rejected here. The registrationComplete stage rejects it later.
type TimeSplitModule struct{}

// NewTimeSplit creates a timeSplit stage.
func NewTimeSplit() *TimeSplitModule {
	return &TimeSplitModule{}
}

// Name implements the stage.Module interface.
func (m *TimeSplitModule) Name() string { return TypeTimeSplit }

// Apply implements the stage.Module interface.
func (m *TimeSplitModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return transform(ctx, rows, func(row record.Row) record.Row {
		row.RegDate, row.RegTime = SplitTimestamp(row.RegistrationDate)
		return row
	})
}

// SplitTimestamp parses a raw registration timestamp into date and time
// strings. Both are empty when the value matches no accepted layout.
func SplitTimestamp(raw string) (date, tod string) {
	if raw == "" {
		return "", ""
	}
	for _, layout := range registrationLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return t.Format(dateLayout), t.Format(timeLayout)
	}
	return "", ""
}

// Verify interface compliance at compile time
var _ Module = (*TimeSplitModule)(nil)
