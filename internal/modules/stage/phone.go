// Package stage provides implementations for cleaning stage modules.
// The numericPhone stage enforces that the phone field is fully numeric.
package stage

import (
	"context"
	"regexp"

	"github.com/regscrub/runtime/internal/record"
)

// TypeNumericPhone is the registered type name of the numericPhone stage.
const TypeNumericPhone = "numericPhone"

// numericPattern accepts an optionally signed integer or decimal and
// nothing else. Exponents, infinities and stray characters all fail, as do
// empty strings.
var numericPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// NumericPhoneModule rejects rows whose Phone is not fully parseable as a
// number.
type NumericPhoneModule struct{}

// NewNumericPhone creates a numericPhone filter stage.
func NewNumericPhone() *NumericPhoneModule { return &NumericPhoneModule{} }

// Name implements the stage.Module interface.
func (m *NumericPhoneModule) Name() string { return TypeNumericPhone }

// Apply implements the stage.Module interface.
func (m *NumericPhoneModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return partition(ctx, rows, record.ReasonNonNumericPhone, func(row record.Row) bool {
		return IsNumeric(row.Phone)
	})
}

// IsNumeric reports whether s is an optionally signed integer or decimal.
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// Verify interface compliance at compile time
var _ Module = (*NumericPhoneModule)(nil)
