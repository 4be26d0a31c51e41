// Package stage provides implementations for cleaning stage modules.
// This file implements the name-based filter stages: missingName, digitName,
// specialCharName, and the optional shortName filter.
package stage

import (
	"context"
	"strings"
	"unicode"

	"github.com/regscrub/runtime/internal/record"
)

// Registered type names of the name filter stages.
const (
	TypeMissingName     = "missingName"
	TypeDigitName       = "digitName"
	TypeSpecialCharName = "specialCharName"
	TypeShortName       = "shortName"
)

// specialChars are the literal characters that disqualify a name.
const specialChars = "@%$#_"

// MissingNameModule rejects rows where FirstName or LastName is empty after
// normalization.
type MissingNameModule struct{}

// NewMissingName creates a missingName filter stage.
func NewMissingName() *MissingNameModule { return &MissingNameModule{} }

// Name implements the stage.Module interface.
func (m *MissingNameModule) Name() string { return TypeMissingName }

// Apply implements the stage.Module interface.
func (m *MissingNameModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return partition(ctx, rows, record.ReasonMissingName, func(row record.Row) bool {
		return row.FirstName != "" && row.LastName != ""
	})
}

// DigitNameModule rejects rows where either name contains a decimal digit.
type DigitNameModule struct{}

// NewDigitName creates a digitName filter stage.
func NewDigitName() *DigitNameModule { return &DigitNameModule{} }

// Name implements the stage.Module interface.
func (m *DigitNameModule) Name() string { return TypeDigitName }

// Apply implements the stage.Module interface.
func (m *DigitNameModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return partition(ctx, rows, record.ReasonDigitName, func(row record.Row) bool {
		return !containsDigit(row.FirstName) && !containsDigit(row.LastName)
	})
}

// containsDigit reports whether s contains a decimal digit.
func containsDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

// SpecialCharNameModule rejects rows where either name contains any of the
// disqualifying characters @ % $ # _.
type SpecialCharNameModule struct{}

// NewSpecialCharName creates a specialCharName filter stage.
func NewSpecialCharName() *SpecialCharNameModule { return &SpecialCharNameModule{} }

// Name implements the stage.Module interface.
func (m *SpecialCharNameModule) Name() string { return TypeSpecialCharName }

// Apply implements the stage.Module interface.
func (m *SpecialCharNameModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return partition(ctx, rows, record.ReasonSpecialCharName, func(row record.Row) bool {
		return !strings.ContainsAny(row.FirstName, specialChars) &&
			!strings.ContainsAny(row.LastName, specialChars)
	})
}

// ShortNameModule rejects rows where FirstName or LastName is a single
// character. Not part of the default chain; it runs only when a config lists
// it explicitly.
type ShortNameModule struct{}

// NewShortName creates a shortName filter stage.
func NewShortName() *ShortNameModule { return &ShortNameModule{} }

// Name implements the stage.Module interface.
func (m *ShortNameModule) Name() string { return TypeShortName }

// Apply implements the stage.Module interface.
func (m *ShortNameModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return partition(ctx, rows, record.ReasonShortName, func(row record.Row) bool {
		return len([]rune(row.FirstName)) > 1 && len([]rune(row.LastName)) > 1
	})
}

// Verify interface compliance at compile time
var (
	_ Module = (*MissingNameModule)(nil)
	_ Module = (*DigitNameModule)(nil)
	_ Module = (*SpecialCharNameModule)(nil)
	_ Module = (*ShortNameModule)(nil)
)
