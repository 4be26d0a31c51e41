// Package stage provides implementations for cleaning stage modules.
// The nameCase stage normalizes the first and last name fields.
package stage

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/regscrub/runtime/internal/record"
)

// TypeNameCase is the registered type name of the nameCase stage.
const TypeNameCase = "nameCase"

// NameCaseModule title-cases FirstName and LastName and canonicalizes a
// multi-token FirstName: the first token stays as the first name, overflow
// tokens move to the front of LastName joined with a single space.
//
// The whole normalization is idempotent: applying it twice yields the same
// result as once.
type NameCaseModule struct {
	caser cases.Caser
}

// NewNameCase creates a nameCase stage.
func NewNameCase() *NameCaseModule {
	return &NameCaseModule{caser: cases.Title(language.Und)}
}

// Name implements the stage.Module interface.
func (m *NameCaseModule) Name() string { return TypeNameCase }

// Apply implements the stage.Module interface.
func (m *NameCaseModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return transform(ctx, rows, func(row record.Row) record.Row {
		row.FirstName, row.LastName = m.normalize(row.FirstName, row.LastName)
		return row
	})
}

// normalize applies title-casing and the multi-token first-name split.
func (m *NameCaseModule) normalize(first, last string) (string, string) {
	first = m.caser.String(strings.TrimSpace(first))
	last = m.caser.String(strings.TrimSpace(last))

	tokens := strings.Fields(first)
	if len(tokens) > 1 {
		first = tokens[0]
		overflow := strings.Join(tokens[1:], " ")
		if last == "" {
			last = overflow
		} else {
			last = overflow + " " + last
		}
	}

	return first, last
}

// Verify interface compliance at compile time
var _ Module = (*NameCaseModule)(nil)
