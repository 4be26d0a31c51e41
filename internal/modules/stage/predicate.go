// Package stage provides implementations for cleaning stage modules.
// The predicate stage rejects rows failing a configurable expression.
package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"

	"github.com/regscrub/runtime/internal/logger"
	"github.com/regscrub/runtime/internal/record"
)

// TypePredicate is the registered type name of the predicate stage.
const TypePredicate = "predicate"

// Common errors for the predicate stage
var (
	// ErrEmptyExpression is returned when no expression is configured
	ErrEmptyExpression = errors.New("expression is required for predicate stage")
	// ErrInvalidExpression is returned when the expression syntax is invalid
	ErrInvalidExpression = errors.New("invalid expression syntax")
)

// PredicateConfig represents the configuration for a predicate stage.
type PredicateConfig struct {
	// Expression is the boolean expression evaluated per row (required).
	// Rows for which it is false are rejected with reason "predicate".
	Expression string `json:"expression"`
}

// PredicateModule evaluates a compiled expression against a field map view
// of each row. The expression sees the required columns by name (including
// the already-cleared BrandCode/Lang when placed after prune), the RegDate
// and RegTime split fields, and passthrough columns.
//
// Evaluation errors reject the row rather than failing the run: the
// expression cannot mutate rows, so a failed evaluation is a per-row data
// signal like any other predicate miss.
type PredicateModule struct {
	expression string
	program    *vm.Program
}

// ParsePredicateConfig parses a raw configuration map into PredicateConfig.
func ParsePredicateConfig(cfg map[string]interface{}) (PredicateConfig, error) {
	config := PredicateConfig{Expression: cast.ToString(cfg["expression"])}
	if config.Expression == "" {
		return config, ErrEmptyExpression
	}
	return config, nil
}

// NewPredicateFromConfig creates a predicate stage, compiling the expression.
// AllowUndefinedVariables handles rows lacking a referenced passthrough
// column gracefully.
func NewPredicateFromConfig(config PredicateConfig) (*PredicateModule, error) {
	if config.Expression == "" {
		return nil, ErrEmptyExpression
	}

	program, err := expr.Compile(config.Expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	logger.Debug("predicate stage initialized",
		slog.String("expression", config.Expression),
	)

	return &PredicateModule{
		expression: config.Expression,
		program:    program,
	}, nil
}

// Name implements the stage.Module interface.
func (m *PredicateModule) Name() string { return TypePredicate }

// Apply implements the stage.Module interface.
func (m *PredicateModule) Apply(ctx context.Context, rows []record.Row) ([]record.Row, []record.Rejection, error) {
	return partition(ctx, rows, record.ReasonPredicate, func(row record.Row) bool {
		output, err := expr.Run(m.program, row.Fields())
		if err != nil {
			logger.Warn("predicate evaluation failed; rejecting row",
				slog.Int("line", row.Line),
				slog.String("expression", m.expression),
				slog.String("error", err.Error()),
			)
			return false
		}
		result, ok := output.(bool)
		return ok && result
	})
}

// Verify interface compliance at compile time
var _ Module = (*PredicateModule)(nil)
