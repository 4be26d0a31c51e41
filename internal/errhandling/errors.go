// Package errhandling provides error types and classification for the
// regscrub runtime.
//
// Errors fall into two behavioral classes. Fatal errors (structural, io,
// config, internal) abort the run before any output file is written. Data
// errors never surface as faults at all: a malformed date or a non-numeric
// phone is a classification signal handled by the stage predicates, so
// nothing in this package is retryable and there is no retry machinery.
package errhandling

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryStructural represents dataset shape violations: a required
	// column missing from the input header or a query result. Fatal.
	CategoryStructural ErrorCategory = "structural"

	// CategoryIO represents file and database access failures. Fatal.
	CategoryIO ErrorCategory = "io"

	// CategoryConfig represents invalid pipeline configuration. Fatal.
	CategoryConfig ErrorCategory = "config"

	// CategoryData represents per-row data problems. Data errors are
	// classification signals consumed by stages, never run faults.
	CategoryData ErrorCategory = "data"

	// CategoryInternal represents invariant violations inside the runtime,
	// such as a broken row-conservation check. Fatal.
	CategoryInternal ErrorCategory = "internal"

	// CategoryUnknown represents unclassified errors. Treated as fatal:
	// a single-pass batch run has nothing safe to continue with.
	CategoryUnknown ErrorCategory = "unknown"
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// NewStructural creates a fatal structural error.
func NewStructural(format string, args ...interface{}) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryStructural,
		Message:  fmt.Sprintf(format, args...),
	}
}

// NewInternal creates a fatal internal error.
func NewInternal(format string, args ...interface{}) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WrapIO wraps an I/O failure with its category.
func WrapIO(err error, context string) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryIO,
		Message:     fmt.Sprintf("%s: %v", context, err),
		OriginalErr: err,
	}
}

// WrapConfig wraps a configuration failure with its category.
func WrapConfig(err error, context string) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryConfig,
		Message:     fmt.Sprintf("%s: %v", context, err),
		OriginalErr: err,
	}
}

// ClassifyError determines the category of an arbitrary error.
// Already-classified errors keep their category; filesystem errors map to
// io; everything else is unknown.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &ClassifiedError{
			Category:    CategoryIO,
			Message:     err.Error(),
			OriginalErr: err,
		}
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Message:     err.Error(),
		OriginalErr: err,
	}
}

// IsFatal reports whether an error must abort the run. Every category
// except data is fatal: data errors are consumed by stage predicates and
// never reach the run boundary.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyError(err).Category != CategoryData
}
