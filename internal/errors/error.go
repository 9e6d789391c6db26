package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryPattern      Category = "pattern"
	CategoryTable        Category = "table"
	CategoryNavigation   Category = "navigation"
	CategoryRegistration Category = "registration"
	CategoryConfig       Category = "config"
	CategoryCLI          Category = "cli"
)

// OutletError is a structured error with a stable code, suggestions, and
// documentation links. Library packages return plain sentinel errors; the
// CLI and config layers wrap them in OutletError for user-facing output.
type OutletError struct {
	// Code is a unique error identifier (e.g., "N001").
	Code string

	// Category is the error type (pattern, table, navigation, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is input or code showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *OutletError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *OutletError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *OutletError) WithSuggestion(s string) *OutletError {
	e.Suggestion = s
	return e
}

// WithExample adds an example to the error.
func (e *OutletError) WithExample(ex string) *OutletError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *OutletError) WithDetail(d string) *OutletError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *OutletError) Wrap(err error) *OutletError {
	e.Wrapped = err
	return e
}

// New creates an OutletError from a registered error code.
func New(code string) *OutletError {
	template, ok := registry[code]
	if !ok {
		return &OutletError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &OutletError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new OutletError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *OutletError {
	return &OutletError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an OutletError.
func FromError(err error, code string) *OutletError {
	if err == nil {
		return nil
	}
	if oe, ok := err.(*OutletError); ok {
		return oe
	}
	return New(code).Wrap(err)
}
