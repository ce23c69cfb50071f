package compiler

import (
	"errors"
	"fmt"
)

// ErrMissingHandler is returned when an event directive names a method the
// instance does not have.
var ErrMissingHandler = errors.New("vbind: missing event handler")

// DirectiveError reports which binding failed to compile.
type DirectiveError struct {
	// Directive is the attribute name, or "{{}}" for text interpolation.
	Directive string
	// Expr is the bound expression or method name.
	Expr string
	// Tag is the element tag, or "#text".
	Tag string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	return fmt.Sprintf("compile <%s %s=%q>: %v", e.Tag, e.Directive, e.Expr, e.Err)
}

// Unwrap returns the underlying error.
func (e *DirectiveError) Unwrap() error {
	return e.Err
}
