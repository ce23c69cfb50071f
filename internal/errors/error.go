package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/vbind/pkg/compiler"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactive Category = "reactive"
	CategoryBinding  Category = "binding"
	CategoryTemplate Category = "template"
	CategoryConfig   Category = "config"
	CategorySource   Category = "source"
	CategoryServer   Category = "server"
	CategoryCLI      Category = "cli"
)

// VbindError is a coded error with an explanation and a fix suggestion.
type VbindError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, usually the underlying error text.
	Detail string

	// Source names the template, data or config file involved.
	Source string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VbindError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VbindError) Unwrap() error {
	return e.Wrapped
}

// WithSource records the file the error relates to.
func (e *VbindError) WithSource(name string) *VbindError {
	e.Source = name
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VbindError) WithSuggestion(s string) *VbindError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VbindError) WithDetail(d string) *VbindError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *VbindError) Wrap(err error) *VbindError {
	e.Wrapped = err
	return e
}

// New creates a VbindError from a registered error code.
func New(code string) *VbindError {
	template, ok := registry[code]
	if !ok {
		return &VbindError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VbindError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new VbindError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *VbindError {
	return &VbindError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code. A VbindError anywhere in err's chain is
// returned as-is.
func FromError(err error, code string) *VbindError {
	if err == nil {
		return nil
	}
	var ve *VbindError
	if stderrors.As(err, &ve) {
		return ve
	}
	return New(code).Wrap(err)
}

// Classify maps an error returned by the vbind packages onto its code.
// Errors it does not recognize are reported under the CLI category
// without a code.
func Classify(err error) *VbindError {
	if err == nil {
		return nil
	}
	var ve *VbindError
	if stderrors.As(err, &ve) {
		return ve
	}

	var classified *VbindError
	switch {
	case stderrors.Is(err, reactive.ErrCascadeLimit):
		classified = New("E003")
	case stderrors.Is(err, reactive.ErrNestedTracking):
		classified = New("E002")
	case stderrors.Is(err, compiler.ErrMissingHandler):
		classified = New("E020")
	case stderrors.Is(err, reactive.ErrPathResolution):
		classified = New("E001")
	default:
		var de *compiler.DirectiveError
		if stderrors.As(err, &de) {
			classified = New("E021")
		} else {
			return &VbindError{Category: CategoryCLI, Message: err.Error(), Wrapped: err}
		}
	}
	classified.Detail = err.Error()
	return classified.Wrap(err)
}
