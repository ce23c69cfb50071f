package reactive

import (
	"errors"
	"fmt"
)

// ErrPathResolution is returned when a path expression indexes into a value
// that is not an object (or an in-range slice element).
var ErrPathResolution = errors.New("vbind: path resolution failed")

// ErrNestedTracking is returned when a Watcher is created while another
// Watcher is still evaluating on the same Observer.
var ErrNestedTracking = errors.New("vbind: nested tracked evaluation")

// ErrCascadeLimit is returned when a write is attempted from inside a
// notification cascade that is already MaxCascadeDepth writes deep.
// The rejected write is not stored.
var ErrCascadeLimit = errors.New("vbind: notification cascade limit exceeded")

// PathError describes a failed path resolution.
type PathError struct {
	// Path is the full expression being resolved.
	Path string
	// Segment is the segment that could not be read.
	Segment string
	// Index is the position of Segment within the path.
	Index int
	// Found is the value Segment was applied to.
	Found any
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("vbind: cannot read %q of %s (path %q, segment %d)",
		e.Segment, describe(e.Found), e.Path, e.Index)
}

// Unwrap returns ErrPathResolution so callers can use errors.Is.
func (e *PathError) Unwrap() error {
	return ErrPathResolution
}

// describe names the kind of value a path segment hit.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case *Object:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
