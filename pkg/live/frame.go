package live

import (
	"errors"
	"fmt"
)

// Frame types sent by the client.
const (
	FrameInput = "input" // A control's value changed
	FrameEvent = "event" // Any other DOM event
)

// Errors returned while handling frames.
var (
	ErrUnknownSession = errors.New("live: unknown session")
	ErrUnknownNode    = errors.New("live: unknown node")
	ErrUnknownFrame   = errors.New("live: unknown frame type")
)

// Frame is one client message.
type Frame struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Event string `json:"event,omitempty"`
	Value string `json:"value,omitempty"`
}

// eventType is the DOM event a frame dispatches.
func (f Frame) eventType() (string, error) {
	switch f.Type {
	case FrameInput:
		return "input", nil
	case FrameEvent:
		if f.Event == "" {
			return "", fmt.Errorf("%w: event frame without event name", ErrUnknownFrame)
		}
		return f.Event, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
	}
}
