package compiler

import "github.com/vango-dev/vbind/pkg/dom"

// Surface is the render surface bindings write into. Implementations must
// accept every node of the tree being compiled.
type Surface interface {
	SetText(n *dom.Node, value string)
	SetMarkup(n *dom.Node, markup string)
	SetFormValue(n *dom.Node, value string)
	SetAttribute(n *dom.Node, name, value string)

	// OnInputChanged registers handler to receive the control's value each
	// time the user changes it.
	OnInputChanged(n *dom.Node, handler func(value string) error)

	// OnEvent registers handler for the named event.
	OnEvent(n *dom.Node, event string, handler func(ev dom.Event) error)
}

var _ Surface = (*dom.Updater)(nil)
