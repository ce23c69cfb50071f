package dom

// PatchOp names a render-surface change.
type PatchOp string

const (
	OpText  PatchOp = "text"  // Replace the text content of an element
	OpHTML  PatchOp = "html"  // Replace the inner markup of an element
	OpValue PatchOp = "value" // Set a form control value
	OpAttr  PatchOp = "attr"  // Set an attribute
)

// Patch describes one change made through an Updater, addressed by node ID.
type Patch struct {
	Op    PatchOp `json:"op"`
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Value string  `json:"value"`
}

// Updater applies render-surface operations to a tree.
//
// When Sink is set, each operation also emits a Patch addressed to the
// affected element's ID; elements without an ID emit nothing. When IDs is
// set, elements created by SetMarkup receive IDs from it.
type Updater struct {
	Sink func(Patch)
	IDs  *IDAllocator
}

// SetText replaces the text of n. For a text node the patch re-sends the
// markup of its parent element, since text nodes are not addressable.
func (u *Updater) SetText(n *Node, value string) {
	n.SetTextContent(value)
	if n.Kind == KindText {
		if p := n.Parent.Element(); p != nil {
			u.emit(Patch{Op: OpHTML, ID: p.ID, Value: p.innerHTML(u.renderOpts())})
		}
		return
	}
	u.emit(Patch{Op: OpText, ID: n.ID, Value: value})
}

// SetMarkup replaces the children of n with parsed markup. Markup that
// fails to parse is shown as text.
func (u *Updater) SetMarkup(n *Node, markup string) {
	if err := n.SetInnerHTML(markup); err != nil {
		n.SetTextContent(markup)
	}
	if u.IDs != nil {
		u.IDs.Assign(n)
	}
	u.emit(Patch{Op: OpHTML, ID: n.ID, Value: n.innerHTML(u.renderOpts())})
}

// SetFormValue sets the value of a form control.
func (u *Updater) SetFormValue(n *Node, value string) {
	n.SetValue(value)
	u.emit(Patch{Op: OpValue, ID: n.ID, Value: value})
}

// SetAttribute sets the named attribute.
func (u *Updater) SetAttribute(n *Node, name, value string) {
	n.SetAttr(name, value)
	u.emit(Patch{Op: OpAttr, ID: n.ID, Name: name, Value: value})
}

// OnInputChanged calls handler with the control's value on every "input"
// event.
func (u *Updater) OnInputChanged(n *Node, handler func(value string) error) {
	n.AddEventListener("input", func(ev Event) error {
		return handler(n.Value())
	})
}

// OnEvent registers handler for the named event.
func (u *Updater) OnEvent(n *Node, event string, handler func(ev Event) error) {
	n.AddEventListener(event, Listener(handler))
}

func (u *Updater) emit(p Patch) {
	if u.Sink == nil || p.ID == "" {
		return
	}
	u.Sink(p)
}

func (u *Updater) renderOpts() RenderOptions {
	return RenderOptions{IDs: u.IDs != nil}
}
