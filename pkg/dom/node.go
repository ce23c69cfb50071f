package dom

import (
	"errors"
	"strings"
)

// NodeKind is the node type discriminator.
type NodeKind uint8

const (
	KindElement  NodeKind = iota // <div>, <input>, etc.
	KindText                     // Plain text node
	KindFragment                 // Grouping without wrapper
	KindComment                  // <!-- comment -->
	KindDoctype                  // <!DOCTYPE html>
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComment:
		return "Comment"
	case KindDoctype:
		return "Doctype"
	default:
		return "Unknown"
	}
}

// Attr is a single element attribute.
type Attr struct {
	Key   string
	Value string
}

// A creates an Attr.
func A(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// Event is delivered to listeners by Dispatch.
type Event struct {
	// Type is the event name ("input", "click", ...).
	Type string
	// Value is the control value for input events.
	Value string
	// Target is the node the event was dispatched on.
	Target *Node
}

// Listener handles an event.
type Listener func(ev Event) error

// Node is a node of the render tree.
type Node struct {
	Kind     NodeKind
	Tag      string  // Element tag name, lower case
	Attrs    []Attr  // Attributes in document order
	Children []*Node // Child nodes
	Parent   *Node   // nil for roots
	Text     string  // For KindText, KindComment and KindDoctype

	// ID identifies the node within a live session (see IDAllocator).
	ID string

	// value is the form control value once set through SetValue.
	value    string
	hasValue bool

	listeners map[string][]Listener
}

// NewElement creates an element node.
func NewElement(tag string, attrs []Attr, children ...*Node) *Node {
	n := &Node{Kind: KindElement, Tag: strings.ToLower(tag), Attrs: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewFragment creates a fragment holding children.
func NewFragment(children ...*Node) *Node {
	n := &Node{Kind: KindFragment}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool {
	return n != nil && n.Kind == KindElement
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Kind == KindText
}

// GetAttr returns the value of the named attribute.
func (n *Node) GetAttr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, replacing an existing value in place.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Key == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: name, Value: value})
}

// RemoveAttr removes the named attribute if present.
func (n *Node) RemoveAttr(name string) {
	for i, a := range n.Attrs {
		if a.Key == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// Attributes returns a copy of the attribute list.
func (n *Node) Attributes() []Attr {
	attrs := make([]Attr, len(n.Attrs))
	copy(attrs, n.Attrs)
	return attrs
}

// AppendChild appends c, detaching it from its previous parent.
func (n *Node) AppendChild(c *Node) {
	if c == nil {
		return
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	c.Parent = n
	n.Children = append(n.Children, c)
}

// RemoveChild detaches c from n. It is a no-op when c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	for i, existing := range n.Children {
		if existing == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.Parent = nil
			return
		}
	}
}

// ReplaceChildren removes every child and appends children.
func (n *Node) ReplaceChildren(children ...*Node) {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
	for _, c := range children {
		n.AppendChild(c)
	}
}

// DetachChildren moves every child of n into a new fragment and returns it.
func (n *Node) DetachChildren() *Node {
	frag := &Node{Kind: KindFragment}
	frag.Children = n.Children
	for _, c := range frag.Children {
		c.Parent = frag
	}
	n.Children = nil
	return frag
}

// AppendFragment moves the children of frag to the end of n.
func (n *Node) AppendFragment(frag *Node) {
	children := frag.Children
	frag.Children = nil
	for _, c := range children {
		c.Parent = n
	}
	n.Children = append(n.Children, children...)
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	n.Walk(func(d *Node) bool {
		if d.Kind == KindText {
			b.WriteString(d.Text)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces the text of a text node, or the children of an
// element with a single text node.
func (n *Node) SetTextContent(text string) {
	switch n.Kind {
	case KindText, KindComment:
		n.Text = text
	default:
		if text == "" {
			n.ReplaceChildren()
			return
		}
		n.ReplaceChildren(NewText(text))
	}
}

// Value returns the current form value: the value set through SetValue,
// else the value attribute (input) or the text content (textarea).
func (n *Node) Value() string {
	if n.hasValue {
		return n.value
	}
	if n.Tag == "textarea" {
		return n.TextContent()
	}
	v, _ := n.GetAttr("value")
	return v
}

// SetValue sets the form value of a control.
func (n *Node) SetValue(v string) {
	n.value = v
	n.hasValue = true
}

// AddEventListener registers l for the named event.
func (n *Node) AddEventListener(event string, l Listener) {
	if l == nil {
		return
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]Listener)
	}
	n.listeners[event] = append(n.listeners[event], l)
}

// Listeners returns how many listeners are registered for event.
func (n *Node) Listeners(event string) int {
	return len(n.listeners[event])
}

// Events returns the names of events with at least one listener.
func (n *Node) Events() []string {
	events := make([]string, 0, len(n.listeners))
	for e := range n.listeners {
		events = append(events, e)
	}
	return events
}

// Dispatch runs the listeners registered for ev.Type in registration order.
// Every listener runs; their errors are joined.
func (n *Node) Dispatch(ev Event) error {
	if ev.Target == nil {
		ev.Target = n
	}
	ls := n.listeners[ev.Type]
	if len(ls) == 0 {
		return nil
	}
	ls = append([]Listener(nil), ls...)

	var errs []error
	for _, l := range ls {
		if err := l(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Input simulates the user changing a control: the value is stored, then an
// "input" event is dispatched.
func (n *Node) Input(value string) error {
	n.SetValue(value)
	return n.Dispatch(Event{Type: "input", Value: value, Target: n})
}

// Click dispatches a "click" event.
func (n *Node) Click() error {
	return n.Dispatch(Event{Type: "click", Target: n})
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first node in document order matching pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(d *Node) bool {
		if found != nil {
			return false
		}
		if pred(d) {
			found = d
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node in document order matching pred.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(d *Node) bool {
		if pred(d) {
			out = append(out, d)
		}
		return true
	})
	return out
}

// ByTag returns every element with the given tag.
func (n *Node) ByTag(tag string) []*Node {
	tag = strings.ToLower(tag)
	return n.FindAll(func(d *Node) bool {
		return d.Kind == KindElement && d.Tag == tag
	})
}

// GetElementByID returns the element whose id attribute equals id.
func (n *Node) GetElementByID(id string) *Node {
	return n.Find(func(d *Node) bool {
		if d.Kind != KindElement {
			return false
		}
		v, ok := d.GetAttr("id")
		return ok && v == id
	})
}

// FindByNodeID returns the node whose live-session ID equals id.
func (n *Node) FindByNodeID(id string) *Node {
	if id == "" {
		return nil
	}
	return n.Find(func(d *Node) bool { return d.ID == id })
}

// Element returns n when it is an element, else its nearest element
// ancestor.
func (n *Node) Element() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == KindElement {
			return cur
		}
	}
	return nil
}
