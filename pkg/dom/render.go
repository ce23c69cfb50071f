package dom

import (
	"io"
	"strings"
)

// DefaultIDAttr is the attribute carrying node IDs when RenderOptions.IDs
// is set.
const DefaultIDAttr = "data-vb"

// RenderOptions configures HTML output.
type RenderOptions struct {
	// IDs writes each element's ID as an attribute so a client can address
	// it. Elements without an ID get no attribute.
	IDs bool

	// IDAttr is the attribute name used for IDs. Defaults to DefaultIDAttr.
	IDAttr string
}

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// rawTextElements hold text that must not be escaped.
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

// Render writes n as HTML to w.
func Render(w io.Writer, n *Node, opts RenderOptions) error {
	if opts.IDAttr == "" {
		opts.IDAttr = DefaultIDAttr
	}
	r := &renderer{w: w, opts: opts}
	r.node(n)
	return r.err
}

// OuterHTML returns n rendered as HTML.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	_ = Render(&b, n, RenderOptions{})
	return b.String()
}

// InnerHTML returns the children of n rendered as HTML.
func (n *Node) InnerHTML() string {
	return n.innerHTML(RenderOptions{})
}

func (n *Node) innerHTML(opts RenderOptions) string {
	if opts.IDAttr == "" {
		opts.IDAttr = DefaultIDAttr
	}
	var b strings.Builder
	r := &renderer{w: &b, opts: opts}
	r.children(n)
	return b.String()
}

// renderer writes HTML and keeps the first write error.
type renderer struct {
	w    io.Writer
	opts RenderOptions
	err  error
}

func (r *renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

// node dispatches rendering based on node kind.
func (r *renderer) node(n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindElement:
		r.element(n)
	case KindText:
		if p := n.Parent; p != nil && rawTextElements[p.Tag] {
			r.write(n.Text)
			return
		}
		r.write(escapeHTML(n.Text))
	case KindFragment:
		r.children(n)
	case KindComment:
		r.write("<!--" + n.Text + "-->")
	case KindDoctype:
		r.write("<!DOCTYPE " + n.Text + ">")
	}
}

func (r *renderer) children(n *Node) {
	for _, c := range n.Children {
		r.node(c)
	}
}

// element renders an element with its attributes and children.
func (r *renderer) element(n *Node) {
	r.write("<" + n.Tag)

	wroteValue := false
	for _, a := range n.Attrs {
		val := a.Value
		if a.Key == "value" && n.hasValue && n.Tag == "input" {
			val = n.value
			wroteValue = true
		}
		r.attr(a.Key, val)
	}
	if n.hasValue && n.Tag == "input" && !wroteValue {
		r.attr("value", n.value)
	}
	if r.opts.IDs && n.ID != "" {
		r.attr(r.opts.IDAttr, n.ID)
	}
	r.write(">")

	if voidElements[n.Tag] {
		return
	}
	if n.hasValue && n.Tag == "textarea" {
		r.write(escapeHTML(n.value))
	} else {
		r.children(n)
	}
	r.write("</" + n.Tag + ">")
}

func (r *renderer) attr(key, val string) {
	if val == "" {
		r.write(" " + key)
		return
	}
	r.write(" " + key + `="` + escapeAttr(val) + `"`)
}
