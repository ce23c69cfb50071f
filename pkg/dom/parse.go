package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses an HTML fragment as if it were the content of <body> and
// returns a fragment node holding the top-level nodes.
func Parse(r io.Reader) (*Node, error) {
	nodes, err := html.ParseFragment(r, contextNode("body"))
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	frag := NewFragment()
	for _, hn := range nodes {
		if c := convert(hn); c != nil {
			frag.AppendChild(c)
		}
	}
	return frag, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseDocument parses a complete HTML document. The returned fragment
// holds the doctype (if any) and the <html> element.
func ParseDocument(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	frag := NewFragment()
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if n := convert(c); n != nil {
			frag.AppendChild(n)
		}
	}
	return frag, nil
}

// SetInnerHTML replaces the children of n with the parsed markup. The
// markup is parsed in the context of n's tag.
func (n *Node) SetInnerHTML(markup string) error {
	tag := "body"
	if n.Kind == KindElement {
		tag = n.Tag
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), contextNode(tag))
	if err != nil {
		return fmt.Errorf("dom: parse markup: %w", err)
	}
	children := make([]*Node, 0, len(nodes))
	for _, hn := range nodes {
		if c := convert(hn); c != nil {
			children = append(children, c)
		}
	}
	n.ReplaceChildren(children...)
	return nil
}

// contextNode builds the context element for html.ParseFragment.
func contextNode(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// convert turns an x/net/html node into a Node. Unsupported node types
// yield nil.
func convert(hn *html.Node) *Node {
	switch hn.Type {
	case html.ElementNode:
		n := &Node{Kind: KindElement, Tag: hn.Data}
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			n.Attrs = append(n.Attrs, Attr{Key: key, Value: a.Val})
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if cn := convert(c); cn != nil {
				n.AppendChild(cn)
			}
		}
		return n
	case html.TextNode:
		return NewText(hn.Data)
	case html.CommentNode:
		return &Node{Kind: KindComment, Text: hn.Data}
	case html.DoctypeNode:
		return &Node{Kind: KindDoctype, Text: hn.Data}
	default:
		return nil
	}
}
