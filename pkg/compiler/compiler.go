package compiler

import (
	"log/slog"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// Handler is an instance method bound to its instance.
type Handler func(ev dom.Event) error

// Scope is what a template is compiled against.
type Scope interface {
	// Observer returns the observed model.
	Observer() *reactive.Observer

	// Method returns the named method bound to the instance.
	Method(name string) (Handler, bool)
}

// Report summarizes a compilation.
type Report struct {
	// Watchers is the number of watchers created.
	Watchers int
	// Listeners is the number of event and input listeners registered.
	Listeners int
	// Interpolations is the number of text nodes holding markers.
	Interpolations int
	// Unknown lists stripped directive attributes that had no handler.
	Unknown []string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the compiler logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// Compiler binds templates to one Scope through one Surface.
type Compiler struct {
	scope   Scope
	surface Surface
	logger  *slog.Logger
	report  Report
}

// New creates a Compiler.
func New(scope Scope, surface Surface, opts ...Option) *Compiler {
	c := &Compiler{
		scope:   scope,
		surface: surface,
		logger:  slog.Default().With("component", "compiler"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles the children of root in place.
//
// The children are detached into a fragment for the duration of the walk
// and re-attached afterwards, also when compilation fails. The first
// binding error aborts the walk; bindings made before it stay live.
func (c *Compiler) Compile(root *dom.Node) (Report, error) {
	frag := root.DetachChildren()
	err := c.walk(frag)
	root.AppendFragment(frag)

	c.logger.Debug("compiled",
		"watchers", c.report.Watchers,
		"listeners", c.report.Listeners,
		"unknown", len(c.report.Unknown))
	return c.report, err
}

// walk compiles every child of parent.
func (c *Compiler) walk(parent *dom.Node) error {
	children := append([]*dom.Node(nil), parent.Children...)
	for _, n := range children {
		if err := c.node(n); err != nil {
			return err
		}
	}
	return nil
}

// node compiles n's subtree first, then n itself.
func (c *Compiler) node(n *dom.Node) error {
	if len(n.Children) > 0 {
		if err := c.walk(n); err != nil {
			return err
		}
	}
	switch n.Kind {
	case dom.KindElement:
		return c.attributes(n)
	case dom.KindText:
		if HasInterpolation(n.Text) {
			return c.interpolation(n)
		}
	}
	return nil
}

// attributes dispatches every directive attribute of el and strips it.
func (c *Compiler) attributes(el *dom.Node) error {
	for _, a := range el.Attributes() {
		d, ok := ParseDirective(a.Key)
		if !ok {
			continue
		}

		var err error
		switch d.Kind {
		case KindText:
			err = c.text(el, a.Value)
		case KindHTML:
			err = c.html(el, a.Value)
		case KindModel:
			err = c.model(el, a.Value)
		case KindOn:
			err = c.on(el, d.Arg, a.Value)
		case KindBind:
			err = c.bind(el, d.Arg, a.Value)
		case KindUnknown:
			c.report.Unknown = append(c.report.Unknown, d.Name)
			c.logger.Debug("unknown directive ignored", "attr", d.Name, "tag", el.Tag)
		}
		el.RemoveAttr(a.Key)

		if err != nil {
			return &DirectiveError{Directive: d.Name, Expr: a.Value, Tag: el.Tag, Err: err}
		}
	}
	return nil
}
