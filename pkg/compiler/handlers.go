package compiler

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// watch creates a watcher on expr whose update pushes the freshly resolved
// value, and performs the initial push.
func (c *Compiler) watch(expr string, push func(value string)) error {
	expr = strings.TrimSpace(expr)
	obs := c.scope.Observer()
	update := func() error {
		v, err := obs.Resolve(expr)
		if err != nil {
			return err
		}
		push(reactive.Stringify(v))
		return nil
	}
	if _, err := obs.Watch(expr, update); err != nil {
		return err
	}
	c.report.Watchers++
	return update()
}

// resolveString resolves expr without creating a watcher.
func (c *Compiler) resolveString(expr string) (string, error) {
	v, err := c.scope.Observer().Resolve(expr)
	if err != nil {
		return "", err
	}
	return reactive.Stringify(v), nil
}

// text handles v-text. A value holding markers is interpolated once and not
// tracked.
func (c *Compiler) text(el *dom.Node, expr string) error {
	if HasInterpolation(expr) {
		s, err := Interpolate(expr, c.resolveString)
		if err != nil {
			return err
		}
		c.surface.SetText(el, s)
		return nil
	}
	return c.watch(expr, func(v string) { c.surface.SetText(el, v) })
}

// html handles v-html.
func (c *Compiler) html(el *dom.Node, expr string) error {
	return c.watch(expr, func(v string) { c.surface.SetMarkup(el, v) })
}

// model handles v-model: model to control through a watcher, control to
// model through the input listener.
func (c *Compiler) model(el *dom.Node, expr string) error {
	if err := c.watch(expr, func(v string) { c.surface.SetFormValue(el, v) }); err != nil {
		return err
	}
	path := strings.TrimSpace(expr)
	obs := c.scope.Observer()
	c.surface.OnInputChanged(el, func(value string) error {
		return obs.Assign(path, value)
	})
	c.report.Listeners++
	return nil
}

// on handles v-on:<event> and @<event>.
func (c *Compiler) on(el *dom.Node, event, name string) error {
	name = strings.TrimSpace(name)
	h, ok := c.scope.Method(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingHandler, name)
	}
	c.surface.OnEvent(el, event, func(ev dom.Event) error {
		return h(ev)
	})
	c.report.Listeners++
	return nil
}

// bind handles v-bind:<attr>.
func (c *Compiler) bind(el *dom.Node, attr, expr string) error {
	return c.watch(expr, func(v string) { c.surface.SetAttribute(el, attr, v) })
}

// interpolation binds a text node holding markers. Each marker gets a
// watcher; any of them re-renders the whole node from its original text.
// When a marker fails, the watchers of the markers before it are stopped.
func (c *Compiler) interpolation(n *dom.Node) error {
	tmpl := n.Text
	obs := c.scope.Observer()
	render := func() error {
		s, err := Interpolate(tmpl, c.resolveString)
		if err != nil {
			return err
		}
		c.surface.SetText(n, s)
		return nil
	}

	var watchers []*reactive.Watcher
	stop := func() {
		for _, w := range watchers {
			w.Stop()
		}
	}
	for _, expr := range Expressions(tmpl) {
		w, err := obs.Watch(expr, render)
		if err != nil {
			stop()
			return &DirectiveError{Directive: "{{}}", Expr: expr, Tag: "#text", Err: err}
		}
		watchers = append(watchers, w)
	}

	if err := render(); err != nil {
		stop()
		return &DirectiveError{Directive: "{{}}", Expr: tmpl, Tag: "#text", Err: err}
	}
	c.report.Watchers += len(watchers)
	c.report.Interpolations++
	return nil
}
