package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// testScope is a minimal Scope over an observer and a method table.
type testScope struct {
	obs     *reactive.Observer
	methods map[string]Handler
}

func (s *testScope) Observer() *reactive.Observer { return s.obs }

func (s *testScope) Method(name string) (Handler, bool) {
	h, ok := s.methods[name]
	return h, ok
}

// compile parses src into a root <div>, compiles it against data and
// returns the root.
func compile(t *testing.T, src string, data map[string]any, methods map[string]Handler) (*dom.Node, *testScope, Report) {
	t.Helper()
	frag, err := dom.ParseString(src)
	require.NoError(t, err)
	root := dom.NewElement("div", nil)
	root.AppendFragment(frag)

	scope := &testScope{obs: reactive.NewObserver(data), methods: methods}
	report, err := New(scope, &dom.Updater{}).Compile(root)
	require.NoError(t, err)
	return root, scope, report
}

func TestInterpolationRecomputesWholeNode(t *testing.T) {
	root, scope, report := compile(t, `<p>{{a}} and {{ b }}</p>`, map[string]any{"a": 1, "b": 2}, nil)
	assert.Equal(t, `<div><p>1 and 2</p></div>`, root.OuterHTML())
	assert.Equal(t, 2, report.Watchers)
	assert.Equal(t, 1, report.Interpolations)

	require.NoError(t, scope.obs.Assign("a", 5))
	assert.Equal(t, `<div><p>5 and 2</p></div>`, root.OuterHTML())

	require.NoError(t, scope.obs.Assign("b", "two"))
	assert.Equal(t, `<div><p>5 and two</p></div>`, root.OuterHTML())
}

func TestModelTwoWayBinding(t *testing.T) {
	root, scope, _ := compile(t, `<input v-model="form.name">`,
		map[string]any{"form": map[string]any{"name": "a"}}, nil)

	input := root.ByTag("input")[0]
	assert.Equal(t, "a", input.Value())
	_, ok := input.GetAttr("v-model")
	assert.False(t, ok)

	require.NoError(t, input.Input("b"))
	v, err := scope.obs.Resolve("form.name")
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	require.NoError(t, scope.obs.Assign("form.name", "c"))
	assert.Equal(t, "c", input.Value())
	assert.Equal(t, `<div><input value="c"></div>`, root.OuterHTML())
}

func TestUnknownDirectiveIsStripped(t *testing.T) {
	root, _, report := compile(t, `<span v-foo="x" v-on="y" title="keep">t</span>`, nil, nil)
	assert.Equal(t, `<div><span title="keep">t</span></div>`, root.OuterHTML())
	assert.Equal(t, []string{"v-foo", "v-on"}, report.Unknown)
	assert.Zero(t, report.Watchers)
}

func TestMissingMethod(t *testing.T) {
	frag, err := dom.ParseString(`<button v-on:click="doesNotExist">x</button>`)
	require.NoError(t, err)
	root := dom.NewElement("div", nil)
	root.AppendFragment(frag)

	scope := &testScope{obs: reactive.NewObserver(nil), methods: map[string]Handler{}}
	_, err = New(scope, &dom.Updater{}).Compile(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingHandler))

	var de *DirectiveError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "v-on:click", de.Directive)
	assert.Equal(t, "doesNotExist", de.Expr)
	assert.Equal(t, "button", de.Tag)

	// The tree is re-attached even though compilation failed.
	assert.Len(t, root.Children, 1)
}

func TestEventBinding(t *testing.T) {
	var events []string
	methods := map[string]Handler{
		"save": func(ev dom.Event) error {
			events = append(events, "save:"+ev.Type)
			return nil
		},
	}
	root, _, report := compile(t, `<button v-on:click="save" @dblclick="save">go</button>`, nil, methods)

	btn := root.ByTag("button")[0]
	assert.Empty(t, btn.Attrs)
	assert.Equal(t, 2, report.Listeners)

	require.NoError(t, btn.Click())
	require.NoError(t, btn.Dispatch(dom.Event{Type: "dblclick"}))
	assert.Equal(t, []string{"save:click", "save:dblclick"}, events)
}

func TestTextDirective(t *testing.T) {
	root, scope, _ := compile(t, `<p v-text="msg">placeholder</p><b v-text="static {{msg}}"></b>`,
		map[string]any{"msg": "hi"}, nil)
	assert.Equal(t, `<div><p>hi</p><b>static hi</b></div>`, root.OuterHTML())

	require.NoError(t, scope.obs.Assign("msg", "bye"))
	// v-text re-resolves on update; the interpolated form is static.
	assert.Equal(t, `<div><p>bye</p><b>static hi</b></div>`, root.OuterHTML())
}

func TestHTMLDirective(t *testing.T) {
	root, scope, _ := compile(t, `<div v-html="body"></div>`, map[string]any{"body": "<b>x</b>"}, nil)
	assert.Equal(t, `<div><div><b>x</b></div></div>`, root.OuterHTML())

	require.NoError(t, scope.obs.Assign("body", "<i>y</i>"))
	assert.Equal(t, `<div><div><i>y</i></div></div>`, root.OuterHTML())
}

func TestBindDirective(t *testing.T) {
	root, scope, _ := compile(t, `<a v-bind:href="link.url">x</a>`,
		map[string]any{"link": map[string]any{"url": "/a"}}, nil)
	assert.Equal(t, `<div><a href="/a">x</a></div>`, root.OuterHTML())

	require.NoError(t, scope.obs.Assign("link", map[string]any{"url": "/b"}))
	assert.Equal(t, `<div><a href="/b">x</a></div>`, root.OuterHTML())
}

func TestNestedElementsCompileChildrenFirst(t *testing.T) {
	root, scope, report := compile(t,
		`<section v-bind:title="t"><ul><li>{{ items.0 }}</li><li v-text="t"></li></ul></section>`,
		map[string]any{"t": "T", "items": []any{"first"}}, nil)
	assert.Equal(t, `<div><section title="T"><ul><li>first</li><li>T</li></ul></section></div>`, root.OuterHTML())
	assert.Equal(t, 3, report.Watchers)

	require.NoError(t, scope.obs.Assign("t", "U"))
	assert.Equal(t, `<div><section title="U"><ul><li>first</li><li>U</li></ul></section></div>`, root.OuterHTML())
}

func TestPathErrorAtCompile(t *testing.T) {
	frag, err := dom.ParseString(`<p>{{ missing.deep }}</p>`)
	require.NoError(t, err)
	root := dom.NewElement("div", nil)
	root.AppendFragment(frag)

	scope := &testScope{obs: reactive.NewObserver(nil)}
	_, err = New(scope, &dom.Updater{}).Compile(root)
	require.ErrorIs(t, err, reactive.ErrPathResolution)

	var de *DirectiveError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "#text", de.Tag)
}

func TestFailedInterpolationStopsEarlierMarkers(t *testing.T) {
	frag, err := dom.ParseString(`<p>{{ a }} {{ x.y }}</p>`)
	require.NoError(t, err)
	root := dom.NewElement("div", nil)
	root.AppendFragment(frag)

	scope := &testScope{obs: reactive.NewObserver(map[string]any{"a": 1})}
	report, err := New(scope, &dom.Updater{}).Compile(root)
	require.ErrorIs(t, err, reactive.ErrPathResolution)
	assert.Zero(t, report.Watchers)
	assert.Zero(t, report.Interpolations)

	assert.Zero(t, scope.obs.Root().Dep("a").Len())
	require.NoError(t, scope.obs.Assign("a", 2))
}

// orderSurface records surface calls.
type orderSurface struct {
	dom.Updater
	calls []string
}

func (s *orderSurface) SetText(n *dom.Node, value string) {
	s.calls = append(s.calls, "text:"+value)
	s.Updater.SetText(n, value)
}

func TestBindingsNotifyInRegistrationOrder(t *testing.T) {
	frag, err := dom.ParseString(`<p v-text="v"></p><span>{{ v }}!</span>`)
	require.NoError(t, err)
	root := dom.NewElement("div", nil)
	root.AppendFragment(frag)

	scope := &testScope{obs: reactive.NewObserver(map[string]any{"v": "1"})}
	surface := &orderSurface{}
	_, err = New(scope, surface).Compile(root)
	require.NoError(t, err)

	surface.calls = nil
	require.NoError(t, scope.obs.Assign("v", "2"))
	assert.Equal(t, []string{"text:2", "text:2!"}, surface.calls)
}
