// Package vbind binds a plain data model to a template tree.
//
// Usage:
//
//	root, _ := dom.ParseString(`<p>{{ greeting }}</p><input v-model="greeting">`)
//	vm, err := vbind.New(vbind.Options{
//	    El:   root,
//	    Data: map[string]any{"greeting": "hello"},
//	    Methods: map[string]vbind.Method{
//	        "reset": func(vm *vbind.Instance, _ dom.Event) error {
//	            return vm.Set("greeting", "hello")
//	        },
//	    },
//	})
//
// Every write through the Instance (or through a bound input) re-renders
// exactly the bindings that read the written property.
package vbind

import (
	"errors"
	"log/slog"
	"time"

	"github.com/vango-dev/vbind/pkg/compiler"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/metrics"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// ErrNoRenderTarget is returned by New when Options.El is nil.
var ErrNoRenderTarget = errors.New("vbind: no render target")

// Method is an instance method. It runs with the instance it was
// declared on.
type Method func(vm *Instance, ev dom.Event) error

// =============================================================================
// Options
// =============================================================================

// Options configures an Instance.
type Options struct {
	// El is the render target. Its children are compiled in place.
	El *dom.Node

	// Data is the model. It is observed in place: writes through the
	// instance are mirrored back into these maps.
	Data map[string]any

	// Methods are the handlers available to v-on and @ directives.
	Methods map[string]Method

	// Surface receives every DOM mutation. Default: a *dom.Updater without
	// a sink, which mutates the tree only.
	Surface compiler.Surface

	// Logger is the instance logger. Default: slog.Default().
	Logger *slog.Logger

	// Hooks observe reactive activity. Ignored when Metrics is set.
	Hooks reactive.Hooks

	// Metrics records reactive activity and compile duration.
	Metrics *metrics.Collector

	// MaxCascadeDepth bounds re-entrant write cascades.
	// Default: reactive.DefaultMaxCascadeDepth
	MaxCascadeDepth int
}

// =============================================================================
// Instance
// =============================================================================

// Instance is a compiled view-model.
//
// An Instance is not safe for concurrent use. Callers that dispatch events
// from several goroutines must serialize them.
type Instance struct {
	el       *dom.Node
	observer *reactive.Observer
	methods  map[string]Method
	surface  compiler.Surface
	report   compiler.Report
	logger   *slog.Logger
}

// New observes opts.Data and compiles opts.El against it.
//
// When compilation fails the returned Instance is still usable: bindings
// created before the failing directive stay live and the tree keeps its
// nodes.
func New(opts Options) (*Instance, error) {
	if opts.El == nil {
		return nil, ErrNoRenderTarget
	}
	if opts.Data == nil {
		opts.Data = make(map[string]any)
	}
	if opts.Surface == nil {
		opts.Surface = &dom.Updater{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var robs []reactive.Option
	robs = append(robs, reactive.WithLogger(logger.With("component", "reactive")))
	switch {
	case opts.Metrics != nil:
		robs = append(robs, reactive.WithHooks(opts.Metrics))
	case opts.Hooks != nil:
		robs = append(robs, reactive.WithHooks(opts.Hooks))
	}
	if opts.MaxCascadeDepth > 0 {
		robs = append(robs, reactive.WithMaxCascadeDepth(opts.MaxCascadeDepth))
	}

	vm := &Instance{
		el:       opts.El,
		observer: reactive.NewObserver(opts.Data, robs...),
		methods:  opts.Methods,
		surface:  opts.Surface,
		logger:   logger,
	}

	start := time.Now()
	c := compiler.New(vm, opts.Surface, compiler.WithLogger(logger.With("component", "compiler")))
	report, err := c.Compile(opts.El)
	vm.report = report
	if opts.Metrics != nil {
		opts.Metrics.ObserveCompile(time.Since(start), err)
	}
	if err != nil {
		logger.Error("compile failed", "error", err)
		return vm, err
	}
	return vm, nil
}

// El returns the render target.
func (vm *Instance) El() *dom.Node {
	return vm.el
}

// Data returns the observed root object.
func (vm *Instance) Data() *reactive.Object {
	return vm.observer.Root()
}

// Observer returns the instance observer.
func (vm *Instance) Observer() *reactive.Observer {
	return vm.observer
}

// Surface returns the render surface the instance was compiled through.
func (vm *Instance) Surface() compiler.Surface {
	return vm.surface
}

// Report returns the compilation report.
func (vm *Instance) Report() compiler.Report {
	return vm.report
}

// Method returns the named method bound to vm.
func (vm *Instance) Method(name string) (compiler.Handler, bool) {
	m, ok := vm.methods[name]
	if !ok || m == nil {
		return nil, false
	}
	return func(ev dom.Event) error {
		return m(vm, ev)
	}, true
}

// Call invokes the named method.
func (vm *Instance) Call(name string, ev dom.Event) error {
	h, ok := vm.Method(name)
	if !ok {
		return fmtMissing(name)
	}
	return h(ev)
}
