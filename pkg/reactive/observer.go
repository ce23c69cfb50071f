package reactive

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
)

// DefaultMaxCascadeDepth is the default limit on nested writes triggered
// from inside notification callbacks.
const DefaultMaxCascadeDepth = 100

// Option configures an Observer.
type Option func(*Observer)

// WithHooks installs instrumentation hooks.
func WithHooks(h Hooks) Option {
	return func(o *Observer) {
		if h != nil {
			o.hooks = h
		}
	}
}

// WithLogger sets the logger used for cascade diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Observer) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxCascadeDepth sets how many writes may nest inside notification
// callbacks before further writes are rejected with ErrCascadeLimit.
func WithMaxCascadeDepth(n int) Option {
	return func(o *Observer) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// Observer owns an observed model: its root Object, the arena of every
// Object built from it, and the tracking pointer.
type Observer struct {
	root *Object

	// arena maps the identity of every observed source map to its Object.
	arena map[uintptr]*Object

	// tracking is the Watcher currently evaluating, or nil.
	tracking *Watcher

	// depth counts writes currently running their notification.
	depth    int
	maxDepth int

	hooks  Hooks
	logger *slog.Logger
}

// NewObserver observes data and returns the Observer owning it.
// A nil map is treated as an empty model.
func NewObserver(data map[string]any, opts ...Option) *Observer {
	obs := &Observer{
		arena:    make(map[uintptr]*Object),
		maxDepth: DefaultMaxCascadeDepth,
		hooks:    nopHooks{},
		logger:   slog.Default().With("component", "reactive"),
	}
	for _, opt := range opts {
		opt(obs)
	}
	if data == nil {
		data = make(map[string]any)
	}
	obs.root = obs.Observe(data).(*Object)
	return obs
}

// Root returns the root Object of the model.
func (obs *Observer) Root() *Object {
	return obs.root
}

// Tracking returns the Watcher currently evaluating, or nil.
func (obs *Observer) Tracking() *Watcher {
	return obs.tracking
}

// Observe makes v reactive. A map[string]any is turned into an *Object
// (together with every map reachable from it); an *Object is returned as
// is; any other value is returned unchanged.
//
// The traversal is an explicit worklist. A map reached twice, including
// through a cycle, maps to the same Object, so observing is idempotent and
// terminates on cyclic graphs.
func (obs *Observer) Observe(v any) any {
	switch x := v.(type) {
	case *Object:
		return x
	case map[string]any:
		if x == nil {
			return v
		}
		root, fresh := obs.node(x)
		if !fresh {
			return root
		}
		work := []*Object{root}
		for len(work) > 0 {
			o := work[len(work)-1]
			work = work[:len(work)-1]

			for _, k := range sortedKeys(o.source) {
				val := o.source[k]
				if m, ok := val.(map[string]any); ok && m != nil {
					child, fresh := obs.node(m)
					if fresh {
						work = append(work, child)
					}
					val = child
				}
				o.define(k, val)
			}
		}
		return root
	default:
		return v
	}
}

// Watch creates a Watcher on path and performs its tracked evaluation.
// If the path cannot be resolved, registrations made so far are undone and
// the resolution error is returned.
func (obs *Observer) Watch(path string, callback func() error) (*Watcher, error) {
	w := &Watcher{
		id:       nextID(),
		path:     path,
		callback: callback,
		observer: obs,
	}
	if err := w.evaluate(); err != nil {
		w.detach()
		return nil, err
	}
	obs.hooks.WatcherCreated(path, len(w.deps))
	return w, nil
}

// node returns the Object for m, creating an empty one when m has not been
// seen. fresh reports whether it was created.
func (obs *Observer) node(m map[string]any) (o *Object, fresh bool) {
	id := reflect.ValueOf(m).Pointer()
	if existing, ok := obs.arena[id]; ok {
		return existing, false
	}
	o = &Object{
		observer: obs,
		source:   m,
		slots:    make(map[string]*slot, len(m)),
	}
	obs.arena[id] = o
	return o, true
}

// lookup returns the Object already built for m, or nil.
func (obs *Observer) lookup(m map[string]any) *Object {
	if m == nil {
		return nil
	}
	return obs.arena[reflect.ValueOf(m).Pointer()]
}

// track runs fn with w as the tracking pointer.
func (obs *Observer) track(w *Watcher, fn func() error) error {
	if obs.tracking != nil {
		return fmt.Errorf("%w: %q started while %q is evaluating",
			ErrNestedTracking, w.path, obs.tracking.path)
	}
	obs.tracking = w
	defer func() { obs.tracking = nil }()
	return fn()
}

// depend records the tracking Watcher, if any, on s.
func (obs *Observer) depend(s *slot) {
	w := obs.tracking
	if w == nil {
		return
	}
	s.dep.Add(w)
	obs.hooks.DependencyAdded(s.key)
}

// write is the intercepted write path shared by every Object.
func (obs *Observer) write(o *Object, key string, value any) error {
	if m, ok := value.(map[string]any); ok {
		if existing := obs.lookup(m); existing != nil {
			value = existing
		}
	}

	s, exists := o.slots[key]
	if exists && sameValue(s.value, value) {
		return nil
	}
	if obs.depth >= obs.maxDepth {
		obs.hooks.CascadeRejected(key)
		obs.logger.Warn("write rejected", "key", key, "depth", obs.depth)
		return fmt.Errorf("%w: write to %q at depth %d", ErrCascadeLimit, key, obs.depth)
	}

	value = obs.Observe(value)
	if !exists {
		s = o.define(key, value)
	}
	s.value = value
	o.source[key] = raw(value)

	obs.depth++
	defer func() { obs.depth-- }()

	n := s.dep.Len()
	err := s.dep.Notify()
	obs.hooks.Notified(key, n, err)
	if n > 0 {
		obs.logger.Debug("notify", "key", key, "subscribers", n, "depth", obs.depth)
	}
	return err
}

// raw returns the plain value to mirror into a source map.
func raw(v any) any {
	if o, ok := v.(*Object); ok {
		return o.source
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
