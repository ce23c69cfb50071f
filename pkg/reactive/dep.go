package reactive

import "errors"

// Dep is the dependency registry of one observed slot.
//
// Watchers are kept in registration order and are not deduplicated: a
// Watcher whose evaluation reads the slot twice is registered twice and is
// updated twice per notification.
type Dep struct {
	id   uint64
	key  string
	subs []*Watcher
}

// newDep creates an empty registry for the slot named key.
func newDep(key string) *Dep {
	return &Dep{id: nextID(), key: key}
}

// ID returns the unique identifier of this registry.
func (d *Dep) ID() uint64 {
	return d.id
}

// Key returns the name of the slot this registry belongs to.
func (d *Dep) Key() string {
	return d.key
}

// Add appends w to the subscriber list unconditionally.
func (d *Dep) Add(w *Watcher) {
	if w == nil {
		return
	}
	d.subs = append(d.subs, w)
	w.deps = append(w.deps, d)
}

// Len returns the number of registered occurrences.
func (d *Dep) Len() int {
	return len(d.subs)
}

// Subscribers returns a copy of the subscriber list in registration order.
func (d *Dep) Subscribers() []*Watcher {
	subs := make([]*Watcher, len(d.subs))
	copy(subs, d.subs)
	return subs
}

// Notify updates every registered Watcher in registration order.
//
// The list is copied before iterating, so Watchers added by a callback are
// first updated on the next notification. A failing callback does not stop
// the remaining ones; all errors are joined.
func (d *Dep) Notify() error {
	if len(d.subs) == 0 {
		return nil
	}
	subs := d.Subscribers()

	var errs []error
	for _, w := range subs {
		if err := w.Update(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// remove drops every occurrence of w, keeping the order of the rest.
func (d *Dep) remove(w *Watcher) {
	kept := d.subs[:0]
	for _, existing := range d.subs {
		if existing != w {
			kept = append(kept, existing)
		}
	}
	for i := len(kept); i < len(d.subs); i++ {
		d.subs[i] = nil
	}
	d.subs = kept
}
