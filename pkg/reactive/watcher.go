package reactive

// Watcher binds a path expression to an update callback.
//
// Watchers are created through Observer.Watch, which performs the single
// tracked evaluation that registers the Watcher with every slot read while
// resolving the path. A Watcher lives as long as its Observer unless it is
// stopped.
type Watcher struct {
	id       uint64
	path     string
	callback func() error
	observer *Observer

	// deps lists every registry this Watcher was added to, one entry per
	// registration.
	deps []*Dep
}

// ID returns the unique identifier of this Watcher.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Path returns the watched path expression.
func (w *Watcher) Path() string {
	return w.path
}

// Deps returns the registries this Watcher is subscribed to, in the order
// the registrations happened.
func (w *Watcher) Deps() []*Dep {
	deps := make([]*Dep, len(w.deps))
	copy(deps, w.deps)
	return deps
}

// Update invokes the callback. The callback re-resolves whatever it needs;
// no value is passed.
func (w *Watcher) Update() error {
	if w.callback == nil {
		return nil
	}
	return w.callback()
}

// Stop removes w from every registry it joined. A stopped Watcher is no
// longer updated; calling Stop again is a no-op.
func (w *Watcher) Stop() {
	w.detach()
}

// evaluate resolves the path with w as the tracking pointer.
func (w *Watcher) evaluate() error {
	return w.observer.track(w, func() error {
		_, err := w.observer.Resolve(w.path)
		return err
	})
}

// detach removes w from every registry it joined.
func (w *Watcher) detach() {
	for _, d := range w.deps {
		d.remove(w)
	}
	w.deps = nil
}
