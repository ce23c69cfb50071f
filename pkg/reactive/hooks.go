package reactive

// Hooks receives instrumentation callbacks from an Observer.
// Implementations must be cheap; they run inline on every read and write.
type Hooks interface {
	// WatcherCreated is called after a Watcher finished its tracked evaluation.
	WatcherCreated(path string, deps int)

	// DependencyAdded is called each time a slot records the tracking Watcher.
	DependencyAdded(key string)

	// Notified is called after a slot's Dep notified its subscribers.
	// err is the joined callback error, if any.
	Notified(key string, subscribers int, err error)

	// CascadeRejected is called when a write is rejected by the cascade limit.
	CascadeRejected(key string)
}

// nopHooks is the default Hooks implementation.
type nopHooks struct{}

func (nopHooks) WatcherCreated(string, int)  {}
func (nopHooks) DependencyAdded(string)      {}
func (nopHooks) Notified(string, int, error) {}
func (nopHooks) CascadeRejected(string)      {}
