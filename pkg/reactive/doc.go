// Package reactive provides the dependency-tracking core of vbind.
//
// A plain nested model (map[string]any, as produced by JSON or YAML
// decoding) is observed into a tree of *Object nodes. Every property of an
// Object is a slot holding the current value and a Dep, the ordered list of
// Watchers interested in that slot.
//
// # Tracking
//
// A Watcher binds one path expression to one callback. On creation it sets
// itself as the Observer's tracking pointer and resolves its path; every
// slot read along the way appends the Watcher to that slot's Dep:
//
//	obs, _ := reactive.NewObserver(map[string]any{
//	    "person": map[string]any{"name": "ada"},
//	})
//	obs.Watch("person.name", func() error {
//	    name, err := obs.Resolve("person.name")
//	    ...
//	})
//	obs.Assign("person.name", "grace") // callback runs before Assign returns
//
// Writes compare the new value with the stored one (scalars by value, maps
// and objects by identity) and notify only when they differ. A map written
// into a slot is observed before it becomes visible to readers.
//
// # Concurrency
//
// An Observer is single-threaded: the tracking pointer lives on the Observer
// and every write runs its notification cascade synchronously. Separate
// Observers are independent and may live on separate goroutines.
package reactive
