package reactive

import "encoding/json"

// slot is one observed property: its current value and its registry.
type slot struct {
	key   string
	value any
	dep   *Dep
}

// Object is an observed plain object. Reads through Get are tracked and
// writes through Set are intercepted.
//
// Values stored in an Object are either *Object (for nested plain objects)
// or opaque leaves (scalars, slices, nil, anything that is not a
// map[string]any).
type Object struct {
	observer *Observer

	// source is the map this Object was built from. Writes are mirrored
	// into it so holders of the original map see current values.
	source map[string]any

	slots map[string]*slot
	keys  []string
}

// Get returns the value stored under key and whether the key exists.
// While a Watcher is evaluating, the read registers it with the slot.
func (o *Object) Get(key string) (any, bool) {
	s, ok := o.slots[key]
	if !ok {
		return nil, false
	}
	o.observer.depend(s)
	return s.value, true
}

// Peek returns the value stored under key without tracking.
func (o *Object) Peek(key string) (any, bool) {
	s, ok := o.slots[key]
	if !ok {
		return nil, false
	}
	return s.value, true
}

// Set writes value under key. Writing a value equal to the stored one is a
// no-op. Otherwise the value is observed (when it is a plain object),
// stored, and the slot's Watchers are updated before Set returns.
// Writing a key that does not exist yet creates a new observed slot.
func (o *Object) Set(key string, value any) error {
	return o.observer.write(o, key, value)
}

// Has reports whether key is an observed slot.
func (o *Object) Has(key string) bool {
	_, ok := o.slots[key]
	return ok
}

// Keys returns the slot names in definition order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of slots.
func (o *Object) Len() int {
	return len(o.keys)
}

// Dep returns the registry of the slot named key, or nil.
func (o *Object) Dep(key string) *Dep {
	if s, ok := o.slots[key]; ok {
		return s.dep
	}
	return nil
}

// Snapshot returns an untracked deep copy as plain maps. Shared and cyclic
// subtrees are copied once and shared in the result.
func (o *Object) Snapshot() map[string]any {
	return o.snapshot(make(map[*Object]map[string]any))
}

func (o *Object) snapshot(seen map[*Object]map[string]any) map[string]any {
	if m, ok := seen[o]; ok {
		return m
	}
	out := make(map[string]any, len(o.keys))
	seen[o] = out
	for _, k := range o.keys {
		v := o.slots[k].value
		if child, ok := v.(*Object); ok {
			out[k] = child.snapshot(seen)
			continue
		}
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the snapshot of the object.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Snapshot())
}

// define installs a slot for key. Existing slots are kept, so a slot never
// gets a second registry.
func (o *Object) define(key string, value any) *slot {
	if s, ok := o.slots[key]; ok {
		return s
	}
	s := &slot{key: key, value: value, dep: newDep(key)}
	o.slots[key] = s
	o.keys = append(o.keys, key)
	return s
}
