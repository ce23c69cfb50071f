package vbind

import (
	"fmt"

	"github.com/vango-dev/vbind/pkg/compiler"
)

// Get reads a top-level property of the model.
func (vm *Instance) Get(key string) (any, bool) {
	return vm.observer.Root().Get(key)
}

// Set writes a top-level property of the model and notifies its watchers.
func (vm *Instance) Set(key string, value any) error {
	return vm.observer.Root().Set(key, value)
}

// Lookup resolves a dotted path against the model.
func (vm *Instance) Lookup(path string) (any, error) {
	return vm.observer.Resolve(path)
}

// Assign writes value at a dotted path and notifies its watchers.
func (vm *Instance) Assign(path string, value any) error {
	return vm.observer.Assign(path, value)
}

// Snapshot returns a plain copy of the model.
func (vm *Instance) Snapshot() map[string]any {
	return vm.observer.Root().Snapshot()
}

func fmtMissing(name string) error {
	return fmt.Errorf("%w: %q", compiler.ErrMissingHandler, name)
}
