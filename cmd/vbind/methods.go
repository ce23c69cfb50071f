package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/pkg/dom"
)

var (
	errNotNumber = errors.New("value is not a number")
	errNotBool   = errors.New("value is not a boolean")
)

// buildMethods turns declared methods into instance methods. Actions run
// in order; the first failing action stops the method.
func buildMethods(specs map[string][]config.Action) map[string]vbind.Method {
	methods := make(map[string]vbind.Method, len(specs))
	for name, actions := range specs {
		methods[name] = declaredMethod(name, actions)
	}
	return methods
}

func declaredMethod(name string, actions []config.Action) vbind.Method {
	return func(vm *vbind.Instance, _ dom.Event) error {
		for _, a := range actions {
			if err := run(vm, a); err != nil {
				return fmt.Errorf("method %q: %w", name, err)
			}
		}
		return nil
	}
}

func run(vm *vbind.Instance, a config.Action) error {
	switch {
	case a.Assign != "":
		return vm.Assign(a.Assign, a.Value)

	case a.Increment != "":
		by := a.By
		if by == 0 {
			by = 1
		}
		cur, err := vm.Lookup(a.Increment)
		if err != nil {
			return err
		}
		next, err := add(cur, by)
		if err != nil {
			return fmt.Errorf("increment %s: %w", a.Increment, err)
		}
		return vm.Assign(a.Increment, next)

	case a.Toggle != "":
		cur, err := vm.Lookup(a.Toggle)
		if err != nil {
			return err
		}
		switch v := cur.(type) {
		case nil:
			return vm.Assign(a.Toggle, true)
		case bool:
			return vm.Assign(a.Toggle, !v)
		default:
			return fmt.Errorf("toggle %s: %w: %T", a.Toggle, errNotBool, cur)
		}
	}
	return nil
}

// add adds by to cur, keeping integers integral when by is whole.
// Strings written back by v-model count when they parse as numbers; an
// empty string counts as zero.
func add(cur any, by float64) (any, error) {
	whole := by == math.Trunc(by)
	switch v := cur.(type) {
	case nil:
		if whole {
			return int(by), nil
		}
		return by, nil
	case int:
		if whole {
			return v + int(by), nil
		}
		return float64(v) + by, nil
	case int64:
		if whole {
			return v + int64(by), nil
		}
		return float64(v) + by, nil
	case float64:
		return v + by, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return add(nil, by)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errNotNumber, v)
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return add(int(f), by)
		}
		return add(f, by)
	default:
		return nil, fmt.Errorf("%w: %T", errNotNumber, cur)
	}
}
