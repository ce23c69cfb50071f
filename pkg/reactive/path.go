package reactive

import (
	"strconv"
	"strings"
)

// PathSeparator separates the segments of a path expression.
const PathSeparator = "."

// SplitPath splits a path expression into trimmed segments.
func SplitPath(path string) []string {
	segs := strings.Split(strings.TrimSpace(path), PathSeparator)
	for i, s := range segs {
		segs[i] = strings.TrimSpace(s)
	}
	return segs
}

// Resolve reads path from the root object, one segment at a time. Each
// object read is a tracked read. A missing key yields nil; indexing into nil
// or a scalar fails with a *PathError.
func (obs *Observer) Resolve(path string) (any, error) {
	segs := SplitPath(path)
	var cur any = obs.root
	for i, seg := range segs {
		next, ok := index(cur, seg)
		if !ok {
			return nil, &PathError{Path: path, Segment: seg, Index: i, Found: cur}
		}
		cur = next
	}
	return cur, nil
}

// Assign writes v at path. Every segment but the last must resolve to an
// object. A plain map reached through a slice element is written in place
// without notifying; slice contents are not observed.
func (obs *Observer) Assign(path string, v any) error {
	segs := SplitPath(path)
	last := len(segs) - 1

	var cur any = obs.root
	for i, seg := range segs[:last] {
		next, ok := index(cur, seg)
		if !ok {
			return &PathError{Path: path, Segment: seg, Index: i, Found: cur}
		}
		cur = next
	}
	switch parent := cur.(type) {
	case *Object:
		return parent.Set(segs[last], v)
	case map[string]any:
		if parent == nil {
			break
		}
		parent[segs[last]] = v
		return nil
	}
	return &PathError{Path: path, Segment: segs[last], Index: last, Found: cur}
}

// index reads seg from v. Objects are read through Get; slices accept
// decimal indexes (untracked, out of range yields nil) and the plain maps
// they hold are read untracked. ok is false when v cannot be indexed at all.
func index(v any, seg string) (any, bool) {
	switch x := v.(type) {
	case *Object:
		val, _ := x.Get(seg)
		return val, true
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(x) {
			return nil, true
		}
		return x[i], true
	case map[string]any:
		if x == nil {
			return nil, false
		}
		return x[seg], true
	default:
		return nil, false
	}
}
