package reactive

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// sameValue implements the write-suppression equality: scalars compare by
// value (numbers across numeric types), maps, slices and objects by
// identity. Values of non-comparable types are never equal.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case *Object:
		bv, ok := b.(*Object)
		return ok && av == bv
	case map[string]any:
		bv, ok := b.(map[string]any)
		return ok && reflect.ValueOf(av).Pointer() == reflect.ValueOf(bv).Pointer()
	case []any:
		bv, ok := b.([]any)
		return ok && len(av) == len(bv) &&
			reflect.ValueOf(av).Pointer() == reflect.ValueOf(bv).Pointer()
	}

	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	switch ta.Kind() {
	case reflect.Struct, reflect.Array, reflect.Interface:
		// Comparable at the type level but may hold non-comparable values.
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// toFloat converts any Go numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Stringify formats a model value for the render surface.
//
//	nil        → ""
//	string     → as is
//	bool       → "true" / "false"
//	numbers    → shortest decimal form
//	*Object    → JSON of its snapshot
//	slices     → JSON
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case *Object, []any, map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			// Cyclic graphs cannot be encoded.
			return "[object]"
		}
		return string(b)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
