package source

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vbind/internal/errors"
)

// DecodeModel decodes a YAML (or JSON) document into a model. The top level
// must be a mapping; an empty document is an empty model. Nested mappings
// with non-string keys get their keys formatted with fmt.Sprint.
func DecodeModel(data []byte) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("E081").WithDetail(err.Error()).Wrap(err)
	}
	if doc == nil {
		return make(map[string]any), nil
	}
	model, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, errors.New("E081").WithDetail(fmt.Sprintf("Top level is %T, not a mapping.", doc))
	}
	return model, nil
}

// normalize rewrites map[any]any into map[string]any throughout v.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}
