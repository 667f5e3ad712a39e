// Package objects provides helpers for nested string-keyed object values,
// the runtime shape produced and consumed by branch-typed operations.
package objects

import (
	"reflect"
	"strings"
)

// Get resolves a dotted path against a nested object.
// It returns false if any segment is missing or traverses a non-object value.
func Get(obj map[string]any, path string) (any, bool) {
	cur := any(obj)
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}

	return cur, true
}

// Equal reports whether two object values are deeply equal. Nested
// map[string]any containers are compared key by key; leaf values are
// compared with reflect.DeepEqual.
func Equal(a, b any) bool {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if aok != bok {
		return false
	}
	if !aok {
		return reflect.DeepEqual(a, b)
	}
	if len(am) != len(bm) {
		return false
	}
	for k, av := range am {
		bv, ok := bm[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}

	return true
}

// Clone deep-copies the object structure of value. Nested map[string]any
// containers are copied recursively; leaf values are carried over as-is.
func Clone(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}

	return out
}
