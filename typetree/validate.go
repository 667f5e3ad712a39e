package typetree

import (
	"fmt"
	"reflect"
)

// MismatchError reports a disagreement between a tree and a value, or between
// two trees being combined. Path is the dotted location of the offending
// node; it is empty at the root.
type MismatchError struct {
	Path string
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
	}

	return fmt.Sprintf("type mismatch at %q: want %s, got %s", e.Path, e.Want, e.Got)
}

// Validate checks that value conforms to the tree. A concrete leaf requires
// the value's dynamic type to equal the tag; Any requires any non-nil value;
// a branch requires a map[string]any carrying every declared key with a
// conforming value. Keys outside the declared shape are tolerated. Failures
// return a *MismatchError naming the offending path.
func (t *Tree) Validate(value any) error {
	return t.validateAt("", value)
}

func (t *Tree) validateAt(path string, value any) error {
	if value == nil {
		return &MismatchError{Path: path, Want: t.String(), Got: "nil"}
	}
	if t.wildcard {
		return nil
	}
	if t.leaf != nil {
		if rt := reflect.TypeOf(value); rt != t.leaf {
			return &MismatchError{Path: path, Want: t.leaf.String(), Got: rt.String()}
		}

		return nil
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return &MismatchError{Path: path, Want: t.String(), Got: fmt.Sprintf("%T", value)}
	}
	for _, f := range t.fields {
		child, ok := obj[f.Key]
		if !ok {
			return &MismatchError{Path: joinPath(path, f.Key), Want: f.Tree.String(), Got: "missing"}
		}
		if err := f.Tree.validateAt(joinPath(path, f.Key), child); err != nil {
			return err
		}
	}

	return nil
}

// Conform validates value and returns a copy restricted to the declared
// shape: branch results carry exactly the declared keys, built from fresh
// maps. Values under leaves, including Any, are carried over as-is.
func (t *Tree) Conform(value any) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}

	return t.conform(value), nil
}

func (t *Tree) conform(value any) any {
	if t.IsLeaf() {
		return value
	}

	obj := value.(map[string]any)
	out := make(map[string]any, len(t.fields))
	for _, f := range t.fields {
		out[f.Key] = f.Tree.conform(obj[f.Key])
	}

	return out
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}

	return path + "." + key
}
