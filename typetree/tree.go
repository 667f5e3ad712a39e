// Package typetree provides recursive structural type descriptors for the
// values flowing through operations.
//
// A Tree is either a leaf carrying a concrete type tag, or a branch mapping
// unique string keys to child trees. Branch-shaped values are nested
// map[string]any objects; leaf-shaped values are plain Go values whose dynamic
// type must equal the leaf tag. The wildcard Any accepts any non-nil value and
// is compatible with every tree; between concrete tags compatibility is exact,
// there is no implicit widening.
//
// Trees are immutable once constructed and may be freely shared.
package typetree

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Tree is a structural type descriptor: a leaf type tag, the Any wildcard, or
// a branch of keyed child trees. Use Leaf, LeafOf, Any, Branch, Object, Path
// or Infer to construct one.
type Tree struct {
	leaf     reflect.Type // non-nil for concrete leaves
	wildcard bool         // true for the Any leaf
	fields   []Field      // branch fields in declaration order
}

// Field is a single keyed child of a branch.
type Field struct {
	Key  string
	Tree *Tree
}

// Leaf returns a leaf tree tagged with the concrete type T.
func Leaf[T any]() *Tree {
	return LeafOf(reflect.TypeFor[T]())
}

// LeafOf returns a leaf tree tagged with rt. It panics if rt is nil.
func LeafOf(rt reflect.Type) *Tree {
	if rt == nil {
		panic("typetree: nil leaf type")
	}

	return &Tree{leaf: rt}
}

// Any returns the wildcard leaf. It validates any non-nil value and is
// compatible with every tree.
func Any() *Tree {
	return &Tree{wildcard: true}
}

// Branch returns a branch tree with the given fields, preserving their order.
// It panics on an empty key, a nil child or a duplicate key.
func Branch(fields ...Field) *Tree {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			panic("typetree: empty field key")
		}
		if f.Tree == nil {
			panic(fmt.Sprintf("typetree: nil tree for field %q", f.Key))
		}
		if _, ok := seen[f.Key]; ok {
			panic(fmt.Sprintf("typetree: duplicate field key %q", f.Key))
		}
		seen[f.Key] = struct{}{}
	}

	return &Tree{fields: slices.Clone(fields)}
}

// Object returns a branch tree from a key to child map, with fields ordered
// by key.
func Object(fields map[string]*Tree) *Tree {
	out := make([]Field, 0, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		out = append(out, Field{Key: k, Tree: fields[k]})
	}

	return Branch(out...)
}

// Path returns a branch tree nesting leaf under the segments of a dotted
// path, e.g. Path("a.b", Leaf[int]()) is {a: {b: int}}.
func Path(path string, leaf *Tree) *Tree {
	keys := strings.Split(path, ".")
	t := leaf
	for i := len(keys) - 1; i >= 0; i-- {
		t = Branch(Field{Key: keys[i], Tree: t})
	}

	return t
}

// Infer returns the tree describing a concrete value: nested map[string]any
// values become branches with fields ordered by key, nil becomes Any and
// everything else becomes a leaf of its dynamic type.
func Infer(value any) *Tree {
	switch v := value.(type) {
	case nil:
		return Any()
	case map[string]any:
		fields := make([]Field, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			fields = append(fields, Field{Key: k, Tree: Infer(v[k])})
		}

		return Branch(fields...)
	default:
		return LeafOf(reflect.TypeOf(value))
	}
}

// IsLeaf reports whether the tree is a leaf, including the Any wildcard.
func (t *Tree) IsLeaf() bool {
	return t.wildcard || t.leaf != nil
}

// IsAny reports whether the tree is the Any wildcard.
func (t *Tree) IsAny() bool {
	return t.wildcard
}

// LeafType returns the concrete tag of a leaf, or nil for branches and Any.
func (t *Tree) LeafType() reflect.Type {
	return t.leaf
}

// Fields returns a copy of the branch fields in declaration order. It is nil
// for leaves.
func (t *Tree) Fields() []Field {
	if t.IsLeaf() {
		return nil
	}

	return slices.Clone(t.fields)
}

// Child returns the subtree under key, if the tree is a branch declaring it.
func (t *Tree) Child(key string) (*Tree, bool) {
	for _, f := range t.fields {
		if f.Key == key {
			return f.Tree, true
		}
	}

	return nil, false
}

// Walk visits the tree in preorder, calling fn with the dotted path of each
// subtree, "" for the root. Returning false skips the subtree's children.
func (t *Tree) Walk(fn func(path string, t *Tree) bool) {
	t.walk("", fn)
}

func (t *Tree) walk(path string, fn func(path string, t *Tree) bool) {
	if !fn(path, t) {
		return
	}
	for _, f := range t.fields {
		f.Tree.walk(joinPath(path, f.Key), fn)
	}
}

// Compatible reports whether two trees describe the same shape with equal
// leaf tags. The Any wildcard is compatible with everything; concrete tags
// must match exactly.
func (t *Tree) Compatible(o *Tree) bool {
	if t.wildcard || o.wildcard {
		return true
	}
	if t.leaf != nil || o.leaf != nil {
		return t.leaf == o.leaf
	}
	if len(t.fields) != len(o.fields) {
		return false
	}
	for _, f := range t.fields {
		oc, ok := o.Child(f.Key)
		if !ok || !f.Tree.Compatible(oc) {
			return false
		}
	}

	return true
}

// String returns a compact single-line rendering, e.g. {a: int, b: {c: string}}.
func (t *Tree) String() string {
	var b strings.Builder
	t.writeCompact(&b)

	return b.String()
}

func (t *Tree) writeCompact(b *strings.Builder) {
	switch {
	case t.wildcard:
		b.WriteString("any")
	case t.leaf != nil:
		b.WriteString(t.leaf.String())
	default:
		b.WriteByte('{')
		for i, f := range t.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Key)
			b.WriteString(": ")
			f.Tree.writeCompact(b)
		}
		b.WriteByte('}')
	}
}

// Describe returns a multi-line indented rendering of the tree.
func (t *Tree) Describe() string {
	var b strings.Builder
	t.writeIndented(&b, 0)

	return b.String()
}

func (t *Tree) writeIndented(b *strings.Builder, depth int) {
	if t.IsLeaf() {
		b.WriteString(t.String())
		return
	}
	b.WriteByte('{')
	for _, f := range t.fields {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", depth+1))
		b.WriteString(f.Key)
		b.WriteString(": ")
		f.Tree.writeIndented(b, depth+1)
	}
	if len(t.fields) > 0 {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", depth))
	}
	b.WriteByte('}')
}
