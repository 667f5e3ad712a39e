package operations

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/proplib/prop/internal/objects"
	"github.com/proplib/prop/typetree"
)

// Object is the branch-shaped runtime value consumed and produced by
// operations: a nested string-keyed map.
type Object = map[string]any

// Kind identifies how an Operation was constructed.
type Kind string

const (
	KindLeaf        Kind = "operation"
	KindCompose     Kind = "compose"
	KindConcatenate Kind = "concatenate"
	KindSwitch      Kind = "switch"
	KindCycle       Kind = "cycle"
)

// Definition is the metadata for an operation.
// It contains the ID, version and description. Operations built by
// combinators carry a synthesized definition without a version.
type Definition struct {
	ID          string          `json:"id"`
	Version     *semver.Version `json:"version,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Handler is the function signature of a leaf operation: a function from a
// validated input value to an output value. The input it receives has already
// been conformed to the operation's input tree.
type Handler func(input any) (output any, err error)

// Operation is a typed, immutable unit of computation. It declares the shape
// of the values it accepts and produces as type trees, and is closed under
// the combinators NewCompose, NewConcatenate, NewSwitch and NewCycle.
// Use NewOperation to create a leaf operation.
type Operation struct {
	def      Definition
	kind     Kind
	in, out  *typetree.Tree
	children []*Operation
	run      func(tr *trace, input any) (any, error)
}

// ID returns the operation ID.
func (o *Operation) ID() string {
	return o.def.ID
}

// Version returns the operation semver version in string, or the empty
// string for operations built by combinators.
func (o *Operation) Version() string {
	if o.def.Version == nil {
		return ""
	}

	return o.def.Version.String()
}

// Description returns the operation description.
func (o *Operation) Description() string {
	return o.def.Description
}

// Def returns the operation definition.
func (o *Operation) Def() Definition {
	return o.def
}

// Kind returns how the operation was constructed.
func (o *Operation) Kind() Kind {
	return o.kind
}

// InputTree returns the tree describing accepted input values.
func (o *Operation) InputTree() *typetree.Tree {
	return o.in
}

// OutputTree returns the tree describing produced output values.
func (o *Operation) OutputTree() *typetree.Tree {
	return o.out
}

// Children returns the operations this one was combined from, in order.
// It is empty for leaf operations.
func (o *Operation) Children() []*Operation {
	return slices.Clone(o.children)
}

// Call validates input against the input tree, runs the operation and
// validates the result against the output tree.
//
// Input failing validation returns a *TypeMismatchError naming the offending
// path; output failing validation returns an *InternalContractError, since a
// validated input that produces ill-shaped output is a bug in the operation
// itself. Errors returned by leaf handlers propagate unchanged.
func (o *Operation) Call(input any) (any, error) {
	return o.call(nil, input)
}

func (o *Operation) call(tr *trace, input any) (any, error) {
	conformed, err := o.in.Conform(input)
	if err != nil {
		return nil, newTypeMismatch(o.def, err)
	}

	out, err := o.run(tr, conformed)
	if err != nil {
		return nil, err
	}

	if err := o.out.Validate(out); err != nil {
		return nil, &InternalContractError{Def: o.def, Err: err}
	}

	return out, nil
}

// NewOperation creates a new leaf operation.
// Version can be created using semver.MustParse("1.0.0") or semver.New("1.0.0").
// The handler must be a function of the input alone; the input it receives is
// conformed to in, so keys outside the declared shape never reach it.
// It panics on a nil tree or handler.
func NewOperation(
	id string, version *semver.Version, description string,
	in, out *typetree.Tree, handler Handler,
) *Operation {
	if in == nil || out == nil {
		panic("operations: nil type tree")
	}
	if handler == nil {
		panic("operations: nil handler")
	}

	return &Operation{
		def: Definition{
			ID:          id,
			Version:     version,
			Description: description,
		},
		kind: KindLeaf,
		in:   in,
		out:  out,
		run: func(_ *trace, input any) (any, error) {
			return handler(input)
		},
	}
}

// NewPass returns the identity operation on tree: it accepts values of that
// shape and returns them unchanged. It is the unit of composition.
func NewPass(tree *typetree.Tree) *Operation {
	if tree == nil {
		panic("operations: nil type tree")
	}

	return &Operation{
		def:  Definition{ID: "pass", Description: "passes its input through unchanged"},
		kind: KindLeaf,
		in:   tree,
		out:  tree,
		run: func(_ *trace, input any) (any, error) {
			return input, nil
		},
	}
}

// NewConst returns an operation that ignores its input and returns value.
// Its input tree is Any, so it composes after any operation; its output tree
// is inferred from the value. Each call returns a fresh copy of the object
// structure; leaf values, slices included, are shared with the original.
// It panics on a nil value.
func NewConst(value any) *Operation {
	if value == nil {
		panic("operations: nil constant value")
	}

	return &Operation{
		def:  Definition{ID: "const", Description: "returns a fixed value"},
		kind: KindLeaf,
		in:   typetree.Any(),
		out:  typetree.Infer(value),
		run: func(_ *trace, _ any) (any, error) {
			return objects.Clone(value), nil
		},
	}
}

// NewEmpty returns an operation that discards its input and returns an empty
// object.
func NewEmpty() *Operation {
	return &Operation{
		def:  Definition{ID: "empty", Description: "discards its input"},
		kind: KindLeaf,
		in:   typetree.Any(),
		out:  typetree.Branch(),
		run: func(_ *trace, _ any) (any, error) {
			return Object{}, nil
		},
	}
}

// NewPick returns an operation that passes through only the given top-level
// or dotted keys of its input, dropping everything else. It panics if no
// keys are given.
func NewPick(keys ...string) *Operation {
	if len(keys) == 0 {
		panic("operations: pick requires at least one key")
	}

	tree := typetree.Branch()
	for _, key := range keys {
		merged, err := tree.Union(typetree.Path(key, typetree.Any()))
		if err != nil {
			panic(fmt.Sprintf("operations: conflicting pick keys: %v", err))
		}
		tree = merged
	}

	return &Operation{
		def: Definition{
			ID:          "pick",
			Description: fmt.Sprintf("passes through %s", strings.Join(keys, ", ")),
		},
		kind: KindLeaf,
		in:   tree,
		out:  tree,
		run: func(_ *trace, input any) (any, error) {
			return input, nil
		},
	}
}
