package operations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/proplib/prop/typetree"
)

// TypeMismatchError reports a value whose runtime shape or type disagrees
// with an operation's declared input tree. It is returned from Call before
// the operation's function runs.
type TypeMismatchError struct {
	Op   string // ID of the operation that rejected the value
	Path string // dotted path of the offending node, empty at the root
	Err  error  // the underlying mismatch
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("operation %q: %v", e.Op, e.Err)
}

func (e *TypeMismatchError) Unwrap() error { return e.Err }

func newTypeMismatch(def Definition, err error) error {
	e := &TypeMismatchError{Op: def.ID, Err: err}
	var m *typetree.MismatchError
	if errors.As(err, &m) {
		e.Path = m.Path
	}

	return e
}

// CompositionError reports a combinator constructed from operations whose
// type trees cannot legally combine. It is returned at construction time,
// never at call time.
type CompositionError struct {
	Combinator Kind
	Position   int // index of the child at which combination failed
	Upstream   *typetree.Tree
	Downstream *typetree.Tree
	Err        error
}

func (e *CompositionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot %s", e.Combinator)
	if e.Position > 0 {
		fmt.Fprintf(&b, " at position %d", e.Position)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Upstream != nil && e.Downstream != nil {
		fmt.Fprintf(&b, "\n  upstream:   %s\n  downstream: %s", e.Upstream, e.Downstream)
	}

	return b.String()
}

func (e *CompositionError) Unwrap() error { return e.Err }

// UnmatchedCaseError reports a switch discriminant value that selected no
// case and had no default to fall back to.
type UnmatchedCaseError struct {
	Key   string
	Value any
}

func (e *UnmatchedCaseError) Error() string {
	return fmt.Sprintf("switch on %q: no case matches %v", e.Key, e.Value)
}

// InternalContractError reports an operation whose function produced output
// violating its own declared output tree. This indicates a bug in the
// operation, not bad input.
type InternalContractError struct {
	Def Definition
	Err error
}

func (e *InternalContractError) Error() string {
	return fmt.Sprintf("operation %q violated its output contract: %v", e.Def.ID, e.Err)
}

func (e *InternalContractError) Unwrap() error { return e.Err }
