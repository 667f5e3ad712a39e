package operations

import (
	"errors"
	"slices"
	"strconv"

	"github.com/proplib/prop/typetree"
)

// NewConcatenate creates the parallel product of ops: every child receives
// the same input and runs independently, and the results are assembled into
// an object keyed by child position, "0" through "n-1".
//
// The input tree is the union of the children's input trees, so the shared
// input must satisfy every child at once; children disagreeing on a key's
// type fail immediately with a *CompositionError. The output tree is a
// branch keyed per child. At least one operation is required.
func NewConcatenate(ops ...*Operation) (*Operation, error) {
	if len(ops) == 0 {
		return nil, &CompositionError{
			Combinator: KindConcatenate,
			Err:        errors.New("requires at least one operation"),
		}
	}
	for _, op := range ops {
		if op == nil {
			panic("operations: nil operation")
		}
	}

	in := ops[0].in
	for i := 1; i < len(ops); i++ {
		merged, err := in.Union(ops[i].in)
		if err != nil {
			return nil, &CompositionError{
				Combinator: KindConcatenate,
				Position:   i,
				Upstream:   in,
				Downstream: ops[i].in,
				Err:        err,
			}
		}
		in = merged
	}

	children := slices.Clone(ops)
	outFields := make([]typetree.Field, len(children))
	for i, op := range children {
		outFields[i] = typetree.Field{Key: strconv.Itoa(i), Tree: op.out}
	}

	return &Operation{
		def: Definition{
			ID:          string(KindConcatenate),
			Description: strconv.Itoa(len(children)) + " parallel branches",
		},
		kind:     KindConcatenate,
		in:       in,
		out:      typetree.Branch(outFields...),
		children: children,
		run: func(tr *trace, input any) (any, error) {
			result := make(Object, len(children))
			for i, child := range children {
				res, err := callChild(tr, child, input)
				if err != nil {
					return nil, err
				}
				result[strconv.Itoa(i)] = res
			}

			return result, nil
		},
	}, nil
}
