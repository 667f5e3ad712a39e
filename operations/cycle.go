package operations

import (
	"fmt"
)

// NewCycle creates an operation applying op to its own output count times.
// A count of zero validates the input and returns it unchanged, behaving as
// the identity on op's input tree.
//
// The count is fixed at construction, so termination is structural: there is
// no conditional or unbounded looping. A negative count, or an op whose
// output tree cannot feed back into its input tree, fails immediately with a
// *CompositionError.
func NewCycle(op *Operation, count int) (*Operation, error) {
	if op == nil {
		panic("operations: nil operation")
	}
	if count < 0 {
		return nil, &CompositionError{
			Combinator: KindCycle,
			Err:        fmt.Errorf("count must be non-negative, got %d", count),
		}
	}
	if !op.out.Compatible(op.in) {
		return nil, &CompositionError{
			Combinator: KindCycle,
			Upstream:   op.out,
			Downstream: op.in,
			Err:        fmt.Errorf("output of %q does not feed back into its input", op.def.ID),
		}
	}

	out := op.in
	if count > 0 {
		out = op.out
	}

	return &Operation{
		def: Definition{
			ID:          string(KindCycle),
			Description: fmt.Sprintf("repeats %q %d times", op.def.ID, count),
		},
		kind:     KindCycle,
		in:       op.in,
		out:      out,
		children: []*Operation{op},
		run: func(tr *trace, input any) (any, error) {
			cur := input
			for i := 0; i < count; i++ {
				var err error
				if cur, err = callChild(tr, op, cur); err != nil {
					return nil, err
				}
			}

			return cur, nil
		},
	}, nil
}
