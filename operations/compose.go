package operations

import (
	"errors"
	"fmt"
	"slices"
)

// NewCompose creates the sequential composition of ops: each operation's
// output feeds the next operation's input, left to right. The composition
// accepts what the first operation accepts and produces what the last one
// produces.
//
// Every adjacent output/input tree pair must be compatible; a mismatch fails
// immediately with a *CompositionError identifying the position and both
// trees. At least one operation is required.
func NewCompose(ops ...*Operation) (*Operation, error) {
	if len(ops) == 0 {
		return nil, &CompositionError{
			Combinator: KindCompose,
			Err:        errors.New("requires at least one operation"),
		}
	}
	for _, op := range ops {
		if op == nil {
			panic("operations: nil operation")
		}
	}

	for i := 0; i < len(ops)-1; i++ {
		if !ops[i].out.Compatible(ops[i+1].in) {
			return nil, &CompositionError{
				Combinator: KindCompose,
				Position:   i + 1,
				Upstream:   ops[i].out,
				Downstream: ops[i+1].in,
				Err: fmt.Errorf("output of %q does not feed input of %q",
					ops[i].def.ID, ops[i+1].def.ID),
			}
		}
	}

	children := slices.Clone(ops)

	return &Operation{
		def: Definition{
			ID:          string(KindCompose),
			Description: fmt.Sprintf("%d steps", len(children)),
		},
		kind:     KindCompose,
		in:       children[0].in,
		out:      children[len(children)-1].out,
		children: children,
		run: func(tr *trace, input any) (any, error) {
			cur := input
			for _, child := range children {
				var err error
				if cur, err = callChild(tr, child, cur); err != nil {
					return nil, err
				}
			}

			return cur, nil
		},
	}, nil
}
