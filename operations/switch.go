package operations

import (
	"errors"
	"fmt"
	"slices"

	"github.com/proplib/prop/internal/objects"
	"github.com/proplib/prop/typetree"
)

// Case associates a discriminant value with the operation to run when the
// switch input carries that value.
type Case struct {
	// When is the discriminant value this case matches, compared by deep
	// equality.
	When any
	// Op runs when the case is selected.
	Op *Operation
}

type switchConfig struct {
	defaultOp *Operation
}

// SwitchOption is a functional option for configuring a switch.
type SwitchOption func(*switchConfig)

// WithDefault sets the operation to run when no case matches the
// discriminant value.
func WithDefault(op *Operation) SwitchOption {
	return func(c *switchConfig) {
		c.defaultOp = op
	}
}

// NewSwitch creates a branching operation. At call time the discriminant is
// read from the input at the dotted key path and exactly one case runs: the
// first whose value deep-equals the discriminant, or the default if none
// does. Without a default, an unmatched discriminant fails with an
// *UnmatchedCaseError. No other case is ever evaluated.
//
// The input tree is the union of the case input trees plus the required
// discriminant field at key; the output tree covers the case output trees,
// which must all share one shape: wherever one case declares the Any wildcard
// and another a concrete tag, the wildcard wins. Conflicts fail immediately
// with a *CompositionError.
func NewSwitch(key string, cases []Case, opts ...SwitchOption) (*Operation, error) {
	if key == "" {
		return nil, &CompositionError{
			Combinator: KindSwitch,
			Err:        errors.New("discriminant key must not be empty"),
		}
	}
	if len(cases) == 0 {
		return nil, &CompositionError{
			Combinator: KindSwitch,
			Err:        errors.New("requires at least one case"),
		}
	}

	cfg := &switchConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	children := make([]*Operation, 0, len(cases)+1)
	for _, c := range cases {
		if c.Op == nil {
			panic("operations: nil operation")
		}
		children = append(children, c.Op)
	}
	if cfg.defaultOp != nil {
		children = append(children, cfg.defaultOp)
	}

	in := typetree.Path(key, typetree.Any())
	for i, op := range children {
		merged, err := in.Union(op.in)
		if err != nil {
			return nil, &CompositionError{
				Combinator: KindSwitch,
				Position:   i,
				Upstream:   in,
				Downstream: op.in,
				Err:        fmt.Errorf("input of case %d: %w", i, err),
			}
		}
		in = merged
	}

	out := children[0].out
	for i := 1; i < len(children); i++ {
		merged, err := out.Cover(children[i].out)
		if err != nil {
			return nil, &CompositionError{
				Combinator: KindSwitch,
				Position:   i,
				Upstream:   out,
				Downstream: children[i].out,
				Err:        fmt.Errorf("output of case %d: %w", i, err),
			}
		}
		out = merged
	}

	cs := slices.Clone(cases)
	defaultOp := cfg.defaultOp

	desc := fmt.Sprintf("switches on %q across %d cases", key, len(cs))
	if defaultOp != nil {
		desc += " and a default"
	}

	return &Operation{
		def:      Definition{ID: string(KindSwitch), Description: desc},
		kind:     KindSwitch,
		in:       in,
		out:      out,
		children: children,
		run: func(tr *trace, input any) (any, error) {
			// The input tree is a branch containing the discriminant path,
			// so the conformed input carries it.
			obj := input.(map[string]any)
			disc, _ := objects.Get(obj, key)

			for _, c := range cs {
				if objects.Equal(c.When, disc) {
					return callChild(tr, c.Op, input)
				}
			}
			if defaultOp != nil {
				return callChild(tr, defaultOp, input)
			}

			return nil, &UnmatchedCaseError{Key: key, Value: disc}
		},
	}, nil
}
