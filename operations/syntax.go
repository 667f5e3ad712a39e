package operations

// Node is a deferred, unvalidated expression over operations. Building nodes
// with Then and And never validates; all type checking happens once, when the
// node is materialized into an Operation.
//
// Nodes hold no state besides structure, so a node may be materialized any
// number of times and reused as a sub-expression of other nodes.
type Node struct {
	op       *Operation // leaf
	kind     nodeKind
	children []*Node
}

type nodeKind uint8

const (
	nodeLeaf nodeKind = iota
	nodeCompose
	nodeConcatenate
)

// NewNode wraps a value as a syntax node. Operations and nodes are taken
// as-is; any other value is wrapped as a constant operation via ToOperation.
func NewNode(v any) *Node {
	switch x := v.(type) {
	case *Node:
		return x
	case *Operation:
		return &Node{kind: nodeLeaf, op: x}
	default:
		return &Node{kind: nodeLeaf, op: NewConst(x)}
	}
}

// ToOperation coerces a value to an operation: operations are returned
// as-is, nodes are materialized, and any other value becomes a constant
// operation returning it.
func ToOperation(v any) (*Operation, error) {
	switch x := v.(type) {
	case *Operation:
		return x, nil
	case *Node:
		return x.Materialize()
	default:
		return NewConst(x), nil
	}
}

// Then defers sequential composition: the node's output feeds v.
func (n *Node) Then(v any) *Node {
	return &Node{kind: nodeCompose, children: []*Node{n, NewNode(v)}}
}

// And defers parallel concatenation of the node with v.
func (n *Node) And(v any) *Node {
	return &Node{kind: nodeConcatenate, children: []*Node{n, NewNode(v)}}
}

// Then defers sequential composition: the operation's output feeds v.
// Validation is performed when the resulting node is materialized.
func (o *Operation) Then(v any) *Node {
	return NewNode(o).Then(v)
}

// And defers parallel concatenation of the operation with v.
// Validation is performed when the resulting node is materialized.
func (o *Operation) And(v any) *Node {
	return NewNode(o).And(v)
}

// Materialize assembles the deferred expression into an Operation,
// validating every combination. Nested nodes of the same kind are flattened
// first, so a chain built pairwise materializes into one flat combinator
// regardless of grouping.
func (n *Node) Materialize() (*Operation, error) {
	if n.kind == nodeLeaf {
		return n.op, nil
	}

	parts := n.flatten()
	ops := make([]*Operation, len(parts))
	for i, p := range parts {
		op, err := p.Materialize()
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}

	if n.kind == nodeCompose {
		return NewCompose(ops...)
	}

	return NewConcatenate(ops...)
}

// flatten splices children of the same kind into a single level.
func (n *Node) flatten() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.kind == n.kind {
			out = append(out, c.flatten()...)
			continue
		}
		out = append(out, c)
	}

	return out
}

// Call materializes the node and calls the resulting operation.
func (n *Node) Call(input any) (any, error) {
	op, err := n.Materialize()
	if err != nil {
		return nil, err
	}

	return op.Call(input)
}
