package operations

import (
	"fmt"
	"strings"
)

// Describe returns a multi-line report of an operation tree: per node one
// line of identity, its input and output trees, and its children indented
// beneath it. The rendering is deterministic for any given operation.
func Describe(op *Operation) string {
	var b strings.Builder
	describeAt(&b, op, 0)

	return b.String()
}

func describeAt(b *strings.Builder, op *Operation, depth int) {
	ind := strings.Repeat("  ", depth)

	b.WriteString(ind)
	b.WriteString(op.header())
	b.WriteByte('\n')
	fmt.Fprintf(b, "%s  in:  %s\n", ind, op.in)
	fmt.Fprintf(b, "%s  out: %s\n", ind, op.out)

	for _, child := range op.children {
		describeAt(b, child, depth+1)
	}
}

func (o *Operation) header() string {
	var b strings.Builder
	if o.kind == KindLeaf {
		fmt.Fprintf(&b, "operation %q", o.def.ID)
		if o.def.Version != nil {
			fmt.Fprintf(&b, " v%s", o.def.Version)
		}
	} else {
		b.WriteString(string(o.kind))
	}
	if o.def.Description != "" {
		b.WriteString(": ")
		b.WriteString(o.def.Description)
	}

	return b.String()
}
