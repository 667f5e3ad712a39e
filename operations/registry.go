package operations

import (
	"errors"
	"fmt"
)

var ErrOperationNotFound = errors.New("operation not found in registry")

// OperationRegistry is a store for leaf operations that allows retrieval
// based on their definitions.
type OperationRegistry struct {
	ops []*Operation
}

// NewOperationRegistry creates a new empty OperationRegistry.
func NewOperationRegistry() *OperationRegistry {
	return &OperationRegistry{}
}

// Register adds leaf operations to the registry. Only versioned leaf
// operations are reusable by definition; operations built by combinators
// are rejected.
func (r *OperationRegistry) Register(ops ...*Operation) error {
	for _, op := range ops {
		if op.Kind() != KindLeaf {
			return fmt.Errorf("operation %q: only leaf operations can be registered", op.ID())
		}
		if op.def.Version == nil {
			return fmt.Errorf("operation %q: a version is required to register", op.ID())
		}
	}
	r.ops = append(r.ops, ops...)

	return nil
}

// Retrieve retrieves an operation from the store based on its definition.
// It returns an error if the operation is not found.
// The definition must match the operation's ID and version.
func (r *OperationRegistry) Retrieve(def Definition) (*Operation, error) {
	if def.Version == nil {
		return nil, fmt.Errorf("operation %q: definition version is required", def.ID)
	}
	for _, op := range r.ops {
		if op.ID() == def.ID && op.Version() == def.Version.String() {
			return op, nil
		}
	}

	return nil, fmt.Errorf("operation %s v%s: %w", def.ID, def.Version, ErrOperationNotFound)
}
