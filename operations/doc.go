/*
Package operations provides typed, composable operations: units of
computation that declare the shape of the values they accept and produce as
type trees, and that combine into larger operations under a small, closed
algebra.

# Operations API

The Operations API enables:
  - Defining reusable leaf operations with versioning and explicit type trees
  - Combining operations sequentially, in parallel, by branching and by repetition
  - Deferring composition through an operator-style syntax surface
  - Executing operation trees with retry logic, memoization and full traces

# Core Components

Operation:
  - An immutable unit of computation with input and output type trees
  - Validates its input before running and its own output after running
  - Created as a leaf by NewOperation, NewPass, NewConst, NewEmpty or NewPick

Combinators:
  - NewCompose chains operations so each output feeds the next input
  - NewConcatenate runs operations in parallel over one shared input
  - NewSwitch selects exactly one branch by a discriminant field
  - NewCycle applies an operation to its own output a fixed number of times
  - All type checking happens at construction, never at call time

Syntax Nodes:
  - Then and And build deferred, unvalidated expressions
  - Materialize flattens and assembles the expression, validating once

Registry:
  - Stores and retrieves leaf operations by ID and version
  - Enables operation lookup and reuse when assembling compositions

Executor:
  - Executes operation trees with configurable retry policies
  - Skips versioned leaf operations that already succeeded with the same input
  - Records one report per executed node under a shared run ID

Reporter:
  - Tracks execution results and metadata per node
  - Reconstructs full execution traces from child report IDs

# Basic Usage

	// Define a leaf operation
	double := operations.NewOperation(
		"double", semver.MustParse("1.0.0"), "doubles x",
		typetree.Path("x", typetree.Leaf[int]()),
		typetree.Path("x", typetree.Leaf[int]()),
		func(input any) (any, error) {
			obj := input.(operations.Object)
			return operations.Object{"x": obj["x"].(int) * 2}, nil
		},
	)

	// Compose and call
	op, err := double.Then(double).Materialize()
	out, err := op.Call(operations.Object{"x": 2})

	// Or execute with reports
	bundle := operations.NewBundle(context.Background, lggr, operations.NewMemoryReporter())
	report, err := operations.ExecuteOperation(bundle, op, operations.Object{"x": 2})
*/
package operations
