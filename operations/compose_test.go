package operations

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewCompose(t *testing.T) {
	t.Parallel()

	op, err := NewCompose(newDoubleOp(), newIncOp())
	require.NoError(t, err)

	assert.Equal(t, "compose", op.ID())
	assert.Empty(t, op.Version())
	assert.Equal(t, "2 steps", op.Description())
	assert.Equal(t, KindCompose, op.Kind())
	assert.Equal(t, "{x: int}", op.InputTree().String())
	assert.Equal(t, "{x: int}", op.OutputTree().String())
	require.Len(t, op.Children(), 2)

	out, err := op.Call(Object{"x": 3})
	require.NoError(t, err)
	assert.Equal(t, Object{"x": 7}, out)
}

func Test_NewCompose_SingleOperation(t *testing.T) {
	t.Parallel()

	op, err := NewCompose(newDoubleOp())
	require.NoError(t, err)

	out, err := op.Call(Object{"x": 3})
	require.NoError(t, err)
	assert.Equal(t, Object{"x": 6}, out)
}

func Test_NewCompose_Empty(t *testing.T) {
	t.Parallel()

	_, err := NewCompose()
	require.Error(t, err)
	assert.ErrorContains(t, err, "cannot compose: requires at least one operation")
}

func Test_NewCompose_NilPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		_, _ = NewCompose(newDoubleOp(), nil)
	})
}

func Test_NewCompose_TypeMismatch(t *testing.T) {
	t.Parallel()

	// promote produces {y: int}, double consumes {x: int}
	_, err := NewCompose(newDoubleOp(), newPromoteOp(), newDoubleOp())
	require.Error(t, err)
	assert.ErrorContains(t, err,
		`cannot compose at position 2: output of "promote" does not feed input of "double"`)

	var cerr *CompositionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, KindCompose, cerr.Combinator)
	assert.Equal(t, 2, cerr.Position)
	assert.Equal(t, "{y: int}", cerr.Upstream.String())
	assert.Equal(t, "{x: int}", cerr.Downstream.String())
}

func Test_Compose_Associativity(t *testing.T) {
	t.Parallel()

	a, b, c := newDoubleOp(), newIncOp(), newDoubleOp()

	ab, err := NewCompose(a, b)
	require.NoError(t, err)
	leftNested, err := NewCompose(ab, c)
	require.NoError(t, err)

	bc, err := NewCompose(b, c)
	require.NoError(t, err)
	rightNested, err := NewCompose(a, bc)
	require.NoError(t, err)

	flat, err := NewCompose(a, b, c)
	require.NoError(t, err)

	for _, op := range []*Operation{leftNested, rightNested, flat} {
		assert.Equal(t, "{x: int}", op.InputTree().String())
		assert.Equal(t, "{x: int}", op.OutputTree().String())

		out, err := op.Call(Object{"x": 2})
		require.NoError(t, err)
		assert.Equal(t, Object{"x": 10}, out)
	}
}

func Test_Compose_Identity(t *testing.T) {
	t.Parallel()

	pass := NewPass(xTree)
	double := newDoubleOp()

	leftUnit, err := NewCompose(pass, double)
	require.NoError(t, err)
	rightUnit, err := NewCompose(double, pass)
	require.NoError(t, err)

	for _, op := range []*Operation{leftUnit, rightUnit, double} {
		assert.Equal(t, "{x: int}", op.InputTree().String())
		assert.Equal(t, "{x: int}", op.OutputTree().String())

		out, err := op.Call(Object{"x": 3})
		require.NoError(t, err)
		assert.Equal(t, Object{"x": 6}, out)
	}
}

func Test_Compose_ErrorStopsChain(t *testing.T) {
	t.Parallel()

	handlerErr := errors.New("boom")
	failing := NewOperation("failing", semver.MustParse("1.0.0"), "always fails", xTree, xTree,
		func(input any) (any, error) {
			return nil, handlerErr
		})

	downstreamCalled := 0
	downstream := NewOperation("downstream", semver.MustParse("1.0.0"), "counts calls", xTree, xTree,
		func(input any) (any, error) {
			downstreamCalled++

			return input, nil
		})

	op, err := NewCompose(failing, downstream)
	require.NoError(t, err)

	_, err = op.Call(Object{"x": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, handlerErr)
	assert.Equal(t, 0, downstreamCalled)
}
