package operations

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewReport(t *testing.T) {
	t.Parallel()

	op := newDoubleOp()

	report := NewReport(op, "run-1", Object{"x": 1}, Object{"x": 2}, nil, "child-1")

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, op.Def(), report.Def)
	assert.Equal(t, KindLeaf, report.Kind)
	assert.Equal(t, Object{"x": 1}, report.Input)
	assert.Equal(t, Object{"x": 2}, report.Output)
	assert.Same(t, op.InputTree(), report.InputTree)
	assert.Same(t, op.OutputTree(), report.OutputTree)
	require.NotNil(t, report.Timestamp)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, []string{"child-1"}, report.ChildReports)
	assert.Nil(t, report.Err)

	failed := NewReport(op, "run-1", Object{"x": 1}, nil, errors.New("boom"))
	require.NotNil(t, failed.Err)
	assert.Equal(t, "boom", failed.Err.Message)
	assert.EqualError(t, failed.Err, "boom")
}

func Test_MemoryReporter(t *testing.T) {
	t.Parallel()

	reporter := NewMemoryReporter()
	report := NewReport(newDoubleOp(), "run-1", Object{"x": 1}, Object{"x": 2}, nil)

	require.NoError(t, reporter.AddReport(report))

	got, err := reporter.GetReport(report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)

	_, err = reporter.GetReport("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportNotFound)

	reports, err := reporter.GetReports()
	require.NoError(t, err)
	require.Len(t, reports, 1)

	// mutating the returned slice leaves the reporter untouched
	reports[0] = Report{}
	got, err = reporter.GetReport(report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
}

func Test_MemoryReporter_WithReports(t *testing.T) {
	t.Parallel()

	seed := NewReport(newIncOp(), "run-0", Object{"x": 1}, Object{"x": 2}, nil)
	reporter := NewMemoryReporter(WithReports([]Report{seed}))

	got, err := reporter.GetReport(seed.ID)
	require.NoError(t, err)
	assert.Equal(t, seed.ID, got.ID)
}

func Test_MemoryReporter_GetExecutionReports(t *testing.T) {
	t.Parallel()

	op := newDoubleOp()
	reporter := NewMemoryReporter()

	childA := NewReport(op, "run-1", Object{"x": 1}, Object{"x": 2}, nil)
	childB := NewReport(op, "run-1", Object{"x": 2}, Object{"x": 4}, nil)
	root := NewReport(op, "run-1", Object{"x": 1}, Object{"x": 4}, nil, childA.ID, childB.ID)

	for _, r := range []Report{root, childA, childB} {
		require.NoError(t, reporter.AddReport(r))
	}

	reports, err := reporter.GetExecutionReports(root.ID)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, childA.ID, reports[0].ID)
	assert.Equal(t, childB.ID, reports[1].ID)
	assert.Equal(t, root.ID, reports[2].ID)

	// a dangling child reference fails the walk
	orphan := NewReport(op, "run-2", Object{"x": 1}, Object{"x": 2}, nil, "missing-child")
	require.NoError(t, reporter.AddReport(orphan))

	_, err = reporter.GetExecutionReports(orphan.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func Test_Report_JSON(t *testing.T) {
	t.Parallel()

	report := NewReport(newDoubleOp(), "run-1", Object{"x": 3}, Object{"x": 6}, errors.New("boom"))

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"inputTree":{"x":"int"}`)
	assert.Contains(t, string(data), `"version":"1.0.0"`)
	assert.Contains(t, string(data), `"error":{"message":"boom"}`)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, "double", got.Def.ID)
	assert.Equal(t, "1.0.0", got.Def.Version.String())
	assert.Equal(t, "{x: int}", got.InputTree.String())
	assert.Equal(t, "{x: int}", got.OutputTree.String())
	assert.Equal(t, report.RunID, got.RunID)
	require.NotNil(t, got.Err)
	assert.Equal(t, "boom", got.Err.Message)
}
