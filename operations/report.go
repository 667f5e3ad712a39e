package operations

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/proplib/prop/typetree"
)

// Report is the result of executing one node of an operation tree.
// It contains the input, output and other metadata that was used to execute
// the operation.
type Report struct {
	ID  string     `json:"id"`
	Def Definition `json:"definition"`
	// Kind of the executed node: a leaf operation or one of the combinators.
	Kind       Kind           `json:"kind"`
	Input      any            `json:"input"`
	Output     any            `json:"output"`
	InputTree  *typetree.Tree `json:"inputTree"`
	OutputTree *typetree.Tree `json:"outputTree"`
	Timestamp  *time.Time     `json:"timestamp"`
	Err        *ReportError   `json:"error"`
	// RunID groups every report recorded during one ExecuteOperation call.
	RunID string `json:"runID"`
	// ChildReports lists the report IDs of the children executed by this
	// node, in execution order. Children skipped through memoization are not
	// listed.
	ChildReports []string `json:"childReports"`
	// Forced indicates the node was executed even though a previous
	// successful run with the same input existed.
	Forced bool `json:"forced,omitempty"`
}

// NewReport creates a new report for one executed node.
func NewReport(op *Operation, runID string, input, output any, err error, childIDs ...string) Report {
	now := time.Now()
	r := Report{
		ID:           uuid.New().String(),
		Def:          op.Def(),
		Kind:         op.Kind(),
		Input:        input,
		Output:       output,
		InputTree:    op.InputTree(),
		OutputTree:   op.OutputTree(),
		Timestamp:    &now,
		RunID:        runID,
		ChildReports: childIDs,
	}
	if err != nil {
		r.Err = &ReportError{Message: err.Error()}
	}

	return r
}

// ReportError represents an error in the Report.
// Its purpose is to have an exported field `Message` for marshalling as the
// native error cant be marshaled to JSON.
type ReportError struct {
	Message string `json:"message"`
}

// Error implements the error interface.
func (o ReportError) Error() string {
	return o.Message
}

var ErrReportNotFound = errors.New("report not found")

// Reporter manages reports. It can store them in memory, in the FS, etc.
type Reporter interface {
	GetReport(id string) (Report, error)
	GetReports() ([]Report, error)
	AddReport(report Report) error
	GetExecutionReports(reportID string) ([]Report, error)
}

// MemoryReporter stores reports in memory.
// This is thread-safe and can be used in a multi-threaded environment.
type MemoryReporter struct {
	reports []Report
	mu      sync.RWMutex
}

type MemoryReporterOption func(*MemoryReporter)

// WithReports is an option to initialize the MemoryReporter with a list of reports.
func WithReports(reports []Report) MemoryReporterOption {
	return func(mr *MemoryReporter) {
		mr.reports = reports
	}
}

// NewMemoryReporter creates a new MemoryReporter.
// It can be initialized with a list of reports using the WithReports option.
func NewMemoryReporter(options ...MemoryReporterOption) *MemoryReporter {
	reporter := &MemoryReporter{}
	for _, opt := range options {
		opt(reporter)
	}

	return reporter
}

// AddReport adds a report to the memory reporter.
func (e *MemoryReporter) AddReport(report Report) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reports = append(e.reports, report)

	return nil
}

// GetReports returns all reports.
func (e *MemoryReporter) GetReports() ([]Report, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	// Create a copy to avoid data races after returning
	reports := make([]Report, len(e.reports))
	copy(reports, e.reports)

	return reports, nil
}

// GetReport returns a report by ID.
// Returns ErrReportNotFound if the report is not found.
func (e *MemoryReporter) GetReport(id string) (Report, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, report := range e.reports {
		if report.ID == id {
			return report, nil
		}
	}

	return Report{}, fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
}

// GetExecutionReports returns every report recorded under the given root
// report, including itself, by recursively fetching all the child reports.
// Children appear before the node that executed them.
func (e *MemoryReporter) GetExecutionReports(rootID string) ([]Report, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var allReports []Report

	var getReportsRecursively func(id string) error
	getReportsRecursively = func(id string) error {
		var report Report
		found := false

		for _, r := range e.reports {
			if r.ID == id {
				report = r
				found = true

				break
			}
		}

		if !found {
			return fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
		}

		for _, childID := range report.ChildReports {
			if err := getReportsRecursively(childID); err != nil {
				return err
			}
		}
		allReports = append(allReports, report)

		return nil
	}

	if err := getReportsRecursively(rootID); err != nil {
		return nil, err
	}

	return allReports, nil
}
