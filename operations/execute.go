package operations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/segmentio/ksuid"

	"github.com/proplib/prop/internal/objects"
	"github.com/proplib/prop/pkg/logger"
)

// Bundle contains the dependencies required to execute operations.
// It contains the Logger, Reporter and the context.
// Use NewBundle to create a new Bundle.
type Bundle struct {
	Logger     logger.Logger
	GetContext func() context.Context
	reporter   Reporter
	// internal use only, for storing the hash of the report to avoid repeat sha256 computation.
	reportHashCache   *sync.Map
	OperationRegistry *OperationRegistry
}

// BundleOption is a functional option for configuring a Bundle
type BundleOption func(*Bundle)

// WithOperationRegistry sets a custom OperationRegistry for the Bundle
func WithOperationRegistry(registry *OperationRegistry) BundleOption {
	return func(b *Bundle) {
		b.OperationRegistry = registry
	}
}

// NewBundle creates and returns a new Bundle.
func NewBundle(getContext func() context.Context, lggr logger.Logger, reporter Reporter, opts ...BundleOption) Bundle {
	b := Bundle{
		Logger:            lggr,
		GetContext:        getContext,
		reporter:          reporter,
		reportHashCache:   &sync.Map{},
		OperationRegistry: NewOperationRegistry(),
	}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

// ExecuteConfig is the configuration for the ExecuteOperation function.
type ExecuteConfig struct {
	retryConfig RetryConfig
	force       bool
}

type ExecuteOption func(*ExecuteConfig)

type RetryConfig struct {
	// Enabled determines if the retry is enabled for leaf operations.
	Enabled bool

	// Policy is the retry policy to control the behavior of the retry.
	Policy RetryPolicy

	// InputHook is a function that returns an updated input before retrying
	// the operation. The operation when retried will use the input returned
	// by this function.
	InputHook func(attempt uint, err error, input any) any
}

// newDisabledRetryConfig returns a default retry configuration that is initially disabled.
func newDisabledRetryConfig() RetryConfig {
	return RetryConfig{
		Enabled: false,
		Policy: RetryPolicy{
			MaxAttempts: 10,
		},
	}
}

// RetryPolicy defines the arguments to control the retry behavior.
type RetryPolicy struct {
	MaxAttempts uint
}

// options returns the 'avast/retry' functional options for the retry policy.
func (p RetryPolicy) options() []retry.Option {
	return []retry.Option{
		retry.Attempts(p.MaxAttempts),
	}
}

// WithRetry is an ExecuteOption that enables the default retry for leaf
// operations.
func WithRetry() ExecuteOption {
	return func(c *ExecuteConfig) {
		c.retryConfig.Enabled = true
	}
}

// WithRetryInput is an ExecuteOption that enables the default retry and
// provides an input transform function which will modify the input on each
// retry attempt.
func WithRetryInput(inputHookFunc func(uint, error, any) any) ExecuteOption {
	return func(c *ExecuteConfig) {
		c.retryConfig.Enabled = true
		c.retryConfig.InputHook = inputHookFunc
	}
}

// WithRetryConfig is an ExecuteOption that sets the retry configuration.
// This provides a way to customize the retry behavior specific to the needs
// of the operation. Use this for the most flexibility and control over the
// retry behavior.
func WithRetryConfig(config RetryConfig) ExecuteOption {
	return func(c *ExecuteConfig) {
		c.retryConfig = config
	}
}

// WithForce is an ExecuteOption that executes every node even when a
// previous successful run with the same input exists in the reporter.
func WithForce() ExecuteOption {
	return func(c *ExecuteConfig) {
		c.force = true
	}
}

// ExecuteOperation executes an operation tree with the given input and
// records one report per executed node in the bundle's reporter. The
// returned report is the root's; GetExecutionReports on the reporter walks
// the full trace. Every execution is tagged with a fresh run ID.
//
// Memoization:
// A versioned leaf operation that previously succeeded with the same input
// is not executed again; its recorded result is returned instead. Skipped
// nodes are not re-added to the reporter and are not listed as children.
// Use WithForce to bypass this. Operations built by combinators and the
// unversioned builtin leaves always execute.
//
// Retry:
// When enabled with WithRetry or WithRetryConfig, failing leaf operations
// are retried, by default up to 10 times. Combinator structure is never
// retried. Type contract violations are deterministic, so they fail fast
// without further attempts; to cancel retries early in a handler, return an
// error wrapped with NewUnrecoverableError.
func ExecuteOperation(b Bundle, op *Operation, input any, opts ...ExecuteOption) (Report, error) {
	cfg := &ExecuteConfig{
		retryConfig: newDisabledRetryConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tr := &trace{b: b, cfg: cfg, runID: ksuid.New().String()}
	_, report, err := tr.exec(op, input)

	return report, err
}

// NewUnrecoverableError creates an error that indicates an unrecoverable error.
// If this error is returned by a leaf operation, the execution will no longer retry.
// This allows the operation to fail fast if it encounters an unrecoverable error.
func NewUnrecoverableError(err error) error {
	return retry.Unrecoverable(err)
}

// trace walks an operation tree during execution, recording one report per
// executed node and collecting child report IDs for the enclosing node.
// A nil trace executes nothing extra: Call runs the tree directly.
type trace struct {
	b      Bundle
	cfg    *ExecuteConfig
	runID  string
	frames []*frame
}

type frame struct {
	childIDs []string
}

// callChild runs a child operation: through the trace during an execution,
// directly otherwise.
func callChild(tr *trace, op *Operation, input any) (any, error) {
	if tr == nil {
		return op.call(nil, input)
	}

	out, _, err := tr.exec(op, input)

	return out, err
}

func (tr *trace) exec(op *Operation, input any) (any, Report, error) {
	memoizable := op.kind == KindLeaf && op.def.Version != nil
	if memoizable && !tr.cfg.force {
		if prev, ok := tr.loadPreviousSuccess(op.def, input); ok {
			tr.b.Logger.Infow("Operation already executed. Returning previous result",
				"id", op.def.ID, "version", op.def.Version, "report_id", prev.ID)

			return objects.Clone(prev.Output), prev, nil
		}
	}

	tr.b.Logger.Infow("Executing operation",
		"id", op.def.ID, "kind", op.kind, "run_id", tr.runID)

	tr.frames = append(tr.frames, &frame{})
	out, err := tr.callWithRetry(op, input)
	f := tr.frames[len(tr.frames)-1]
	tr.frames = tr.frames[:len(tr.frames)-1]

	report := NewReport(op, tr.runID, input, out, err, f.childIDs...)
	report.Forced = tr.cfg.force && memoizable
	if addErr := tr.b.reporter.AddReport(report); addErr != nil {
		return nil, Report{}, addErr
	}
	if len(tr.frames) > 0 {
		parent := tr.frames[len(tr.frames)-1]
		parent.childIDs = append(parent.childIDs, report.ID)
	}

	if err != nil {
		return nil, report, err
	}

	return out, report, nil
}

// callWithRetry calls op through the retry policy when op is a leaf and
// retry is enabled.
func (tr *trace) callWithRetry(op *Operation, input any) (any, error) {
	cfg := tr.cfg.retryConfig
	if !cfg.Enabled || op.kind != KindLeaf {
		return op.call(tr, input)
	}

	var inputTemp = input

	// Generate the configurable options for the retry
	retryOpts := cfg.Policy.options()
	// Use the execution context in the retry
	retryOpts = append(retryOpts, retry.Context(tr.b.GetContext()))
	// Append the retry logic which will log the retry and attempt to transform the input
	// if the user provided a custom input hook.
	retryOpts = append(retryOpts, retry.OnRetry(func(attempt uint, err error) {
		tr.b.Logger.Infow("Operation failed. Retrying...",
			"operation", op.def.ID, "attempt", attempt, "error", err)

		if cfg.InputHook != nil {
			inputTemp = cfg.InputHook(attempt, err, inputTemp)
		}
	}))

	return retry.DoWithData(
		func() (any, error) {
			out, err := op.call(tr, inputTemp)
			if err != nil && !isRecoverable(err) {
				return out, retry.Unrecoverable(err)
			}

			return out, err
		},
		retryOpts...,
	)
}

// isRecoverable reports whether retrying could change the outcome. Contract
// violations are deterministic and fail fast.
func isRecoverable(err error) bool {
	var mismatchErr *TypeMismatchError
	var contractErr *InternalContractError

	return !errors.As(err, &mismatchErr) && !errors.As(err, &contractErr)
}

func (tr *trace) loadPreviousSuccess(def Definition, input any) (Report, bool) {
	prevReports, err := tr.b.reporter.GetReports()
	if err != nil {
		tr.b.Logger.Errorw("Failed to get reports", "error", err)
		return Report{}, false
	}

	currentHash, err := hashReportKey(def, input)
	if err != nil {
		tr.b.Logger.Debugw("Input not serializable. Skipping memoization",
			"id", def.ID, "error", err)
		return Report{}, false
	}

	for _, report := range prevReports {
		reportHash, err := tr.reportHash(report)
		if err != nil {
			continue
		}
		if reportHash == currentHash && report.Err == nil {
			tr.b.Logger.Debugw("Previous execution found. Returning its result from Report storage",
				"id", def.ID, "report_id", report.ID)

			return report, true
		}
	}

	// No previous execution was found
	return Report{}, false
}

// reportHash returns the identity hash of a stored report, caching the
// computation per report ID.
func (tr *trace) reportHash(report Report) (string, error) {
	if cached, ok := tr.b.reportHashCache.Load(report.ID); ok {
		return cached.(string), nil
	}

	hash, err := hashReportKey(report.Def, report.Input)
	if err != nil {
		return "", err
	}
	tr.b.reportHashCache.Store(report.ID, hash)

	return hash, nil
}

// hashReportKey produces a stable identity for a definition and input pair.
// encoding/json writes map keys in sorted order, making the hash canonical
// for object values.
func hashReportKey(def Definition, input any) (string, error) {
	payload, err := json.Marshal(struct {
		Def   Definition `json:"def"`
		Input any        `json:"input"`
	}{def, input})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)

	return hex.EncodeToString(sum[:]), nil
}
