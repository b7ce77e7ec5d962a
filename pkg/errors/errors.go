// Package errors provides error handling and the warning system used across
// psygo. Validation failures are returned as structured errors with stack
// traces; recoverable conditions (optimizer non-convergence, rejection
// sampling shortfalls) are routed through a global warning handler instead of
// failing the experiment pipeline.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("psygo-warning: %v\n", w)
	}
	// zerolog sink, lazily wired to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the library-wide warning handler. Use this to
// silence or redirect warnings such as SamplingShortfallWarning:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc wires a zerolog-backed sink for warnings.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn raises a warning. The zerolog sink takes precedence when configured;
// otherwise the plain handler runs. Warnings are never silently swallowed.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// ConvergenceWarning is raised when an optimization procedure did not
// converge within its iteration budget. The best-effort parameters are kept.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing the iteration budget.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// SamplingShortfallWarning is raised when rejection sampling accepted fewer
// draws than requested before exhausting its budget. Downstream consumers
// receive the accepted draws and must tolerate the smaller count.
type SamplingShortfallWarning struct {
	Requested int
	Accepted  int
	Budget    int
}

func (w *SamplingShortfallWarning) Error() string {
	return fmt.Sprintf("rejection sampling accepted %d of %d requested samples within a budget of %d draws; returning the accepted draws",
		w.Accepted, w.Requested, w.Budget)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *SamplingShortfallWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("requested", w.Requested).
		Int("accepted", w.Accepted).
		Int("budget", w.Budget).
		Str("type", "SamplingShortfallWarning")
}

// NewSamplingShortfallWarning creates a new SamplingShortfallWarning.
func NewSamplingShortfallWarning(requested, accepted, budget int) *SamplingShortfallWarning {
	return &SamplingShortfallWarning{Requested: requested, Accepted: accepted, Budget: budget}
}

// RejectionBudgetWarning is raised when the rejection draw budget is below
// the recommended multiple of the requested sample count.
type RejectionBudgetWarning struct {
	NumSamples int
	Budget     int
	Ratio      int
}

func (w *RejectionBudgetWarning) Error() string {
	return fmt.Sprintf("num_rejection_samples (%d) should be at least %d times greater than num_samples (%d)",
		w.Budget, w.Ratio, w.NumSamples)
}

// MarshalZerologObject adds structured warning fields to a zerolog event.
func (w *RejectionBudgetWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("num_samples", w.NumSamples).
		Int("budget", w.Budget).
		Int("recommended_ratio", w.Ratio).
		Str("type", "RejectionBudgetWarning")
}

// NewRejectionBudgetWarning creates a new RejectionBudgetWarning.
func NewRejectionBudgetWarning(numSamples, budget, ratio int) *RejectionBudgetWarning {
	return &RejectionBudgetWarning{NumSamples: numSamples, Budget: budget, Ratio: ratio}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError is returned when an operation needs a fitted model.
// The monotonic GP deliberately allows prior-only prediction, so this error
// is reserved for operations that genuinely require training data.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("psygo: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a new NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when input data has an unexpected dimension.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("psygo: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when a parameter fails validation, naming the
// offending argument and the reason.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("psygo: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is invalid for an operation,
// such as an unknown extremum or JND method name.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("psygo: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general model-level error.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("psygo: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("psygo: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a new ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in the chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when empty data is supplied.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a covariance matrix cannot be factorized.
	ErrSingularMatrix = New("singular matrix")

	// ErrNoAcceptedSamples is returned when not a single posterior draw
	// satisfied the monotonicity constraint.
	ErrNoAcceptedSamples = New("no accepted samples")
)
