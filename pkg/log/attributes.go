// Package log defines standard attribute keys for model operations.
//
// Using these keys consistently across fit, update, sample, and predict
// makes experiment logs filterable: every record carries the model name,
// the operation, and the data or sampler shape involved.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type.
	// Example: "MonotonicRejectionGP"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "update", "sample", "predict", "from_config"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "gp", "core/model"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of training rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the stimulus dimensionality.
	FeaturesKey = "data.features"

	// QueryPointsKey is the number of query rows in a sample/predict call.
	QueryPointsKey = "data.query_points"
)

// Variational fit telemetry.
const (
	// InducingKey is the number of inducing points.
	InducingKey = "gp.num_inducing"

	// ELBOKey is the (positive) evidence lower bound after fitting.
	ELBOKey = "gp.elbo"

	// IterationsKey is the number of optimizer iterations consumed.
	IterationsKey = "gp.iterations"

	// WarmStartKey records whether a fit was seeded from a prior snapshot.
	WarmStartKey = "gp.warm_start"
)

// Rejection sampler telemetry.
const (
	// RequestedKey is the number of accepted samples requested.
	RequestedKey = "sampler.requested"

	// AcceptedKey is the number of draws that satisfied the constraint.
	AcceptedKey = "sampler.accepted"

	// BudgetKey is the rejection draw budget.
	BudgetKey = "sampler.budget"

	// ConstraintPointsKey is the number of derivative constraint points.
	ConstraintPointsKey = "sampler.constraint_points"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)
