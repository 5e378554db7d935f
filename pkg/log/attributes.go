package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of estimator.
	// Examples: "LinearRegression", "KMeans"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features per sample.
	FeaturesKey = "data.features"

	// ShapeKey records the full shape of a coerced input array.
	ShapeKey = "data.shape"

	// LabelsKey reports whether label data was stored at fit time.
	LabelsKey = "data.has_labels"
)

// Performance and Training
const (
	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// InertiaKey records the within-cluster sum of squares.
	InertiaKey = "metrics.inertia"

	// IterationKey records the number of iterations an algorithm ran.
	IterationKey = "training.iteration"
)

// Prediction
const (
	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// StacktraceKey contains stack trace information for debugging.
	// Populated automatically when an error carries a cockroachdb stack.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	ErrorNotFitted      = "NOT_FITTED"
	ErrorNotImplemented = "NOT_IMPLEMENTED"
	ErrorInvalidInput   = "INVALID_INPUT"
	ErrorConvergence    = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix = "SINGULAR_MATRIX"
)
