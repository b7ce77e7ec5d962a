package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for models trained on a full dataset.
type Fitter interface {
	// Fit trains the model on training data. y must be a column of
	// responses with one row per row of X.
	Fit(X mat.Matrix, y *mat.VecDense) error
}

// Updater is the interface for models that can be refit as trials accumulate.
// Update expects the complete dataset each call, not an incremental delta;
// warm starting only reuses the current parameters as the starting point.
type Updater interface {
	Update(X mat.Matrix, y *mat.VecDense, warmstart bool) error
}

// Predictor is the interface for posterior summaries at query points.
type Predictor interface {
	// Predict returns the posterior mean and variance at each row of X.
	// When probabilitySpace is true both are mapped through the link
	// function to response-probability units.
	Predict(X mat.Matrix, probabilitySpace bool) (mean, variance *mat.VecDense, err error)
}

// Sampler is the interface for drawing joint posterior function samples.
type Sampler interface {
	// Sample returns numSamples draws of the latent function at the rows
	// of X, one draw per row of the result.
	Sample(X mat.Matrix, numSamples int) (*mat.Dense, error)
}

// PerceptualModel is the contract the experiment-strategy layer consumes:
// accumulate trial data, refit after each batch, and query the posterior to
// choose the next stimulus.
type PerceptualModel interface {
	Fitter
	Updater
	Predictor
	Sampler
}
