package gp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/adaptive-psych/psygo/pkg/errors"
	"github.com/adaptive-psych/psygo/pkg/log"
)

// RejectionRatio is the conventional minimum ratio of draw budget to target
// accepted count. Falling below it is warned about, never rejected: the
// ratio trades compute for acceptance-rate robustness.
const RejectionRatio = 20

// RejectionSampler draws joint posterior samples and discards any draw
// whose value at a constrained index is negative, yielding samples from the
// monotonicity-constrained posterior. No closed-form monotonic-GP posterior
// exists, so acceptance sampling is the estimator of record.
type RejectionSampler struct {
	// NumSamples is the target accepted count.
	NumSamples int

	// NumRejectionSamples is the draw budget, spent in one batch.
	NumRejectionSamples int

	// ConstrainedIdx are the indices, within the sampled point set, whose
	// values must be non-negative in every accepted draw.
	ConstrainedIdx []int

	// Logger receives shortfall telemetry. Nil uses the default logger.
	Logger log.Logger
}

// NewRejectionSampler creates a sampler with the given target, budget, and
// constrained indices.
func NewRejectionSampler(numSamples, numRejectionSamples int, constrainedIdx []int) *RejectionSampler {
	return &RejectionSampler{
		NumSamples:          numSamples,
		NumRejectionSamples: numRejectionSamples,
		ConstrainedIdx:      constrainedIdx,
	}
}

// Sample draws the full budget from the posterior, keeps draws whose
// constrained coordinates are all non-negative, and returns the first
// NumSamples accepted draws as rows. A shortfall degrades gracefully: the
// accepted draws are returned with a warning. Only a completely empty
// acceptance set is an error, since downstream moments would be undefined.
func (s *RejectionSampler) Sample(posterior JointSampler) (*mat.Dense, error) {
	if s.NumSamples <= 0 {
		return nil, errors.NewValidationError("num_samples", "target sample count must be positive", s.NumSamples)
	}
	if s.NumRejectionSamples < s.NumSamples {
		return nil, errors.NewValidationError("num_rejection_samples",
			"draw budget must be at least the target sample count", s.NumRejectionSamples)
	}

	draws, err := posterior.DrawJointSamples(s.NumRejectionSamples)
	if err != nil {
		return nil, err
	}

	_, cols := draws.Dims()
	accepted := make([]int, 0, s.NumSamples)
	for i := 0; i < s.NumRejectionSamples && len(accepted) < s.NumSamples; i++ {
		row := draws.RawRowView(i)
		ok := true
		for _, idx := range s.ConstrainedIdx {
			if row[idx] < 0 {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, i)
		}
	}

	if len(accepted) == 0 {
		return nil, errors.NewModelError("RejectionSampler.Sample",
			"every draw violated the monotonicity constraint; increase num_rejection_samples",
			errors.ErrNoAcceptedSamples)
	}

	if len(accepted) < s.NumSamples {
		w := errors.NewSamplingShortfallWarning(s.NumSamples, len(accepted), s.NumRejectionSamples)
		errors.Warn(w)
		logger := s.Logger
		if logger == nil {
			logger = log.GetLogger()
		}
		logger.Warn("rejection sampling shortfall",
			log.RequestedKey, s.NumSamples,
			log.AcceptedKey, len(accepted),
			log.BudgetKey, s.NumRejectionSamples,
		)
	}

	out := mat.NewDense(len(accepted), cols, nil)
	for r, idx := range accepted {
		out.SetRow(r, draws.RawRowView(idx))
	}
	return out, nil
}
