package bayopt

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//////
// Surrogate contract.
//////

// Surrogate is a trainable probabilistic model of an unknown objective
// function. It is the model side of the Bayesian-optimization loop: fit it
// on observed (candidate, outcome) pairs, then query its posterior belief
// over un-observed candidates.
//
// Lifecycle:
//   - Constructed untrained.
//   - Fit transitions it to trained. Re-fitting overwrites the model state;
//     statistics never accumulate across independent Fit calls.
//   - Posterior may be called any number of times once trained and is
//     side-effect free.
//
// Concurrency contract: single writer, multiple readers. Posterior never
// mutates model state, so concurrent Posterior calls on the same trained
// instance are safe. Fit is an exclusive-writer operation; the caller must
// serialize it against concurrent Posterior calls. No internal locking is
// provided.
type Surrogate interface {
	// Fit trains the model on the encoded candidates (one row per
	// observation) and their outcomes. It validates that the search space
	// matches the model's structural requirements and returns an
	// IncompatibleSearchSpaceError if not.
	Fit(candidates mat.Matrix, outcomes []float64, space *SearchSpace) error

	// Posterior returns the model's posterior-predictive belief over
	// outcomes at the given candidates, one distribution per row. Returns a
	// ModelNotTrainedError if called before Fit.
	Posterior(candidates mat.Matrix) (Posterior, error)

	// JointPosterior reports whether candidates in a batch are modeled with
	// correlated uncertainty. A static property of the modeling choice, not
	// a computed value.
	JointPosterior() bool

	// SupportsTransferLearning reports whether multiple related tasks can
	// share the model's statistics. Also a static property.
	SupportsTransferLearning() bool

	// Name returns the surrogate's identifier, used in error messages.
	Name() string
}

//////
// Shared base.
//////

// baseSurrogate carries the state common to all concrete surrogates: the
// trained flag, the search space the model was trained against, and a cache
// of the training inputs. Concrete surrogates embed it and call cacheFit at
// the end of a successful Fit.
type baseSurrogate struct {
	name string

	fitted bool

	space *SearchSpace

	// trainX and trainY are deep copies of the last training inputs. Kept so
	// orchestration code can rebuild scorers without re-threading the data.
	trainX *mat.Dense
	trainY []float64
}

// cacheFit stores copies of the training inputs and marks the model trained.
// Called with inputs that already passed validation.
func (b *baseSurrogate) cacheFit(candidates mat.Matrix, outcomes []float64, space *SearchSpace) {
	b.trainX = mat.DenseCopyOf(candidates)
	b.trainY = append([]float64(nil), outcomes...)
	b.space = space
	b.fitted = true
}

// isFitted reports whether Fit completed successfully at least once.
func (b *baseSurrogate) isFitted() bool { return b.fitted }

// notTrained builds the error returned by posterior queries on an untrained
// model.
func (b *baseSurrogate) notTrained() error {
	return &ModelNotTrainedError{Model: b.name}
}

// Name returns the surrogate's identifier.
func (b *baseSurrogate) Name() string { return b.name }

// TrainingData returns the cached training inputs of the last Fit call.
// Returns a ModelNotTrainedError if the model has not been trained.
func (b *baseSurrogate) TrainingData() (*mat.Dense, []float64, error) {
	if !b.fitted {
		return nil, nil, b.notTrained()
	}

	return b.trainX, b.trainY, nil
}

// TrainedAgainst returns the search space of the last Fit call, or nil if
// the model has not been trained.
func (b *baseSurrogate) TrainedAgainst() *SearchSpace { return b.space }

//////
// Helper functions.
//////

// validateTrainingData checks the shared structural requirements on training
// inputs: a non-empty candidate matrix, one outcome per candidate row, and a
// non-nil search space.
func validateTrainingData(candidates mat.Matrix, outcomes []float64, space *SearchSpace) error {
	if space == nil {
		return fmt.Errorf("search space is required for training")
	}

	rows, _ := candidates.Dims()
	if rows == 0 {
		return fmt.Errorf("training requires at least one observation")
	}

	if rows != len(outcomes) {
		return fmt.Errorf(
			"training data mismatch: %d candidate rows, %d outcomes",
			rows, len(outcomes),
		)
	}

	return nil
}
