package bayopt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//////
// Const, vars, types.
//////

// banditSurrogateName identifies the bandit surrogate in error messages.
const banditSurrogateName = "BetaBernoulliBanditSurrogate"

// SufficientStatistics is the exact training state of the Beta-Bernoulli
// bandit: a 2xN integer table (N = number of arms) of win and loss counts.
// It is everything the conjugate posterior needs; posterior parameters are
// derived from it on demand and never stored.
//
// Invariants:
//   - All counts are non-negative integers.
//   - Wins(arm) + Losses(arm) equals the number of training rows attributed
//     to that arm.
type SufficientStatistics struct {
	wins   []int
	losses []int
}

// Arms returns the number of bandit arms N.
func (s *SufficientStatistics) Arms() int { return len(s.wins) }

// Wins returns the accumulated win count for the given arm.
func (s *SufficientStatistics) Wins(arm int) int { return s.wins[arm] }

// Losses returns the accumulated loss count for the given arm.
func (s *SufficientStatistics) Losses(arm int) int { return s.losses[arm] }

// Counts returns copies of the win and loss rows. Safe to modify.
func (s *SufficientStatistics) Counts() (wins, losses []int) {
	return append([]int(nil), s.wins...), append([]int(nil), s.losses...)
}

// BetaBernoulliBanditSurrogate is a multi-armed bandit model with Bernoulli
// likelihood and Beta prior. Training is an exact sufficient-statistic
// computation (no iterative optimization): per arm, count the observations
// whose outcome matches the positive and negative comparator sentinels. The
// posterior follows by conjugacy, with no approximation:
//
//	Beta(alpha0, beta0) prior + Bernoulli likelihood
//	  -> Beta(alpha0 + wins, beta0 + losses) posterior, per arm.
//
// Structural requirement: the search space must be spanned by exactly one
// categorical parameter using one-hot encoding, so that candidate columns
// act as arm selectors.
//
// Concurrency: see the Surrogate contract. Fit is the only mutating
// operation and must be serialized by the caller against readers.
type BetaBernoulliBanditSurrogate struct {
	baseSurrogate

	// prior is the Beta prior shared across all arms.
	prior BetaPrior

	// stats is nil until the first successful Fit. Overwritten, never
	// merged, by subsequent Fit calls.
	stats *SufficientStatistics
}

//////
// Factory.
//////

// NewBetaBernoulliBanditSurrogate creates an untrained bandit surrogate with
// the uniform Beta(1, 1) prior.
func NewBetaBernoulliBanditSurrogate() *BetaBernoulliBanditSurrogate {
	return &BetaBernoulliBanditSurrogate{
		baseSurrogate: baseSurrogate{name: banditSurrogateName},
		prior:         UniformBetaPrior(),
	}
}

// WithPrior sets the Beta prior shared across arms and returns the surrogate
// for chaining. Must be called before Fit.
func (s *BetaBernoulliBanditSurrogate) WithPrior(prior BetaPrior) *BetaBernoulliBanditSurrogate {
	s.prior = prior

	return s
}

//////
// Methods.
//////

// JointPosterior reports false: arms are modeled independently.
func (s *BetaBernoulliBanditSurrogate) JointPosterior() bool { return false }

// SupportsTransferLearning reports false: statistics are single-task.
func (s *BetaBernoulliBanditSurrogate) SupportsTransferLearning() bool { return false }

// Prior returns the Beta prior shared across arms.
func (s *BetaBernoulliBanditSurrogate) Prior() BetaPrior { return s.prior }

// SufficientStatistics returns the current win/loss table, or a
// ModelNotTrainedError if the model has not been trained.
func (s *BetaBernoulliBanditSurrogate) SufficientStatistics() (*SufficientStatistics, error) {
	if s.stats == nil {
		return nil, s.notTrained()
	}

	return s.stats, nil
}

// Fit trains the bandit on encoded candidates (one one-hot row per
// observation) and binary outcomes.
//
// Validation, in order:
//  1. Shared training-data checks (row/outcome arity, non-empty data).
//  2. Structural check: the search space must consist of exactly one
//     categorical parameter with one-hot encoding, and the candidate width
//     must match that parameter's arm count. Violations return an
//     IncompatibleSearchSpaceError.
//  3. Every outcome must equal one of the two binary comparator sentinels.
//
// Fit overwrites the sufficient statistics: re-fitting on data B after
// fitting on data A yields the same state as fitting on B alone.
func (s *BetaBernoulliBanditSurrogate) Fit(candidates mat.Matrix, outcomes []float64, space *SearchSpace) error {
	if err := validateTrainingData(candidates, outcomes, space); err != nil {
		return err
	}

	if err := s.checkSearchSpace(candidates, space); err != nil {
		return err
	}

	rows, arms := candidates.Dims()

	wins := make([]int, arms)
	losses := make([]int, arms)

	// Exact sufficient-statistic computation: the one-hot encoding acts as
	// the arm selector for each observation.
	row := make([]float64, arms)

	for i := 0; i < rows; i++ {
		mat.Row(row, i, candidates)

		arm := floats.MaxIdx(row)

		switch outcomes[i] {
		case PositiveComparatorValue:
			wins[arm]++
		case NegativeComparatorValue:
			losses[arm]++
		default:
			return fmt.Errorf(
				"outcome %v at row %d is not a binary comparator value (want %v or %v)",
				outcomes[i], i, PositiveComparatorValue, NegativeComparatorValue,
			)
		}
	}

	// Overwrite, never accumulate.
	s.stats = &SufficientStatistics{wins: wins, losses: losses}

	s.cacheFit(candidates, outcomes, space)

	return nil
}

// PosteriorBetaParameters derives the per-arm posterior Beta parameters:
// sufficient statistics plus prior pseudo-counts, broadcast elementwise.
// Never stored; computed on demand from the current statistics.
//
// Returns:
// - alphas: wins + prior alpha, per arm (strictly positive)
// - betas: losses + prior beta, per arm (strictly positive)
// - error: ModelNotTrainedError if the model has not been trained
func (s *BetaBernoulliBanditSurrogate) PosteriorBetaParameters() (alphas, betas []float64, err error) {
	if s.stats == nil {
		return nil, nil, s.notTrained()
	}

	alphas = asFloats(s.stats.wins)
	betas = asFloats(s.stats.losses)

	for i := range alphas {
		alphas[i] += s.prior.Alpha
		betas[i] += s.prior.Beta
	}

	return alphas, betas, nil
}

// Posterior returns one Beta distribution per candidate row: the posterior
// belief over the win rate of the arm the row selects. Arm selection is by
// argmax over the row, which handles both strict one-hot rows and soft or
// ambiguous rows.
//
// Fails with a ModelNotTrainedError before Fit, and loudly rejects
// candidates whose width does not match the trained arm count rather than
// silently truncating or padding.
func (s *BetaBernoulliBanditSurrogate) Posterior(candidates mat.Matrix) (Posterior, error) {
	alphas, betas, err := s.PosteriorBetaParameters()
	if err != nil {
		return nil, err
	}

	rows, cols := candidates.Dims()

	if cols != s.stats.Arms() {
		return nil, fmt.Errorf(
			"candidate width %d does not match trained arm count %d",
			cols, s.stats.Arms(),
		)
	}

	candAlphas := make([]float64, rows)
	candBetas := make([]float64, rows)

	row := make([]float64, cols)

	for i := 0; i < rows; i++ {
		mat.Row(row, i, candidates)

		arm := floats.MaxIdx(row)

		candAlphas[i] = alphas[arm]
		candBetas[i] = betas[arm]
	}

	return NewBetaPosterior(candAlphas, candBetas)
}

// MaximumAPosterioriPerArm computes the mode of the posterior Beta
// distribution for every arm.
//
// For Beta(alpha, beta) with alpha > 1 and beta > 1 the mode is
// (alpha-1)/(alpha+beta-2). Outside that regime a unique mode does not
// exist, and the corresponding entry is NaN rather than a silently wrong
// number.
//
// Returns a ModelNotTrainedError if the model has not been trained.
func (s *BetaBernoulliBanditSurrogate) MaximumAPosterioriPerArm() ([]float64, error) {
	alphas, betas, err := s.PosteriorBetaParameters()
	if err != nil {
		return nil, err
	}

	modes := make([]float64, len(alphas))

	for i := range modes {
		alpha, beta := alphas[i], betas[i]

		if alpha > 1 && beta > 1 {
			modes[i] = (alpha - 1) / (alpha + beta - 2)
		} else {
			modes[i] = math.NaN()
		}
	}

	return modes, nil
}

//////
// Helper functions.
//////

// checkSearchSpace enforces the bandit's structural requirement: exactly one
// categorical parameter, one-hot encoded, with one arm per candidate column.
func (s *BetaBernoulliBanditSurrogate) checkSearchSpace(candidates mat.Matrix, space *SearchSpace) error {
	if len(space.Parameters) != 1 || space.Parameters[0].Encoding != OneHotEncoding {
		return &IncompatibleSearchSpaceError{
			Model: s.name,
			Reason: "only search spaces spanned by exactly one categorical " +
				"parameter using one-hot encoding are supported",
		}
	}

	_, cols := candidates.Dims()

	if arms := len(space.Parameters[0].Values); cols != arms {
		return &IncompatibleSearchSpaceError{
			Model: s.name,
			Reason: fmt.Sprintf(
				"candidate width %d does not match the %d one-hot encoded arms",
				cols, arms,
			),
		}
	}

	return nil
}
