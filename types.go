package bayopt

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Const, vars, types.
//////

// DistributionFamily identifies the distribution family of a posterior
// object. Samplers are keyed on it (see SamplerTable), so that resampling
// preserves the true shape of the posterior instead of forcing a Gaussian
// approximation.
type DistributionFamily string

const (
	// BetaFamily marks posteriors whose per-candidate beliefs are Beta
	// distributions (the conjugate posterior of a Bernoulli likelihood).
	BetaFamily DistributionFamily = "beta"

	// NormalFamily marks posteriors whose per-candidate beliefs are Normal
	// distributions.
	NormalFamily DistributionFamily = "normal"
)

// Posterior is a posterior-predictive belief over outcomes at a batch of
// candidates: one univariate distribution per candidate row.
//
// Implementations are immutable snapshots derived from a trained surrogate;
// querying them never mutates surrogate state, so a Posterior may be shared
// freely across goroutines.
type Posterior interface {
	// Len returns the number of candidates the posterior covers.
	Len() int

	// MeanAt returns the mean outcome belief for candidate i.
	MeanAt(i int) float64

	// VarianceAt returns the variance of the outcome belief for candidate i.
	VarianceAt(i int) float64

	// Family identifies the distribution family, used to select a
	// shape-preserving sampler.
	Family() DistributionFamily
}

// BetaPrior is a Beta distribution used as the prior belief over the win
// rate of every bandit arm. Both shape parameters must be strictly positive.
type BetaPrior struct {
	// Alpha is the prior pseudo-count of wins.
	Alpha float64

	// Beta is the prior pseudo-count of losses.
	Beta float64
}

//////
// Factories.
//////

// NewBetaPrior creates a Beta prior, validating that both shape parameters
// are strictly positive.
func NewBetaPrior(alpha, beta float64) (BetaPrior, error) {
	if alpha <= 0 || beta <= 0 {
		return BetaPrior{}, fmt.Errorf(
			"beta prior parameters must be strictly positive, got (%v, %v)",
			alpha, beta,
		)
	}

	return BetaPrior{Alpha: alpha, Beta: beta}, nil
}

// UniformBetaPrior returns the uninformative Beta(1, 1) prior, the default
// for bandit arms.
func UniformBetaPrior() BetaPrior {
	return BetaPrior{Alpha: 1, Beta: 1}
}

//////
// Beta posterior.
//////

// BetaPosterior is a batch of independent Beta distributions, one per
// candidate. It is the posterior-predictive object produced by the
// Beta-Bernoulli bandit surrogate.
type BetaPosterior struct {
	dists []distuv.Beta
}

// NewBetaPosterior creates a Beta posterior from per-candidate shape
// parameters. Both slices must have equal length and strictly positive
// entries.
func NewBetaPosterior(alphas, betas []float64) (*BetaPosterior, error) {
	if len(alphas) != len(betas) {
		return nil, fmt.Errorf(
			"mismatched shape parameter counts: %d alphas, %d betas",
			len(alphas), len(betas),
		)
	}

	dists := make([]distuv.Beta, len(alphas))

	for i := range alphas {
		if alphas[i] <= 0 || betas[i] <= 0 {
			return nil, fmt.Errorf(
				"posterior beta parameters must be strictly positive, got (%v, %v) at %d",
				alphas[i], betas[i], i,
			)
		}

		dists[i] = distuv.Beta{Alpha: alphas[i], Beta: betas[i]}
	}

	return &BetaPosterior{dists: dists}, nil
}

// Len returns the number of candidates covered.
func (p *BetaPosterior) Len() int { return len(p.dists) }

// MeanAt returns the posterior mean win rate for candidate i.
func (p *BetaPosterior) MeanAt(i int) float64 { return p.dists[i].Mean() }

// VarianceAt returns the posterior variance for candidate i.
func (p *BetaPosterior) VarianceAt(i int) float64 { return p.dists[i].Variance() }

// Family returns BetaFamily.
func (p *BetaPosterior) Family() DistributionFamily { return BetaFamily }

// At returns the Beta distribution for candidate i. Used by the Beta sampler
// to draw shape-preserving samples.
func (p *BetaPosterior) At(i int) distuv.Beta { return p.dists[i] }

//////
// Normal posterior.
//////

// NormalPosterior is a batch of independent Normal distributions, one per
// candidate. Produced by surrogates with Gaussian predictive beliefs, such
// as the RBF kernel surrogate.
type NormalPosterior struct {
	dists []distuv.Normal
}

// NewNormalPosterior creates a Normal posterior from per-candidate means and
// standard deviations. Standard deviations must be non-negative; zero is
// clamped to a small floor to keep downstream scoring numerically defined.
func NewNormalPosterior(means, stddevs []float64) (*NormalPosterior, error) {
	if len(means) != len(stddevs) {
		return nil, fmt.Errorf(
			"mismatched parameter counts: %d means, %d stddevs",
			len(means), len(stddevs),
		)
	}

	dists := make([]distuv.Normal, len(means))

	for i := range means {
		sigma := stddevs[i]
		if sigma < 0 {
			return nil, fmt.Errorf("negative standard deviation %v at %d", sigma, i)
		}

		if sigma < minStdDev {
			sigma = minStdDev
		}

		dists[i] = distuv.Normal{Mu: means[i], Sigma: sigma}
	}

	return &NormalPosterior{dists: dists}, nil
}

// Len returns the number of candidates covered.
func (p *NormalPosterior) Len() int { return len(p.dists) }

// MeanAt returns the predictive mean for candidate i.
func (p *NormalPosterior) MeanAt(i int) float64 { return p.dists[i].Mu }

// VarianceAt returns the predictive variance for candidate i.
func (p *NormalPosterior) VarianceAt(i int) float64 { return p.dists[i].Variance() }

// Family returns NormalFamily.
func (p *NormalPosterior) Family() DistributionFamily { return NormalFamily }

// At returns the Normal distribution for candidate i.
func (p *NormalPosterior) At(i int) distuv.Normal { return p.dists[i] }
