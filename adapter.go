package bayopt

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

//////
// Const, vars, types.
//////

// SampleFunc draws pseudo-random outcome samples from a posterior while
// preserving the distribution's true shape. The returned matrix has one row
// per draw and one column per candidate. The random source is supplied by
// the caller to keep evaluations reproducible under test.
type SampleFunc func(posterior Posterior, draws int, src rand.Source) (*mat.Dense, error)

// SamplerTable associates each distribution family with its shape-preserving
// sampler. It is an explicit strategy table passed into the adapter at
// construction time; there is no process-wide sampler registry to mutate.
type SamplerTable map[DistributionFamily]SampleFunc

// AdapterModel presents any trained Surrogate as a generic
// posterior-predictive model, decoupling acquisition scoring from surrogate
// internals. It is a thin, stateless view: it holds a reference to one
// surrogate, never copies or mutates its state, and propagates the
// surrogate's own failure modes (such as ModelNotTrainedError) unchanged.
//
// Its one addition over plain forwarding is posterior resampling: the Beta
// posterior of the bandit surrogate is not Gaussian, so generic
// Gaussian-only sampling cannot be used. The adapter instead dispatches
// through its SamplerTable on the posterior's distribution family.
type AdapterModel struct {
	surrogate Surrogate
	samplers  SamplerTable
}

//////
// Factory.
//////

// NewAdapterModel wraps a surrogate with the default sampler table. The
// surrogate does not need to be trained yet; an untrained surrogate's errors
// surface on the first posterior query.
func NewAdapterModel(surrogate Surrogate) *AdapterModel {
	return &AdapterModel{
		surrogate: surrogate,
		samplers:  DefaultSamplers(),
	}
}

// WithSamplers replaces the adapter's sampler table and returns the adapter
// for chaining. Use it to support additional posterior families.
func (m *AdapterModel) WithSamplers(samplers SamplerTable) *AdapterModel {
	m.samplers = samplers

	return m
}

// DefaultSamplers returns the sampler table covering the posterior families
// produced by this package's surrogates.
func DefaultSamplers() SamplerTable {
	return SamplerTable{
		BetaFamily:   SampleBeta,
		NormalFamily: SampleNormal,
	}
}

//////
// Methods.
//////

// Surrogate returns the wrapped surrogate.
func (m *AdapterModel) Surrogate() Surrogate { return m.surrogate }

// Posterior forwards the posterior query to the wrapped surrogate,
// propagating its errors unchanged.
func (m *AdapterModel) Posterior(candidates mat.Matrix) (Posterior, error) {
	return m.surrogate.Posterior(candidates)
}

// Sample draws the given number of samples from a posterior using the
// sampler registered for its distribution family.
//
// Parameters:
// - posterior: The posterior to resample
// - draws: Number of sample rows to draw (must be positive)
// - src: Random source for reproducible draws
//
// Returns:
// - *mat.Dense: draws x posterior.Len() sample matrix
// - error: If no sampler is registered for the posterior's family
func (m *AdapterModel) Sample(posterior Posterior, draws int, src rand.Source) (*mat.Dense, error) {
	if draws <= 0 {
		return nil, fmt.Errorf("draws must be positive, got %d", draws)
	}

	sampler, ok := m.samplers[posterior.Family()]
	if !ok {
		return nil, fmt.Errorf(
			"no sampler registered for distribution family %q",
			posterior.Family(),
		)
	}

	return sampler(posterior, draws, src)
}

// SamplePosterior queries the wrapped surrogate's posterior at the given
// candidates and resamples it in one step.
func (m *AdapterModel) SamplePosterior(candidates mat.Matrix, draws int, src rand.Source) (*mat.Dense, error) {
	posterior, err := m.Posterior(candidates)
	if err != nil {
		return nil, err
	}

	return m.Sample(posterior, draws, src)
}

//////
// Built-in samplers.
//////

// SampleBeta draws from a BetaPosterior, preserving the Beta shape of each
// per-candidate distribution.
func SampleBeta(posterior Posterior, draws int, src rand.Source) (*mat.Dense, error) {
	bp, ok := posterior.(*BetaPosterior)
	if !ok {
		return nil, fmt.Errorf("beta sampler requires a *BetaPosterior, got %T", posterior)
	}

	out := mat.NewDense(draws, bp.Len(), nil)

	for j := 0; j < bp.Len(); j++ {
		dist := bp.At(j)
		dist.Src = src

		for i := 0; i < draws; i++ {
			out.Set(i, j, dist.Rand())
		}
	}

	return out, nil
}

// SampleNormal draws from a NormalPosterior.
func SampleNormal(posterior Posterior, draws int, src rand.Source) (*mat.Dense, error) {
	np, ok := posterior.(*NormalPosterior)
	if !ok {
		return nil, fmt.Errorf("normal sampler requires a *NormalPosterior, got %T", posterior)
	}

	out := mat.NewDense(draws, np.Len(), nil)

	for j := 0; j < np.Len(); j++ {
		dist := np.At(j)
		dist.Src = src

		for i := 0; i < draws; i++ {
			out.Set(i, j, dist.Rand())
		}
	}

	return out, nil
}
