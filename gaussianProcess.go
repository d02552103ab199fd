package bayopt

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

//////
// Const, vars, types.
//////

// rbfSurrogateName identifies the kernel surrogate in error messages.
const rbfSurrogateName = "RBFKernelSurrogate"

// RBFKernelSurrogate is a lightweight kernel-smoothing surrogate with a
// Gaussian (RBF) predictive belief. It is the general-purpose counterpart to
// the bandit surrogate: it accepts any search space and any real-valued
// outcomes, at the cost of an approximate (non-conjugate) posterior.
//
// Fields:
// - mu: RWMutex protecting the observation store and sigma
// - x: Observed input points (encoded candidate rows)
// - y: Observed outcomes at each input point
// - sigma: Kernel width parameter controlling interpolation smoothness
//
// Thread safety: unlike the bandit surrogate, the observation store is
// guarded by an RWMutex, so Posterior calls may overlap a Fit. The Surrogate
// contract's single-writer requirement still applies for deterministic
// results.
type RBFKernelSurrogate struct {
	baseSurrogate

	// mu protects x, y and sigma.
	mu sync.RWMutex

	// x stores the encoded candidate rows the model was trained on.
	x [][]float64

	// y stores the observed outcome at each row of x.
	y []float64

	// sigma is the kernel width parameter.
	// Larger values = smoother interpolation.
	// Smaller values = more local influence.
	sigma float64
}

//////
// Factory.
//////

// NewRBFKernelSurrogate creates an untrained kernel surrogate with the
// default kernel width of 1.0, suitable for normalized inputs.
func NewRBFKernelSurrogate() *RBFKernelSurrogate {
	return &RBFKernelSurrogate{
		baseSurrogate: baseSurrogate{name: rbfSurrogateName},
		sigma:         1.0, // Default kernel width.
	}
}

//////
// Methods.
//////

// JointPosterior reports false: candidates are scored independently.
func (s *RBFKernelSurrogate) JointPosterior() bool { return false }

// SupportsTransferLearning reports false.
func (s *RBFKernelSurrogate) SupportsTransferLearning() bool { return false }

// RBFKernel implements the Radial Basis Function (Gaussian) kernel, the
// similarity measure between two encoded candidates. Similarity decreases
// exponentially with squared Euclidean distance:
//
//	k(x1, x2) = exp(-sum((x1 - x2)^2) / (2 * sigma^2))
//
// Returns 1.0 for identical points and values close to 0.0 for distant
// points. Panics if the input vectors have different lengths.
func (s *RBFKernelSurrogate) RBFKernel(x1, x2 []float64) float64 {
	if len(x1) != len(x2) {
		panic("input vectors must have the same length")
	}

	// Get sigma value thread-safely.
	s.mu.RLock()
	sigma := s.sigma
	s.mu.RUnlock()

	// Calculate squared Euclidean distance.
	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	// Apply RBF kernel formula.
	return math.Exp(-sum / (2 * sigma * sigma))
}

// SetSigma updates the kernel width parameter. Affects all subsequent
// posterior queries; no validation is performed (caller's responsibility to
// keep it positive).
func (s *RBFKernelSurrogate) SetSigma(sigma float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sigma = sigma
}

// GetSigma returns the current kernel width parameter.
func (s *RBFKernelSurrogate) GetSigma() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sigma
}

// Fit trains the surrogate by storing the encoded observations. Any
// non-empty search space is structurally compatible. Re-fitting replaces the
// observation store; it does not accumulate across Fit calls.
func (s *RBFKernelSurrogate) Fit(candidates mat.Matrix, outcomes []float64, space *SearchSpace) error {
	if err := validateTrainingData(candidates, outcomes, space); err != nil {
		return err
	}

	if len(space.Parameters) == 0 {
		return &IncompatibleSearchSpaceError{
			Model:  s.name,
			Reason: "search space has no parameters",
		}
	}

	rows, _ := candidates.Dims()

	x := make([][]float64, rows)
	for i := range x {
		x[i] = mat.Row(nil, i, candidates)
	}

	s.mu.Lock()
	s.x = x
	s.y = append([]float64(nil), outcomes...)
	s.mu.Unlock()

	s.cacheFit(candidates, outcomes, space)

	return nil
}

// Posterior returns one Normal distribution per candidate row, with mean and
// variance given by kernel-weighted interpolation over the observations.
//
// Mathematical details:
//   - Mean is the kernel-weighted average of observed outcomes.
//   - Variance starts at the prior variance of 1.0 and shrinks with the
//     kernel mass near the query point; it is clamped at zero.
//
// Returns a ModelNotTrainedError if called before Fit.
func (s *RBFKernelSurrogate) Posterior(candidates mat.Matrix) (Posterior, error) {
	if !s.isFitted() {
		return nil, s.notTrained()
	}

	rows, _ := candidates.Dims()

	means := make([]float64, rows)
	stddevs := make([]float64, rows)

	for i := 0; i < rows; i++ {
		mean, variance := s.predict(mat.Row(nil, i, candidates))

		means[i] = mean
		stddevs[i] = math.Sqrt(variance)
	}

	return NewNormalPosterior(means, stddevs)
}

// predict estimates the expected outcome and uncertainty at a single encoded
// candidate based on the stored observations.
func (s *RBFKernelSurrogate) predict(x []float64) (mean, variance float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Calculate kernel values between x and all observed points.
	k := make([]float64, len(s.x))
	for i := range s.x {
		k[i] = s.rbfKernelLocked(x, s.x[i])
	}

	// Mean is the kernel-weighted average of observed outcomes.
	var kernelMass, weightedSum float64

	for i := range s.x {
		kernelMass += k[i]
		weightedSum += k[i] * s.y[i]
	}

	if kernelMass > 0 {
		mean = weightedSum / kernelMass
	}

	// Variance starts at the prior variance and shrinks with kernel mass.
	variance = 1.0

	for i := range s.x {
		variance -= k[i] * k[i] / float64(len(s.x))
	}

	if variance < 0 {
		variance = 0
	}

	return mean, variance
}

// rbfKernelLocked is RBFKernel without the sigma lock, for callers that
// already hold mu.
func (s *RBFKernelSurrogate) rbfKernelLocked(x1, x2 []float64) float64 {
	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return math.Exp(-sum / (2 * s.sigma * s.sigma))
}
