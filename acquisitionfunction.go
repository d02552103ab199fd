package bayopt

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//////
// Const, vars, types.
//
// Acquisition functions convert a surrogate's posterior belief into a scalar
// desirability per candidate batch. Each one is an immutable configuration
// record carrying a short tag used for dispatch; the actual scoring routine
// is constructed by BuildScorer against an adapter-wrapped surrogate and the
// observed data.
//////

// mcTagPrefix marks Monte-Carlo acquisition variants. Tags beginning with it
// dispatch to the sampling-based scoring path.
const mcTagPrefix = "q"

// deprecatedVarUCBBeta is the substitute exploration coefficient applied
// when a deprecated VarUCB/qVarUCB configuration is rewritten to its modern
// equivalent.
const deprecatedVarUCBBeta = 100.0

// DefaultSampleCount is the number of posterior draws a Monte-Carlo scorer
// uses unless overridden with WithSampleCount.
const DefaultSampleCount = 256

// AcquisitionFunction is an immutable acquisition configuration record. It
// carries no mutable state and is safe to share across concurrent
// evaluations. Concrete implementations are registered in this package's
// init-time registry and resolved by tag via NewAcquisitionFunction.
type AcquisitionFunction interface {
	// Abbreviation returns the short tag name: the dispatch key for both
	// registry lookup and the analytic-vs-Monte-Carlo branch (tags with the
	// "q" prefix are Monte-Carlo variants).
	Abbreviation() string

	// Name returns the full name, accepted as an alternative lookup key.
	Name() string

	// hyperparameters returns the record's named parameters for
	// serialization. Sealed: acquisition functions are registry-defined.
	hyperparameters() map[string]float64
}

// Scorer is an executable scoring routine built from an acquisition
// configuration, an adapter-wrapped surrogate and the observed data. Score
// evaluates one batch of un-observed candidates (one encoded row per
// candidate) and returns a single scalar desirability for the batch.
//
// Scorers are safe for concurrent use as long as the underlying surrogate is
// not being re-fitted (see the Surrogate concurrency contract).
type Scorer interface {
	Score(candidates mat.Matrix) (float64, error)
}

//////
// Acquisition configuration records.
//////

// ExpectedImprovement is the analytic expected-improvement acquisition: the
// expected magnitude of improvement over the best observed outcome.
type ExpectedImprovement struct{}

// Abbreviation returns "EI".
func (ExpectedImprovement) Abbreviation() string { return "EI" }

// Name returns the full name.
func (ExpectedImprovement) Name() string { return "ExpectedImprovement" }

func (ExpectedImprovement) hyperparameters() map[string]float64 { return nil }

// ProbabilityOfImprovement is the analytic probability-of-improvement
// acquisition: the probability that a candidate beats the best observed
// outcome.
type ProbabilityOfImprovement struct{}

// Abbreviation returns "PI".
func (ProbabilityOfImprovement) Abbreviation() string { return "PI" }

// Name returns the full name.
func (ProbabilityOfImprovement) Name() string { return "ProbabilityOfImprovement" }

func (ProbabilityOfImprovement) hyperparameters() map[string]float64 { return nil }

// PosteriorMean scores a candidate by its posterior mean alone: pure
// exploitation, no uncertainty bonus.
type PosteriorMean struct{}

// Abbreviation returns "PM".
func (PosteriorMean) Abbreviation() string { return "PM" }

// Name returns the full name.
func (PosteriorMean) Name() string { return "PosteriorMean" }

func (PosteriorMean) hyperparameters() map[string]float64 { return nil }

// UpperConfidenceBound is the analytic UCB acquisition: posterior mean plus
// a Beta-weighted uncertainty bonus.
//
// Beta controls the exploration-exploitation trade-off:
// - Higher values (e.g., 3.0 or 5.0) encourage exploring uncertain arms
// - Lower values (e.g., 0.1 or 0.5) focus on known good arms
type UpperConfidenceBound struct {
	// Beta is the exploration coefficient. Required.
	Beta float64
}

// Abbreviation returns "UCB".
func (UpperConfidenceBound) Abbreviation() string { return "UCB" }

// Name returns the full name.
func (UpperConfidenceBound) Name() string { return "UpperConfidenceBound" }

func (fn UpperConfidenceBound) hyperparameters() map[string]float64 {
	return map[string]float64{"beta": fn.Beta}
}

// QExpectedImprovement is the Monte-Carlo expected-improvement acquisition
// for candidate batches.
type QExpectedImprovement struct{}

// Abbreviation returns "qEI".
func (QExpectedImprovement) Abbreviation() string { return "qEI" }

// Name returns the full name.
func (QExpectedImprovement) Name() string { return "qExpectedImprovement" }

func (QExpectedImprovement) hyperparameters() map[string]float64 { return nil }

// QProbabilityOfImprovement is the Monte-Carlo probability-of-improvement
// acquisition for candidate batches.
type QProbabilityOfImprovement struct{}

// Abbreviation returns "qPI".
func (QProbabilityOfImprovement) Abbreviation() string { return "qPI" }

// Name returns the full name.
func (QProbabilityOfImprovement) Name() string { return "qProbabilityOfImprovement" }

func (QProbabilityOfImprovement) hyperparameters() map[string]float64 { return nil }

// QUpperConfidenceBound is the Monte-Carlo UCB acquisition for candidate
// batches.
type QUpperConfidenceBound struct {
	// Beta is the exploration coefficient. Required.
	Beta float64
}

// Abbreviation returns "qUCB".
func (QUpperConfidenceBound) Abbreviation() string { return "qUCB" }

// Name returns the full name.
func (QUpperConfidenceBound) Name() string { return "qUpperConfidenceBound" }

func (fn QUpperConfidenceBound) hyperparameters() map[string]float64 {
	return map[string]float64{"beta": fn.Beta}
}

//////
// Registry.
//////

// acquisitionConstructor builds a configuration record from named
// hyperparameters. Constructors read exactly the parameters their formula
// accepts: unrecognized entries are dropped, not errored, to keep persisted
// configurations forward-compatible; missing required entries fail with a
// MissingParameterError.
type acquisitionConstructor func(params map[string]float64) (AcquisitionFunction, error)

// acquisitionRegistry maps short tag -> constructor. Populated at init time;
// read-only afterwards.
var acquisitionRegistry = map[string]acquisitionConstructor{}

// acquisitionNames maps full name -> short tag, so persisted configurations
// may use either form.
var acquisitionNames = map[string]string{}

// deprecatedTags maps legacy tag names to their modern replacement plus the
// fixed substitute exploration coefficient. Remapping happens before any
// other validation.
var deprecatedTags = map[string]struct {
	replacement string
	beta        float64
}{
	"VarUCB":  {"UCB", deprecatedVarUCBBeta},
	"qVarUCB": {"qUCB", deprecatedVarUCBBeta},
}

func registerAcquisition(tag, name string, build acquisitionConstructor) {
	acquisitionRegistry[tag] = build
	acquisitionNames[name] = tag
}

func init() {
	registerAcquisition("EI", "ExpectedImprovement",
		func(map[string]float64) (AcquisitionFunction, error) {
			return ExpectedImprovement{}, nil
		})

	registerAcquisition("PI", "ProbabilityOfImprovement",
		func(map[string]float64) (AcquisitionFunction, error) {
			return ProbabilityOfImprovement{}, nil
		})

	registerAcquisition("PM", "PosteriorMean",
		func(map[string]float64) (AcquisitionFunction, error) {
			return PosteriorMean{}, nil
		})

	registerAcquisition("UCB", "UpperConfidenceBound",
		func(params map[string]float64) (AcquisitionFunction, error) {
			beta, ok := params["beta"]
			if !ok {
				return nil, &MissingParameterError{Tag: "UCB", Parameter: "beta"}
			}

			return UpperConfidenceBound{Beta: beta}, nil
		})

	registerAcquisition("qEI", "qExpectedImprovement",
		func(map[string]float64) (AcquisitionFunction, error) {
			return QExpectedImprovement{}, nil
		})

	registerAcquisition("qPI", "qProbabilityOfImprovement",
		func(map[string]float64) (AcquisitionFunction, error) {
			return QProbabilityOfImprovement{}, nil
		})

	registerAcquisition("qUCB", "qUpperConfidenceBound",
		func(params map[string]float64) (AcquisitionFunction, error) {
			beta, ok := params["beta"]
			if !ok {
				return nil, &MissingParameterError{Tag: "qUCB", Parameter: "beta"}
			}

			return QUpperConfidenceBound{Beta: beta}, nil
		})
}

//////
// Exported functionalities.
//////

// IsMonteCarlo reports whether the acquisition function uses the
// sampling-based scoring path, by the tag prefix convention.
func IsMonteCarlo(fn AcquisitionFunction) bool {
	return strings.HasPrefix(fn.Abbreviation(), mcTagPrefix)
}

// NewAcquisitionFunction resolves a tag (or full name) against the registry
// and constructs the corresponding configuration record from the given named
// hyperparameters.
//
// Deprecated legacy tags are accepted but immediately rewritten to their
// modern equivalent with the documented substitute hyperparameter, emitting
// a deprecation warning; the remapping happens before any other validation.
//
// Failure modes:
// - Unknown tag: UnknownAcquisitionError
// - Missing required hyperparameter: MissingParameterError
//
// Unrecognized hyperparameters are silently dropped.
func NewAcquisitionFunction(tag string, params map[string]float64) (AcquisitionFunction, error) {
	if alias, ok := deprecatedTags[tag]; ok {
		logger.Warn(
			"deprecated acquisition function name; use the replacement instead",
			"name", tag,
			"replacement", alias.replacement,
			"beta", alias.beta,
		)

		tag = alias.replacement
		params = map[string]float64{"beta": alias.beta}
	}

	build, ok := acquisitionRegistry[tag]
	if !ok {
		// Fall back to full-name lookup.
		if short, found := acquisitionNames[tag]; found {
			build = acquisitionRegistry[short]
		} else {
			return nil, &UnknownAcquisitionError{Tag: tag}
		}
	}

	return build(params)
}

// ScorerOption customizes the Monte-Carlo scoring path.
type ScorerOption func(*scorerOptions)

type scorerOptions struct {
	samples int
	src     rand.Source
}

// WithSampleCount sets the number of posterior draws per Score call.
func WithSampleCount(n int) ScorerOption {
	return func(o *scorerOptions) {
		if n > 0 {
			o.samples = n
		}
	}
}

// WithRandomSource sets the random source used for posterior draws. Supply a
// fixed-seed source for reproducible evaluations.
func WithRandomSource(src rand.Source) ScorerOption {
	return func(o *scorerOptions) {
		if src != nil {
			o.src = src
		}
	}
}

// BuildScorer converts an acquisition configuration plus a trained
// (adapter-wrapped) surrogate and the historical observations into an
// executable scoring routine for arbitrary future candidate batches.
//
// Dispatch: the configuration's tag selects one of two structurally
// different branches, with no intermediate states.
//
//   - Analytic path (non-"q" tags): a closed-form scorer over the posterior
//     mean and variance of a single candidate, parameterized by the best
//     observed outcome where the formula needs it.
//   - Monte-Carlo path ("q"-prefixed tags): a sampling-based scorer applying
//     an identity objective to posterior draws over the whole batch.
//
// The best observed outcome is computed here as the maximum of trainY
// (outcomes are maximized). Options only affect the Monte-Carlo path.
//
// Training-time errors surface at Score time: scoring against an untrained
// surrogate propagates its ModelNotTrainedError unchanged.
func BuildScorer(
	fn AcquisitionFunction,
	model *AdapterModel,
	trainX mat.Matrix,
	trainY []float64,
	opts ...ScorerOption,
) (Scorer, error) {
	if fn == nil {
		return nil, fmt.Errorf("acquisition function is required")
	}

	if model == nil {
		return nil, fmt.Errorf("adapter model is required")
	}

	if len(trainY) == 0 {
		return nil, fmt.Errorf("at least one observed outcome is required")
	}

	if trainX != nil {
		if rows, _ := trainX.Dims(); rows != len(trainY) {
			return nil, fmt.Errorf(
				"training data mismatch: %d candidate rows, %d outcomes",
				rows, len(trainY),
			)
		}
	}

	bestF := floats.Max(trainY)

	if !IsMonteCarlo(fn) {
		return &analyticScorer{fn: fn, model: model, bestF: bestF}, nil
	}

	options := scorerOptions{
		samples: DefaultSampleCount,
		src:     rand.NewPCG(uint64(time.Now().UnixNano()), 0),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &monteCarloScorer{
		fn:      fn,
		model:   model,
		bestF:   bestF,
		samples: options.samples,
		src:     options.src,
	}, nil
}

//////
// Analytic path.
//////

// analyticScorer evaluates closed-form acquisition formulas on the posterior
// mean and standard deviation of a single candidate.
type analyticScorer struct {
	fn    AcquisitionFunction
	model *AdapterModel
	bestF float64
}

// Score evaluates the closed form at exactly one candidate. Analytic
// formulas are single-point by construction; batches must go through a
// Monte-Carlo variant.
func (s *analyticScorer) Score(candidates mat.Matrix) (float64, error) {
	rows, _ := candidates.Dims()
	if rows != 1 {
		return 0, fmt.Errorf(
			"analytic acquisition %q scores exactly one candidate per batch, got %d",
			s.fn.Abbreviation(), rows,
		)
	}

	posterior, err := s.model.Posterior(candidates)
	if err != nil {
		return 0, err
	}

	mean := posterior.MeanAt(0)

	sigma := math.Sqrt(posterior.VarianceAt(0))
	if sigma < minStdDev {
		sigma = minStdDev
	}

	switch fn := s.fn.(type) {
	case ExpectedImprovement:
		z := (mean - s.bestF) / sigma

		return (mean-s.bestF)*normalCDF(z) + sigma*normalPDF(z), nil
	case ProbabilityOfImprovement:
		return normalCDF((mean - s.bestF) / sigma), nil
	case UpperConfidenceBound:
		return mean + math.Sqrt(fn.Beta)*sigma, nil
	case PosteriorMean:
		return mean, nil
	default:
		return 0, &UnknownAcquisitionError{Tag: s.fn.Abbreviation()}
	}
}

//////
// Monte-Carlo path.
//////

// monteCarloScorer evaluates batch acquisition values by averaging an
// identity objective over shape-preserving posterior draws.
type monteCarloScorer struct {
	fn      AcquisitionFunction
	model   *AdapterModel
	bestF   float64
	samples int
	src     rand.Source
}

// Score draws samples from the posterior at the candidate batch and reduces
// them to a single scalar: the Monte-Carlo estimate of the batch acquisition
// value. The batch dimension is reduced by max (the batch is as good as its
// best member), the sample dimension by mean.
func (s *monteCarloScorer) Score(candidates mat.Matrix) (float64, error) {
	rows, _ := candidates.Dims()
	if rows == 0 {
		return 0, fmt.Errorf("candidate batch is empty")
	}

	posterior, err := s.model.Posterior(candidates)
	if err != nil {
		return 0, err
	}

	samples, err := s.model.Sample(posterior, s.samples, s.src)
	if err != nil {
		return 0, err
	}

	var total float64

	for i := 0; i < s.samples; i++ {
		best := math.Inf(-1)

		for j := 0; j < posterior.Len(); j++ {
			draw := samples.At(i, j)

			var value float64

			switch fn := s.fn.(type) {
			case QExpectedImprovement:
				value = math.Max(draw-s.bestF, 0)
			case QProbabilityOfImprovement:
				if draw > s.bestF {
					value = 1
				}
			case QUpperConfidenceBound:
				mean := posterior.MeanAt(j)

				value = mean + math.Sqrt(fn.Beta*math.Pi/2)*math.Abs(draw-mean)
			default:
				return 0, &UnknownAcquisitionError{Tag: s.fn.Abbreviation()}
			}

			if value > best {
				best = value
			}
		}

		total += best
	}

	return total / float64(s.samples), nil
}
