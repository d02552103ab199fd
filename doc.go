// Package bayopt is the decision core of a Bayesian-optimization library: it
// turns a probabilistic surrogate model's belief about an objective function
// into a concrete ranking of candidate experiments.
//
// # Features
//
// The package includes the following key pieces:
//
//   - Surrogate contract: a uniform fit/posterior lifecycle for probabilistic
//     models of an unknown objective, with per-model capability flags
//   - Beta-Bernoulli multi-armed bandit: an exact conjugate surrogate over
//     win/loss sufficient statistics, with posterior parameters derived on
//     demand and per-arm maximum-a-posteriori estimates
//   - RBF kernel surrogate: a lightweight Gaussian-belief model for arbitrary
//     encoded search spaces
//   - Adapter model: exposes any surrogate's posterior through a generic
//     interface, with shape-preserving resampling dispatched per
//     distribution family (Beta posteriors are sampled as Betas, never
//     approximated as Gaussians)
//   - Acquisition functions: analytic (EI, PI, UCB, posterior mean) and
//     Monte-Carlo (qEI, qPI, qUCB) scoring, dispatched by tag name through an
//     init-time registry, with YAML persistence of configuration records
//
// # Workflow
//
// The intended control flow mirrors a Bayesian-optimization loop:
//
//  1. Encode observed experiments into a candidate matrix via a SearchSpace.
//  2. Train a Surrogate on the (candidate, outcome) pairs with Fit.
//  3. Wrap it in an AdapterModel.
//  4. Build a Scorer from an acquisition configuration, the adapter and the
//     observed data with BuildScorer.
//  5. Score un-observed candidate batches and pick the next experiment, for
//     example with RankCandidates or SelectBest.
//
// Example, three-armed bandit with binary outcomes:
//
//	space, _ := NewSearchSpace(CategoricalParameter{
//	    Name:     "arm",
//	    Values:   []string{"a", "b", "c"},
//	    Encoding: OneHotEncoding,
//	})
//
//	trainX, _ := space.Transform(
//	    []string{"a"}, []string{"a"}, []string{"b"},
//	)
//	trainY := []float64{1, 0, 1} // win, loss, win
//
//	surrogate := NewBetaBernoulliBanditSurrogate()
//	if err := surrogate.Fit(trainX, trainY, space); err != nil {
//	    // handle IncompatibleSearchSpaceError etc.
//	}
//
//	model := NewAdapterModel(surrogate)
//	scorer, _ := BuildScorer(ExpectedImprovement{}, model, trainX, trainY)
//
//	pool, _ := space.Transform([]string{"a"}, []string{"b"}, []string{"c"})
//	next, _, _ := SelectBest(scorer, pool)
//
// # Concurrency
//
// All operations are synchronous and computation-bound. Trained surrogates
// are safe for parallel read-only use: posterior queries and scoring never
// mutate model state. Fit is an exclusive-writer operation that the caller
// must serialize against concurrent readers; no internal locking is provided
// on the surrogates. Monte-Carlo scorers accept an externally
// supplied random source so evaluations stay reproducible under test.
//
// # Error handling
//
// Failures are deterministic and surface unchanged: ModelNotTrainedError for
// posterior access before Fit, IncompatibleSearchSpaceError for structural
// mismatches, UnknownAcquisitionError and MissingParameterError for
// configuration problems. The only silently corrected input is a deprecated
// acquisition name, which is rewritten to its modern equivalent with a
// logged warning.
package bayopt
