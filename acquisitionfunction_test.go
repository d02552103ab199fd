package bayopt

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// trainedBanditModel fits a two-armed bandit where arm 0 clearly dominates
// and returns the adapter plus the training data the fit used.
func trainedBanditModel(t *testing.T) (*AdapterModel, *mat.Dense, []float64) {
	t.Helper()

	space := armSpace(t, "a", "b")

	armIdx := []int{0, 0, 0, 0, 1, 1, 1, 1}
	outcomes := []float64{1, 1, 1, 0, 1, 0, 0, 0}

	trainX := oneHotObservations(armIdx, 2)

	surrogate := NewBetaBernoulliBanditSurrogate()
	require.NoError(t, surrogate.Fit(trainX, outcomes, space))

	return NewAdapterModel(surrogate), trainX, outcomes
}

// captureWarnings redirects the package logger into a buffer for the test's
// duration and returns it.
func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(slog.Default()) })

	return &buf
}

func TestNewAcquisitionFunctionByTagAndName(t *testing.T) {
	byTag, err := NewAcquisitionFunction("EI", nil)
	require.NoError(t, err)
	assert.Equal(t, ExpectedImprovement{}, byTag)

	byName, err := NewAcquisitionFunction("ExpectedImprovement", nil)
	require.NoError(t, err)
	assert.Equal(t, byTag, byName)
}

func TestNewAcquisitionFunctionUnknownTag(t *testing.T) {
	_, err := NewAcquisitionFunction("NopeBound", nil)
	require.Error(t, err)

	var unknown *UnknownAcquisitionError

	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, "NopeBound", unknown.Tag)
}

func TestNewAcquisitionFunctionFiltersUnknownParameters(t *testing.T) {
	// Unrecognized hyperparameters must be dropped, not errored.
	fn, err := NewAcquisitionFunction("EI", map[string]float64{"bogus": 1})
	require.NoError(t, err)
	assert.Equal(t, ExpectedImprovement{}, fn)

	fn, err = NewAcquisitionFunction("UCB", map[string]float64{"beta": 2, "bogus": 1})
	require.NoError(t, err)
	assert.Equal(t, UpperConfidenceBound{Beta: 2}, fn)
}

func TestNewAcquisitionFunctionMissingRequiredParameter(t *testing.T) {
	var missing *MissingParameterError

	_, err := NewAcquisitionFunction("UCB", nil)
	require.Error(t, err)
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "beta", missing.Parameter)

	_, err = NewAcquisitionFunction("qUCB", map[string]float64{"xi": 0.1})
	require.Error(t, err)
	assert.True(t, errors.As(err, &missing))
}

func TestDeprecatedNamesAreRemapped(t *testing.T) {
	buf := captureWarnings(t)

	fn, err := NewAcquisitionFunction("VarUCB", nil)
	require.NoError(t, err)

	// Same object as constructing the modern replacement directly with the
	// documented substitute coefficient.
	assert.Equal(t, UpperConfidenceBound{Beta: 100.0}, fn)

	assert.Equal(t, 1, strings.Count(buf.String(), "deprecated"))

	qfn, err := NewAcquisitionFunction("qVarUCB", map[string]float64{"beta": 7})
	require.NoError(t, err)

	// The rewrite replaces the supplied hyperparameters wholesale.
	assert.Equal(t, QUpperConfidenceBound{Beta: 100.0}, qfn)
}

func TestIsMonteCarloByTagPrefix(t *testing.T) {
	assert.False(t, IsMonteCarlo(ExpectedImprovement{}))
	assert.False(t, IsMonteCarlo(UpperConfidenceBound{Beta: 1}))
	assert.True(t, IsMonteCarlo(QExpectedImprovement{}))
	assert.True(t, IsMonteCarlo(QUpperConfidenceBound{Beta: 1}))
}

func TestBuildScorerValidation(t *testing.T) {
	model, trainX, trainY := trainedBanditModel(t)

	_, err := BuildScorer(nil, model, trainX, trainY)
	assert.Error(t, err)

	_, err = BuildScorer(ExpectedImprovement{}, nil, trainX, trainY)
	assert.Error(t, err)

	_, err = BuildScorer(ExpectedImprovement{}, model, trainX, nil)
	assert.Error(t, err)

	_, err = BuildScorer(ExpectedImprovement{}, model, trainX, []float64{1})
	assert.Error(t, err)
}

func TestAnalyticScorerSingleCandidateOnly(t *testing.T) {
	model, trainX, trainY := trainedBanditModel(t)

	scorer, err := BuildScorer(ExpectedImprovement{}, model, trainX, trainY)
	require.NoError(t, err)

	_, err = scorer.Score(oneHotObservations([]int{0, 1}, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one candidate")
}

func TestAnalyticScorerValues(t *testing.T) {
	model, trainX, trainY := trainedBanditModel(t)

	candidate := oneHotObservations([]int{0}, 2)

	posterior, err := model.Posterior(candidate)
	require.NoError(t, err)

	mean := posterior.MeanAt(0)
	sigma := math.Sqrt(posterior.VarianceAt(0))

	// Posterior mean scoring is the mean itself.
	pm, err := BuildScorer(PosteriorMean{}, model, trainX, trainY)
	require.NoError(t, err)

	got, err := pm.Score(candidate)
	require.NoError(t, err)
	assert.InDelta(t, mean, got, 1e-12)

	// UCB is mean plus the beta-weighted uncertainty bonus.
	ucb, err := BuildScorer(UpperConfidenceBound{Beta: 2}, model, trainX, trainY)
	require.NoError(t, err)

	got, err = ucb.Score(candidate)
	require.NoError(t, err)
	assert.InDelta(t, mean+math.Sqrt(2)*sigma, got, 1e-12)

	// EI is non-negative, PI is a probability.
	ei, err := BuildScorer(ExpectedImprovement{}, model, trainX, trainY)
	require.NoError(t, err)

	got, err = ei.Score(candidate)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, 0.0)

	pi, err := BuildScorer(ProbabilityOfImprovement{}, model, trainX, trainY)
	require.NoError(t, err)

	got, err = pi.Score(candidate)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestMonteCarloScorerReproducible(t *testing.T) {
	model, trainX, trainY := trainedBanditModel(t)

	batch := oneHotObservations([]int{0, 1}, 2)

	score := func() float64 {
		scorer, err := BuildScorer(
			QUpperConfidenceBound{Beta: 2},
			model, trainX, trainY,
			WithSampleCount(512),
			WithRandomSource(rand.NewPCG(7, 11)),
		)
		require.NoError(t, err)

		got, err := scorer.Score(batch)
		require.NoError(t, err)

		return got
	}

	// Identical sources yield identical Monte-Carlo estimates.
	assert.Equal(t, score(), score())
}

func TestMonteCarloScorerBatch(t *testing.T) {
	model, trainX, trainY := trainedBanditModel(t)

	scorer, err := BuildScorer(
		QExpectedImprovement{},
		model, trainX, trainY,
		WithSampleCount(256),
		WithRandomSource(rand.NewPCG(1, 2)),
	)
	require.NoError(t, err)

	got, err := scorer.Score(oneHotObservations([]int{0, 1}, 2))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, 0.0)

	// qPI estimates live in [0, 1].
	qpi, err := BuildScorer(
		QProbabilityOfImprovement{},
		model, trainX, trainY,
		WithSampleCount(256),
		WithRandomSource(rand.NewPCG(3, 4)),
	)
	require.NoError(t, err)

	got, err = qpi.Score(oneHotObservations([]int{0}, 2))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestScorerPropagatesModelNotTrained(t *testing.T) {
	// A scorer can be built before training, but scoring must surface the
	// surrogate's own failure unchanged.
	model := NewAdapterModel(NewBetaBernoulliBanditSurrogate())

	scorer, err := BuildScorer(ExpectedImprovement{}, model, nil, []float64{1, 0})
	require.NoError(t, err)

	_, err = scorer.Score(oneHotObservations([]int{0}, 2))
	require.Error(t, err)

	var notTrained *ModelNotTrainedError

	assert.True(t, errors.As(err, &notTrained))
}
