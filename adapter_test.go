package bayopt

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fakePosterior belongs to a family no default sampler covers.
type fakePosterior struct{}

func (fakePosterior) Len() int                   { return 1 }
func (fakePosterior) MeanAt(int) float64         { return 0 }
func (fakePosterior) VarianceAt(int) float64     { return 1 }
func (fakePosterior) Family() DistributionFamily { return DistributionFamily("cauchy") }

func TestAdapterForwardsPosterior(t *testing.T) {
	model, _, _ := trainedBanditModel(t)

	candidate := oneHotObservations([]int{0}, 2)

	direct, err := model.Surrogate().Posterior(candidate)
	require.NoError(t, err)

	viaAdapter, err := model.Posterior(candidate)
	require.NoError(t, err)

	// Pure forwarding: same belief either way.
	assert.Equal(t, direct.Len(), viaAdapter.Len())
	assert.Equal(t, direct.MeanAt(0), viaAdapter.MeanAt(0))
	assert.Equal(t, direct.VarianceAt(0), viaAdapter.VarianceAt(0))
}

func TestAdapterPropagatesSurrogateErrors(t *testing.T) {
	model := NewAdapterModel(NewBetaBernoulliBanditSurrogate())

	_, err := model.Posterior(oneHotObservations([]int{0}, 2))
	require.Error(t, err)

	var notTrained *ModelNotTrainedError

	assert.True(t, errors.As(err, &notTrained))
}

func TestAdapterSamplesPreserveBetaShape(t *testing.T) {
	model, _, _ := trainedBanditModel(t)

	posterior, err := NewBetaPosterior([]float64{6}, []float64{3})
	require.NoError(t, err)

	const draws = 20000

	samples, err := model.Sample(posterior, draws, rand.NewPCG(42, 43))
	require.NoError(t, err)

	rows, cols := samples.Dims()
	require.Equal(t, draws, rows)
	require.Equal(t, 1, cols)

	// Beta support is the open unit interval; a Gaussian approximation
	// would leak outside it.
	var sum float64

	for i := 0; i < draws; i++ {
		v := samples.At(i, 0)

		require.Greater(t, v, 0.0)
		require.Less(t, v, 1.0)

		sum += v
	}

	// Empirical mean of Beta(6, 3) draws concentrates near 2/3.
	assert.InDelta(t, 6.0/9.0, sum/draws, 0.01)
}

func TestAdapterSampleUnknownFamily(t *testing.T) {
	model, _, _ := trainedBanditModel(t)

	_, err := model.Sample(fakePosterior{}, 10, rand.NewPCG(1, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sampler registered")
}

func TestAdapterWithCustomSamplers(t *testing.T) {
	model, _, _ := trainedBanditModel(t)

	constant := func(p Posterior, draws int, _ rand.Source) (*mat.Dense, error) {
		out := mat.NewDense(draws, p.Len(), nil)

		for i := 0; i < draws; i++ {
			for j := 0; j < p.Len(); j++ {
				out.Set(i, j, 0.5)
			}
		}

		return out, nil
	}

	model.WithSamplers(SamplerTable{
		DistributionFamily("cauchy"): constant,
	})

	samples, err := model.Sample(fakePosterior{}, 3, rand.NewPCG(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 0.5, samples.At(2, 0))

	// The default table was replaced wholesale.
	bp, err := NewBetaPosterior([]float64{1}, []float64{1})
	require.NoError(t, err)

	_, err = model.Sample(bp, 3, rand.NewPCG(1, 2))
	assert.Error(t, err)
}

func TestAdapterSampleValidation(t *testing.T) {
	model, _, _ := trainedBanditModel(t)

	bp, err := NewBetaPosterior([]float64{1}, []float64{1})
	require.NoError(t, err)

	_, err = model.Sample(bp, 0, rand.NewPCG(1, 2))
	assert.Error(t, err)
}

func TestAdapterSamplePosterior(t *testing.T) {
	model, _, _ := trainedBanditModel(t)

	samples, err := model.SamplePosterior(
		oneHotObservations([]int{0, 1}, 2), 50, rand.NewPCG(5, 6),
	)
	require.NoError(t, err)

	rows, cols := samples.Dims()
	assert.Equal(t, 50, rows)
	assert.Equal(t, 2, cols)
}
