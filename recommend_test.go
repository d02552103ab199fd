package bayopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCandidates(t *testing.T) {
	model, trainX, trainY := trainedBanditModel(t)

	scorer, err := BuildScorer(PosteriorMean{}, model, trainX, trainY)
	require.NoError(t, err)

	// Arm 0 won 3 of 4, arm 1 won 1 of 4; ranking must reflect that.
	pool := oneHotObservations([]int{1, 0}, 2)

	ranking, err := RankCandidates(scorer, pool)
	require.NoError(t, err)
	require.Len(t, ranking, 2)

	assert.Equal(t, 1, ranking[0].Index) // pool row 1 is arm 0
	assert.Equal(t, 0, ranking[1].Index)
	assert.Greater(t, ranking[0].Score, ranking[1].Score)
}

func TestSelectBest(t *testing.T) {
	model, trainX, trainY := trainedBanditModel(t)

	scorer, err := BuildScorer(PosteriorMean{}, model, trainX, trainY)
	require.NoError(t, err)

	best, score, err := SelectBest(scorer, oneHotObservations([]int{0, 1}, 2))
	require.NoError(t, err)

	assert.Equal(t, 0, best)
	assert.Greater(t, score, 0.5)
}

func TestRankCandidatesPropagatesErrors(t *testing.T) {
	model := NewAdapterModel(NewBetaBernoulliBanditSurrogate())

	scorer, err := BuildScorer(PosteriorMean{}, model, nil, []float64{1})
	require.NoError(t, err)

	_, err = RankCandidates(scorer, oneHotObservations([]int{0}, 2))
	assert.Error(t, err)
}
