package bayopt

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

//////
// Candidate selection.
//////

// RankedCandidate pairs a row index in a candidate pool with its acquisition
// score.
type RankedCandidate struct {
	// Index is the candidate's row in the pool it was ranked from.
	Index int

	// Score is the acquisition value assigned to the candidate.
	Score float64
}

// RankCandidates scores every row of the pool individually with the given
// scorer and returns the candidates ordered by descending desirability.
//
// Parameters:
// - scorer: A scoring routine built with BuildScorer
// - pool: Un-observed candidates in computational representation, one row each
//
// Returns:
// - []RankedCandidate: All pool rows, best first
// - error: The first scoring failure, unchanged (e.g. ModelNotTrainedError)
//
// Usage example:
//
//	scorer, _ := BuildScorer(ExpectedImprovement{}, model, trainX, trainY)
//	ranking, err := RankCandidates(scorer, pool)
//	next := ranking[0].Index  // most promising experiment
func RankCandidates(scorer Scorer, pool mat.Matrix) ([]RankedCandidate, error) {
	rows, cols := pool.Dims()
	if rows == 0 {
		return nil, fmt.Errorf("candidate pool is empty")
	}

	ranking := make([]RankedCandidate, rows)

	for i := 0; i < rows; i++ {
		row := mat.NewDense(1, cols, mat.Row(nil, i, pool))

		score, err := scorer.Score(row)
		if err != nil {
			return nil, err
		}

		ranking[i] = RankedCandidate{Index: i, Score: score}
	}

	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Score > ranking[b].Score
	})

	return ranking, nil
}

// SelectBest returns the pool row with the highest acquisition score. It is
// the single-experiment shortcut over RankCandidates.
func SelectBest(scorer Scorer, pool mat.Matrix) (index int, score float64, err error) {
	ranking, err := RankCandidates(scorer, pool)
	if err != nil {
		return 0, 0, err
	}

	return ranking[0].Index, ranking[0].Score, nil
}
