package bayopt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewSearchSpaceValidation(t *testing.T) {
	_, err := NewSearchSpace()
	assert.True(t, errors.Is(err, ErrEmptySearchSpace))

	_, err = NewSearchSpace(
		CategoricalParameter{Name: "p", Values: []string{"a"}, Encoding: OneHotEncoding},
		CategoricalParameter{Name: "p", Values: []string{"b"}, Encoding: OneHotEncoding},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique names")

	_, err = NewSearchSpace(CategoricalParameter{Name: "p", Encoding: OneHotEncoding})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no values")
}

func TestSearchSpaceWidth(t *testing.T) {
	space, err := NewSearchSpace(
		CategoricalParameter{Name: "arm", Values: []string{"a", "b", "c"}, Encoding: OneHotEncoding},
		CategoricalParameter{Name: "mode", Values: []string{"x", "y"}, Encoding: IntegerEncoding},
	)
	require.NoError(t, err)

	// Three one-hot columns plus one integer column.
	assert.Equal(t, 4, space.Width())
}

func TestSearchSpaceTransform(t *testing.T) {
	space, err := NewSearchSpace(CategoricalParameter{
		Name:     "arm",
		Values:   []string{"a", "b", "c"},
		Encoding: OneHotEncoding,
	})
	require.NoError(t, err)

	encoded, err := space.Transform([]string{"b"}, []string{"c"})
	require.NoError(t, err)

	want := mat.NewDense(2, 3, []float64{
		0, 1, 0,
		0, 0, 1,
	})

	assert.True(t, mat.Equal(want, encoded))
}

func TestSearchSpaceTransformErrors(t *testing.T) {
	space, err := NewSearchSpace(CategoricalParameter{
		Name:     "arm",
		Values:   []string{"a", "b"},
		Encoding: OneHotEncoding,
	})
	require.NoError(t, err)

	_, err = space.Transform()
	assert.Error(t, err)

	_, err = space.Transform([]string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "labels")

	_, err = space.Transform([]string{"z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not admissible")
}

func TestBinaryTargetSentinels(t *testing.T) {
	target := BinaryTarget{Name: "won"}

	assert.Equal(t, 1.0, target.PositiveValue())
	assert.Equal(t, 0.0, target.NegativeValue())
}
