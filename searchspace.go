package bayopt

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//////
// Const, vars, types.
//////

// CategoricalEncoding selects the computational representation used for the
// values of a categorical parameter.
type CategoricalEncoding string

const (
	// OneHotEncoding represents each value as a unit vector with a single
	// non-zero entry. Required by the multi-armed bandit surrogate, which
	// uses the one-hot columns as arm selectors.
	OneHotEncoding CategoricalEncoding = "OHE"

	// IntegerEncoding represents each value by its index in the parameter's
	// value list, as a single column.
	IntegerEncoding CategoricalEncoding = "INT"
)

// CategoricalParameter is a discrete, unordered search space dimension.
//
// Fields:
// - Name: Unique identifier of the parameter within its search space
// - Values: The admissible labels, in a fixed order
// - Encoding: How labels are translated into numeric candidate columns
type CategoricalParameter struct {
	Name     string
	Values   []string
	Encoding CategoricalEncoding
}

// SearchSpace describes the set of candidate experiments a surrogate is
// trained against. It owns the parameter list and produces the encoded
// (computational) representation of candidates; the surrogates in this
// package only ever see the encoded matrix.
type SearchSpace struct {
	// Parameters holds the space's dimensions in declaration order.
	Parameters []CategoricalParameter
}

//////
// Factory.
//////

// NewSearchSpace creates a search space from the given parameters.
//
// Returns an error if no parameters are provided (ErrEmptySearchSpace), if
// two parameters share a name, or if a parameter has no values.
func NewSearchSpace(parameters ...CategoricalParameter) (*SearchSpace, error) {
	if len(parameters) == 0 {
		return nil, ErrEmptySearchSpace
	}

	seen := make(map[string]struct{}, len(parameters))

	for _, p := range parameters {
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("all parameters must have unique names, got %q twice", p.Name)
		}

		seen[p.Name] = struct{}{}

		if len(p.Values) == 0 {
			return nil, fmt.Errorf("parameter %q has no values", p.Name)
		}
	}

	return &SearchSpace{Parameters: parameters}, nil
}

//////
// Methods.
//////

// Width returns the number of columns of the space's computational
// representation, i.e. the width of every encoded candidate row.
func (s *SearchSpace) Width() int {
	width := 0

	for _, p := range s.Parameters {
		switch p.Encoding {
		case OneHotEncoding:
			width += len(p.Values)
		default:
			width++
		}
	}

	return width
}

// Transform encodes candidates, given as one label per parameter per
// candidate, into the numeric matrix consumed by surrogates. Each row of the
// returned matrix is one candidate in computational representation.
//
// Parameters:
//   - candidates: One slice of labels per candidate; each slice must contain
//     exactly one label per search space parameter, in parameter order.
//
// Returns:
// - *mat.Dense: Encoded matrix with one row per candidate
// - error: If a candidate has the wrong arity or an unknown label
func (s *SearchSpace) Transform(candidates ...[]string) (*mat.Dense, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates to transform")
	}

	out := mat.NewDense(len(candidates), s.Width(), nil)

	for i, labels := range candidates {
		if len(labels) != len(s.Parameters) {
			return nil, fmt.Errorf(
				"candidate %d has %d labels, search space has %d parameters",
				i, len(labels), len(s.Parameters),
			)
		}

		col := 0

		for j, p := range s.Parameters {
			idx := indexOf(p.Values, labels[j])
			if idx < 0 {
				return nil, fmt.Errorf(
					"value %q is not admissible for parameter %q",
					labels[j], p.Name,
				)
			}

			switch p.Encoding {
			case OneHotEncoding:
				out.Set(i, col+idx, 1)

				col += len(p.Values)
			default:
				out.Set(i, col, float64(idx))

				col++
			}
		}
	}

	return out, nil
}
