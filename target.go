package bayopt

//////
// Binary target definition.
//////

const (
	// PositiveComparatorValue is the numeric sentinel a binary outcome is
	// compared against to count as a "win".
	PositiveComparatorValue = 1.0

	// NegativeComparatorValue is the numeric sentinel a binary outcome is
	// compared against to count as a "loss".
	NegativeComparatorValue = 0.0
)

// BinaryTarget is an objective with exactly two outcomes. Training data for
// binary-outcome surrogates carries the target in its computational
// representation: PositiveComparatorValue for wins, NegativeComparatorValue
// for losses. No scaling is applied on top.
type BinaryTarget struct {
	// Name identifies the target in user-facing data.
	Name string
}

// PositiveValue returns the computational representation of a win.
func (t BinaryTarget) PositiveValue() float64 { return PositiveComparatorValue }

// NegativeValue returns the computational representation of a loss.
func (t BinaryTarget) NegativeValue() float64 { return NegativeComparatorValue }
