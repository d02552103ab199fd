package bayopt

import (
	"log/slog"
	"math"

	"golang.org/x/exp/constraints"
)

//////
// Helper functions.
//////

// minStdDev is the floor applied to posterior standard deviations so that
// closed-form acquisition values stay defined at zero-variance points.
const minStdDev = 1e-12

// logger receives the package's non-fatal diagnostics; today that is only
// the deprecated-acquisition-name warning.
var logger = slog.Default()

// SetLogger replaces the package logger. A nil argument is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Helper function used by PI and EI to compute the cumulative distribution
// function of the standard normal distribution.
//
// Returns:
// - Probability that a standard normal random variable is less than x.
func normalCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// Helper function used by EI to compute the probability density function
// of the standard normal distribution.
//
// Returns:
// - Value of the standard normal PDF at x.
func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}

// asFloats converts a slice of any numeric type to a fresh slice of float64
// values. Used to lift integer sufficient statistics into floating-point
// posterior parameters; the conversion is exact for all counts that occur in
// practice.
func asFloats[T constraints.Integer | constraints.Float](values []T) []float64 {
	floats := make([]float64, len(values))

	for i, v := range values {
		floats[i] = float64(v)
	}

	return floats
}

// indexOf returns the position of value in values, or -1 if absent.
func indexOf(values []string, value string) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}

	return -1
}
