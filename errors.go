package bayopt

import (
	"errors"
	"fmt"
)

//////
// Error taxonomy.
//
// Every failure in this package is deterministic: the inputs either satisfy
// the model's structural requirements or they do not, so no error here is
// retryable. All errors surface to the caller unchanged.
//////

// ErrEmptySearchSpace indicates that a search space was constructed without
// any parameters.
var ErrEmptySearchSpace = errors.New("at least one parameter must be provided")

// ModelNotTrainedError indicates that posterior information was requested
// from a surrogate before it was trained.
//
// Returned by:
// - Surrogate.Posterior before the first successful Fit
// - BetaBernoulliBanditSurrogate.MaximumAPosterioriPerArm before Fit
// - Any scorer built on top of an untrained surrogate (propagated unchanged)
type ModelNotTrainedError struct {
	// Model is the name of the surrogate that was queried.
	Model string
}

func (e *ModelNotTrainedError) Error() string {
	return fmt.Sprintf(
		"%s must be trained before posterior information can be accessed",
		e.Model,
	)
}

// IncompatibleSearchSpaceError indicates a structural mismatch between a
// surrogate's required candidate encoding and the supplied search space.
//
// Example: the Bernoulli multi-armed bandit requires a search space spanned
// by exactly one categorical parameter using one-hot encoding.
type IncompatibleSearchSpaceError struct {
	// Model is the name of the surrogate that rejected the space.
	Model string

	// Reason describes the structural requirement that was violated.
	Reason string
}

func (e *IncompatibleSearchSpaceError) Error() string {
	return fmt.Sprintf("%s: incompatible search space: %s", e.Model, e.Reason)
}

// UnknownAcquisitionError indicates that an acquisition function tag could
// not be resolved against the registry of known acquisition functions.
type UnknownAcquisitionError struct {
	// Tag is the unresolved tag name.
	Tag string
}

func (e *UnknownAcquisitionError) Error() string {
	return fmt.Sprintf("unknown acquisition function %q", e.Tag)
}

// MissingParameterError indicates that a hyperparameter required by the
// selected acquisition formula was not supplied at construction time.
//
// Note that the converse case never fails: hyperparameters not accepted by
// the selected formula are silently dropped to keep persisted configurations
// forward-compatible.
type MissingParameterError struct {
	// Tag is the acquisition function tag the parameter was required by.
	Tag string

	// Parameter is the name of the missing hyperparameter.
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf(
		"acquisition function %q requires parameter %q",
		e.Tag, e.Parameter,
	)
}
