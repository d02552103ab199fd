package bayopt

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

//////
// Acquisition configuration persistence.
//
// Configurations are stored as a tagged union keyed by the short tag name:
//
//	type: UCB
//	beta: 2.0
//
// Monte-Carlo variants persist the same way under their "q" tags. Full names
// ("UpperConfidenceBound") and the bare-string shorthand ("EI") are accepted
// on load, as are deprecated legacy names, which are rewritten to their
// modern equivalent before any other validation (see NewAcquisitionFunction).
//////

// AcquisitionConfig wraps an AcquisitionFunction for YAML persistence. Use
// it as a field in larger configuration structs, or the package-level
// Marshal/Unmarshal helpers for standalone records.
type AcquisitionConfig struct {
	Function AcquisitionFunction
}

// MarshalYAML encodes the wrapped function as a tagged mapping.
func (c AcquisitionConfig) MarshalYAML() (any, error) {
	if c.Function == nil {
		return nil, fmt.Errorf("no acquisition function to marshal")
	}

	out := map[string]any{"type": c.Function.Abbreviation()}

	for k, v := range c.Function.hyperparameters() {
		out[k] = v
	}

	return out, nil
}

// UnmarshalYAML decodes either a tagged mapping or a bare tag string into
// the wrapped function. Unknown hyperparameter keys are dropped; a missing
// required hyperparameter or an unresolvable tag fails.
func (c *AcquisitionConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var tag string
		if err := node.Decode(&tag); err != nil {
			return err
		}

		fn, err := NewAcquisitionFunction(tag, nil)
		if err != nil {
			return err
		}

		c.Function = fn

		return nil
	}

	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	tag, ok := raw["type"].(string)
	if !ok {
		return fmt.Errorf(`acquisition configuration requires a string "type" key`)
	}

	delete(raw, "type")

	params := make(map[string]float64, len(raw))

	for k, v := range raw {
		// Non-numeric values share the fate of unknown keys: dropped.
		switch n := v.(type) {
		case float64:
			params[k] = n
		case int:
			params[k] = float64(n)
		}
	}

	fn, err := NewAcquisitionFunction(tag, params)
	if err != nil {
		return err
	}

	c.Function = fn

	return nil
}

//////
// Exported functionalities.
//////

// MarshalAcquisitionFunction persists a standalone acquisition configuration
// record.
func MarshalAcquisitionFunction(fn AcquisitionFunction) ([]byte, error) {
	return yaml.Marshal(AcquisitionConfig{Function: fn})
}

// UnmarshalAcquisitionFunction reloads a persisted acquisition configuration
// record, applying the deprecated-name rewrite where needed.
func UnmarshalAcquisitionFunction(data []byte) (AcquisitionFunction, error) {
	var cfg AcquisitionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return cfg.Function, nil
}
