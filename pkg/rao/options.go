package rao

import "strings"

// Option keys understood in the legacy RAO options string.
const (
	OptionCostHeuristic = "cost_heuristic_name"
	OptionEstimator     = "filepositionestimator_name"
)

// Default component names used when nothing is configured.
const (
	DefaultCostHeuristic = "cta"
	DefaultEstimator     = "interpolation"
)

// Options names the SLTF components to build.
type Options struct {
	CostHeuristic string
	Estimator     string
}

// ParseOptions parses a legacy options string of the form
// "cost_heuristic_name:cta,filepositionestimator_name:interpolation".
// Keys that are absent keep their default value.
func ParseOptions(s string) (Options, error) {
	return Options{
		CostHeuristic: DefaultCostHeuristic,
		Estimator:     DefaultEstimator,
	}.Override(s)
}

// Override returns o with the entries of the legacy options string s
// applied on top.
//
// Empty entries are skipped. Unknown keys and entries without a value are
// ConfigurationErrors.
func (o Options) Override(s string) (Options, error) {
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		key, value, ok := strings.Cut(entry, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			return Options{}, NewConfigurationError("malformed RAO option %q (expected key:value)", entry)
		}

		switch key {
		case OptionCostHeuristic:
			o.CostHeuristic = value
		case OptionEstimator:
			o.Estimator = value
		default:
			return Options{}, NewConfigurationError("unknown RAO option %q", key)
		}
	}

	return o, nil
}
