package rao

import "strings"

// AlgorithmName identifies an RAO algorithm variant.
type AlgorithmName string

const (
	// AlgorithmLinear sorts jobs by ascending fseq.
	AlgorithmLinear AlgorithmName = "linear"

	// AlgorithmRandom shuffles jobs uniformly.
	AlgorithmRandom AlgorithmName = "random"

	// AlgorithmSLTF is the Short Locate Time First software heuristic.
	AlgorithmSLTF AlgorithmName = "sltf"

	// AlgorithmNative delegates ordering to the drive. It is never selected
	// by name: only a capable drive with enterprise mode enabled picks it.
	AlgorithmNative AlgorithmName = "native"
)

// ConfigurableAlgorithms lists the names accepted in configuration.
var ConfigurableAlgorithms = []AlgorithmName{AlgorithmLinear, AlgorithmRandom, AlgorithmSLTF}

// ParseAlgorithmName resolves a configured algorithm name.
//
// Matching is case-insensitive and ignores surrounding whitespace. An
// unrecognized name returns AlgorithmLinear together with an
// AlgorithmNameError so the caller can log the substitution.
func ParseAlgorithmName(name string) (AlgorithmName, error) {
	switch AlgorithmName(strings.ToLower(strings.TrimSpace(name))) {
	case AlgorithmLinear:
		return AlgorithmLinear, nil
	case AlgorithmRandom:
		return AlgorithmRandom, nil
	case AlgorithmSLTF:
		return AlgorithmSLTF, nil
	default:
		return AlgorithmLinear, NewAlgorithmNameError(name)
	}
}

func (n AlgorithmName) String() string {
	return string(n)
}
