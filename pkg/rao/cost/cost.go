// Package cost scores the estimated head travel between two files.
//
// A heuristic is not a metric: costs need not be symmetric nor satisfy the
// triangle inequality.
package cost

import (
	"strings"

	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/geometry"
)

// Kind selects a cost heuristic variant.
type Kind int

const (
	// KindCTA combines longitudinal distance with discrete penalties for
	// each physical discontinuity between two files.
	KindCTA Kind = iota + 1
)

func (k Kind) String() string {
	switch k {
	case KindCTA:
		return rao.DefaultCostHeuristic
	default:
		return "unknown"
	}
}

// ParseKind resolves a cost heuristic name. Unknown names are
// ConfigurationErrors.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cta":
		return KindCTA, nil
	default:
		return 0, rao.NewConfigurationError("unknown cost heuristic %q", name)
	}
}

// Weights are the tunable terms of the CTA heuristic.
type Weights struct {
	// Distance is the cost per LPos unit between the end of the current file
	// and the start of the next one.
	Distance float64 `mapstructure:"distance" yaml:"distance" json:"distance" validate:"gte=0"`

	// WrapChange is added when the next file starts on another wrap.
	WrapChange float64 `mapstructure:"wrap_change" yaml:"wrap_change" json:"wrap_change" validate:"gte=0"`

	// BandChange is added when the next file starts in another band.
	BandChange float64 `mapstructure:"band_change" yaml:"band_change" json:"band_change" validate:"gte=0"`

	// ZoneChange is added when the next file starts in the other landing zone.
	ZoneChange float64 `mapstructure:"zone_change" yaml:"zone_change" json:"zone_change" validate:"gte=0"`

	// DirectionReversal is added when the next wrap runs the other way.
	DirectionReversal float64 `mapstructure:"direction_reversal" yaml:"direction_reversal" json:"direction_reversal" validate:"gte=0"`

	// StepBack is added when the next file is behind the head on the same wrap.
	StepBack float64 `mapstructure:"step_back" yaml:"step_back" json:"step_back" validate:"gte=0"`
}

// DefaultWeights returns the default weights. Discrete penalties grow from
// wrap change to step back.
func DefaultWeights() Weights {
	return Weights{
		Distance:          0.001,
		WrapChange:        4,
		BandChange:        8,
		ZoneChange:        12,
		DirectionReversal: 16,
		StepBack:          24,
	}
}

// IsZero reports whether no weight is set.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Heuristic computes transition costs. It is immutable and safe for
// concurrent use.
type Heuristic struct {
	kind    Kind
	weights Weights
}

// New builds a heuristic. Zero weights select DefaultWeights; negative
// weights are a ConfigurationError.
func New(kind Kind, weights Weights) (*Heuristic, error) {
	if kind != KindCTA {
		return nil, rao.NewConfigurationError("unsupported cost heuristic kind %d", kind)
	}
	if weights.IsZero() {
		weights = DefaultWeights()
	}
	if weights.Distance < 0 || weights.WrapChange < 0 || weights.BandChange < 0 ||
		weights.ZoneChange < 0 || weights.DirectionReversal < 0 || weights.StepBack < 0 {
		return nil, rao.NewConfigurationError("cost weights must not be negative: %+v", weights)
	}
	return &Heuristic{kind: kind, weights: weights}, nil
}

// Kind returns the heuristic variant.
func (h *Heuristic) Kind() Kind {
	return h.kind
}

// Weights returns the weights in use.
func (h *Heuristic) Weights() Weights {
	return h.weights
}

// Cost returns the cost of reading to right after from.
func (h *Heuristic) Cost(from, to rao.FilePositionInfo) float64 {
	switch h.kind {
	case KindCTA:
		return h.ctaCost(from, to)
	default:
		return 0
	}
}

func (h *Heuristic) ctaCost(from, to rao.FilePositionInfo) float64 {
	w := h.weights

	var distance uint64
	if to.Start.Pos > from.End.Pos {
		distance = to.Start.Pos - from.End.Pos
	} else {
		distance = from.End.Pos - to.Start.Pos
	}

	c := w.Distance * float64(distance)
	if geometry.WrapChanged(from, to) {
		c += w.WrapChange
	}
	if geometry.BandChanged(from, to) {
		c += w.BandChange
	}
	if geometry.ZoneChanged(from, to) {
		c += w.ZoneChange
	}
	if geometry.DirectionReversed(from, to) {
		c += w.DirectionReversal
	}
	if geometry.StepsBack(from, to) {
		c += w.StepBack
	}
	return c
}
