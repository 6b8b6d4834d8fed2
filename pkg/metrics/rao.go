package metrics

import "time"

// RAOMetrics records RAO activity. A nil RAOMetrics disables recording.
type RAOMetrics interface {
	// ObserveQuery records one QueryRAO call.
	ObserveQuery(algorithm string, files int, duration time.Duration, err error)

	// ObserveStage records one stage of an RAO computation.
	ObserveStage(algorithm, stage string, duration time.Duration)

	// RecordFallback records a substitution of the configured algorithm.
	RecordFallback(reason string)

	// RecordNativeQuery records one native ordering query sent to a drive.
	RecordNativeQuery(files int, duration time.Duration, err error)

	// RecordResolution records the algorithm chosen for a mount.
	RecordResolution(algorithm string, err error)
}

// NewRAOMetrics returns the Prometheus RAO metrics, or nil when metrics are
// disabled or the prometheus package is not linked in.
func NewRAOMetrics() RAOMetrics {
	if !IsEnabled() || newRAOMetrics == nil {
		return nil
	}
	return newRAOMetrics()
}

// newRAOMetrics is set by pkg/metrics/prometheus to avoid an import cycle.
var newRAOMetrics func() RAOMetrics

// RegisterRAOMetricsConstructor registers the Prometheus constructor.
func RegisterRAOMetricsConstructor(constructor func() RAOMetrics) {
	newRAOMetrics = constructor
}

// Status returns the status label for err.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
