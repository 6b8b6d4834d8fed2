package telemetry

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// ProfilingConfig configures Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether profiling is enabled
	Enabled bool

	// ServiceName is the application name shown in Pyroscope
	ServiceName string

	// ServiceVersion is tagged on every profile
	ServiceVersion string

	// Endpoint is the Pyroscope server URL (e.g., "http://localhost:4040")
	Endpoint string

	// ProfileTypes lists the profiles to collect, see profileTypes
	ProfileTypes []string
}

var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// InitProfiling starts the Pyroscope profiler. The returned function stops
// it.
func InitProfiling(cfg ProfilingConfig) (stop func() error, err error) {
	if !cfg.Enabled {
		return func() error { return nil }, nil
	}

	types, err := ParseProfileTypes(cfg.ProfileTypes)
	if err != nil {
		return nil, err
	}

	for _, pt := range cfg.ProfileTypes {
		switch {
		case strings.HasPrefix(pt, "mutex_"):
			runtime.SetMutexProfileFraction(5)
		case strings.HasPrefix(pt, "block_"):
			runtime.SetBlockProfileRate(5)
		}
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.Endpoint,
		Tags:            map[string]string{"version": cfg.ServiceVersion},
		ProfileTypes:    types,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	return profiler.Stop, nil
}

// ParseProfileTypes converts profile type names to Pyroscope types.
func ParseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	types := make([]pyroscope.ProfileType, 0, len(names))
	for _, name := range names {
		pt, ok := profileTypes[name]
		if !ok {
			return nil, fmt.Errorf("invalid profile type %q", name)
		}
		types = append(types, pt)
	}
	return types, nil
}

// IsValidProfileType reports whether name is a known profile type.
func IsValidProfileType(name string) bool {
	_, ok := profileTypes[name]
	return ok
}
