package drive

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/marmos91/dittotape/pkg/rao"
)

// Simulated is an in-memory Drive.
//
// Like a virtual tape library drive it refuses native RAO unless limits are
// configured. When it does answer, it orders segments by ascending begin
// block. Call counters let tests assert how often the hardware was reached.
type Simulated struct {
	mu sync.Mutex

	limits      *UDSLimits
	calibration []EndOfWrapPosition

	probeErr       error
	calibrationErr error
	queryErr       error

	probeCalls       int
	calibrationCalls int
	queryCalls       int
	querySizes       []int
}

// SimulatedOption configures a Simulated drive.
type SimulatedOption func(*Simulated)

// WithNativeLimits makes the drive answer native RAO queries.
func WithNativeLimits(limits UDSLimits) SimulatedOption {
	return func(s *Simulated) {
		l := limits
		s.limits = &l
	}
}

// WithCalibration sets the calibration table from RAO calibration points.
func WithCalibration(points []rao.CalibrationPoint) SimulatedOption {
	return func(s *Simulated) {
		s.calibration = make([]EndOfWrapPosition, 0, len(points))
		for _, p := range points {
			s.calibration = append(s.calibration, EndOfWrapPosition{
				WrapNumber: uint16(p.WrapIndex),
				BlockID:    p.BlockID,
			})
		}
	}
}

// WithProbeError makes ProbeCapability fail with err.
func WithProbeError(err error) SimulatedOption {
	return func(s *Simulated) { s.probeErr = err }
}

// WithCalibrationError makes EndOfWrapPositions fail with err.
func WithCalibrationError(err error) SimulatedOption {
	return func(s *Simulated) { s.calibrationErr = err }
}

// WithQueryError makes QueryNativeOrder fail with err.
func WithQueryError(err error) SimulatedOption {
	return func(s *Simulated) { s.queryErr = err }
}

// NewSimulated creates a simulated drive.
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProbeCapability implements Drive.
func (s *Simulated) ProbeCapability(ctx context.Context) (UDSLimits, error) {
	if err := ctx.Err(); err != nil {
		return UDSLimits{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeCalls++

	if s.probeErr != nil {
		return UDSLimits{}, s.probeErr
	}
	if s.limits == nil {
		return UDSLimits{}, fmt.Errorf("simulated drive: %w", ErrNativeUnsupported)
	}
	return *s.limits, nil
}

// EndOfWrapPositions implements Drive.
func (s *Simulated) EndOfWrapPositions(ctx context.Context) ([]EndOfWrapPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calibrationCalls++

	if s.calibrationErr != nil {
		return nil, s.calibrationErr
	}
	return slices.Clone(s.calibration), nil
}

// QueryNativeOrder implements Drive.
func (s *Simulated) QueryNativeOrder(ctx context.Context, segments []Segment, maxFiles int) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCalls++

	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.limits == nil {
		return nil, fmt.Errorf("simulated drive: %w", ErrNativeUnsupported)
	}

	n := min(len(segments), maxFiles)
	s.querySizes = append(s.querySizes, n)

	ordered := make([]Segment, n)
	for i, seg := range segments[:n] {
		if len(seg.Name) > NameLength {
			seg.Name = seg.Name[:NameLength]
		}
		ordered[i] = seg
	}
	slices.SortStableFunc(ordered, func(a, b Segment) int {
		switch {
		case a.Begin < b.Begin:
			return -1
		case a.Begin > b.Begin:
			return 1
		default:
			return 0
		}
	})
	return ordered, nil
}

// ProbeCalls returns how many times ProbeCapability was called.
func (s *Simulated) ProbeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probeCalls
}

// CalibrationCalls returns how many times EndOfWrapPositions was called.
func (s *Simulated) CalibrationCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calibrationCalls
}

// QuerySizes returns the number of segments submitted by each native query.
func (s *Simulated) QuerySizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.querySizes)
}

var _ Drive = (*Simulated)(nil)
