// Package drive defines the boundary between RAO and the tape drive.
//
// Issuing SCSI commands is outside this module. Implementations of Drive wrap
// the real device (READ END OF WRAP POSITION, RECEIVE RAO limits page,
// GENERATE/RECEIVE RAO); Simulated is an in-memory drive for tests, the CLI
// and the planning API.
package drive

import (
	"context"
	"errors"

	"github.com/marmos91/dittotape/pkg/rao"
)

// NameLength is the size of the user data segment name field. Segment names
// longer than this are truncated by the drive.
const NameLength = 10

// ErrNativeUnsupported is returned by ProbeCapability when the drive cannot
// compute an access order itself.
var ErrNativeUnsupported = errors.New("drive does not support native RAO")

// UDSLimits is the user data segment limits page returned by the drive.
type UDSLimits struct {
	// MaxSupported is the maximum number of segments per RAO query.
	MaxSupported uint16 `json:"max_supported" yaml:"max_supported"`

	// MaxSize is the maximum segment size reported by the drive.
	MaxSize uint16 `json:"max_size" yaml:"max_size"`
}

// Segment is one file submitted to, or returned by, a native RAO query.
type Segment struct {
	// Name identifies the segment, at most NameLength bytes.
	Name string

	// Begin is the first logical object id of the segment.
	Begin uint64

	// End is the last logical object id of the segment.
	End uint64
}

// EndOfWrapPosition is the calibration record returned by the drive for
// one wrap.
type EndOfWrapPosition struct {
	WrapNumber uint16
	Partition  uint16
	BlockID    uint64
}

// Drive is the subset of drive operations RAO depends on.
//
// All methods may block on hardware I/O.
type Drive interface {
	// ProbeCapability queries the native RAO limits. It returns
	// ErrNativeUnsupported (possibly wrapped) when the drive has none.
	ProbeCapability(ctx context.Context) (UDSLimits, error)

	// EndOfWrapPositions returns the calibration table of the mounted tape.
	EndOfWrapPositions(ctx context.Context) ([]EndOfWrapPosition, error)

	// QueryNativeOrder asks the drive to reorder segments. At most maxFiles
	// segments are submitted; the returned slice is in recommended order.
	QueryNativeOrder(ctx context.Context, segments []Segment, maxFiles int) ([]Segment, error)
}

// CalibrationTable converts end-of-wrap records into RAO calibration points.
func CalibrationTable(positions []EndOfWrapPosition) []rao.CalibrationPoint {
	points := make([]rao.CalibrationPoint, 0, len(positions))
	for _, p := range positions {
		points = append(points, rao.CalibrationPoint{
			WrapIndex: uint32(p.WrapNumber),
			BlockID:   p.BlockID,
		})
	}
	return points
}
