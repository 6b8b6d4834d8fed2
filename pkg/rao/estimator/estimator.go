// Package estimator maps a retrieve job's block id to an estimated physical
// position on tape without reading the tape.
//
// The variant set is closed: Interpolation is the only estimator today. A new
// variant gets a Kind constant and a case in New and PositionOf.
package estimator

import (
	"math"
	"sort"
	"strings"

	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/geometry"
)

// DefaultBlockSize is the tape block size, in bytes, assumed when deriving
// the end of a file from its size.
const DefaultBlockSize uint64 = 256000

// Kind selects a file position estimator variant.
type Kind int

const (
	// KindInterpolation interpolates linearly between end-of-wrap positions.
	KindInterpolation Kind = iota + 1
)

func (k Kind) String() string {
	switch k {
	case KindInterpolation:
		return rao.DefaultEstimator
	default:
		return "unknown"
	}
}

// ParseKind resolves an estimator name. Unknown names are ConfigurationErrors.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "interpolation":
		return KindInterpolation, nil
	default:
		return 0, rao.NewConfigurationError("unknown file position estimator %q", name)
	}
}

// Estimator computes FilePositionInfo values for retrieve jobs.
// It is immutable once built and safe for concurrent use.
type Estimator struct {
	kind      Kind
	points    []rao.CalibrationPoint
	minPos    uint64
	maxPos    uint64
	wrapCount uint64
	blockSize uint64
}

// New builds an estimator of the given kind.
//
// points is the (already corrected) calibration table. A zero blockSize
// selects DefaultBlockSize. Every construction problem, including a media
// geometry without MinPos, MaxPos or WrapCount, is a ConfigurationError.
func New(kind Kind, points []rao.CalibrationPoint, media *rao.MediaGeometry, blockSize uint64) (*Estimator, error) {
	if kind != KindInterpolation {
		return nil, rao.NewConfigurationError("unsupported file position estimator kind %d", kind)
	}
	if media == nil {
		return nil, rao.NewConfigurationError("no media geometry for interpolation estimator")
	}
	if !media.IsComplete() {
		return nil, rao.NewConfigurationError(
			"media type %q lacks min_lpos, max_lpos or nb_wraps required for interpolation", media.Name)
	}

	minPos, maxPos, wrapCount := *media.MinPos, *media.MaxPos, *media.WrapCount
	if minPos >= maxPos {
		return nil, rao.NewConfigurationError("media type %q has min_lpos %d not below max_lpos %d", media.Name, minPos, maxPos)
	}
	if wrapCount < geometry.BandCount {
		return nil, rao.NewConfigurationError("media type %q has %d wraps, at least %d required", media.Name, wrapCount, geometry.BandCount)
	}
	if err := geometry.ValidateCalibration(points); err != nil {
		return nil, err
	}
	for _, p := range points {
		if uint64(p.WrapIndex) >= wrapCount {
			return nil, rao.NewConfigurationError(
				"calibration wrap %d is beyond media type %q wrap count %d", p.WrapIndex, media.Name, wrapCount)
		}
	}

	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}

	table := make([]rao.CalibrationPoint, len(points))
	copy(table, points)

	return &Estimator{
		kind:      kind,
		points:    table,
		minPos:    minPos,
		maxPos:    maxPos,
		wrapCount: wrapCount,
		blockSize: blockSize,
	}, nil
}

// Kind returns the estimator variant.
func (e *Estimator) Kind() Kind {
	return e.kind
}

// LastBlock returns the last calibrated block id.
func (e *Estimator) LastBlock() uint64 {
	return e.points[len(e.points)-1].BlockID
}

// FilePosition estimates the physical extent of job.
//
// The start block must lie within the calibrated tape, otherwise a
// GeometryError is returned. The end block is start plus
// ceil(size/blockSize)+1 blocks, deliberately an overestimate, and is capped
// at the last calibrated block.
func (e *Estimator) FilePosition(job rao.Job) (rao.FilePositionInfo, error) {
	startBlock := job.BlockID()
	start, err := e.PositionOf(startBlock)
	if err != nil {
		return rao.FilePositionInfo{}, err
	}

	endBlock := e.LastBlock()
	if span := e.blocksSpanned(job.FileSize()); span <= endBlock-startBlock {
		endBlock = startBlock + span
	}
	end, err := e.PositionOf(endBlock)
	if err != nil {
		return rao.FilePositionInfo{}, err
	}

	return e.infoFor(start, end)
}

// AnchorPosition returns the position info of a zero-length file at block 0,
// i.e. the head position right after a rewind.
func (e *Estimator) AnchorPosition() (rao.FilePositionInfo, error) {
	start, err := e.PositionOf(0)
	if err != nil {
		return rao.FilePositionInfo{}, err
	}
	return e.infoFor(start, start)
}

// PositionOf maps a block id to its physical position.
func (e *Estimator) PositionOf(blockID uint64) (rao.Position, error) {
	switch e.kind {
	case KindInterpolation:
		return e.interpolate(blockID)
	default:
		return rao.Position{}, rao.NewConfigurationError("unsupported file position estimator kind %d", e.kind)
	}
}

// interpolate finds the first wrap whose boundary is at or after blockID and
// places the block linearly between the previous boundary (or block 0) and
// that boundary.
func (e *Estimator) interpolate(blockID uint64) (rao.Position, error) {
	i := sort.Search(len(e.points), func(i int) bool {
		return e.points[i].BlockID >= blockID
	})
	if i == len(e.points) {
		return rao.Position{}, rao.NewGeometryError(
			"block %d is beyond the last calibrated wrap boundary %d", blockID, e.LastBlock())
	}

	point := e.points[i]
	var previous uint64
	if i > 0 {
		previous = e.points[i-1].BlockID
	}

	span := e.maxPos - e.minPos
	var offset uint64
	if point.BlockID > previous {
		offset = (blockID - previous) * span / (point.BlockID - previous)
	}

	pos := e.minPos + offset
	if !geometry.IsForward(point.WrapIndex) {
		pos = e.maxPos - offset
	}

	return rao.Position{Wrap: point.WrapIndex, Pos: pos}, nil
}

func (e *Estimator) blocksSpanned(size uint64) uint64 {
	blocks := size / e.blockSize
	if size%e.blockSize != 0 {
		blocks++
	}
	if blocks == math.MaxUint64 {
		return blocks
	}
	return blocks + 1
}

func (e *Estimator) infoFor(start, end rao.Position) (rao.FilePositionInfo, error) {
	startBand, err := geometry.DetermineBand(e.wrapCount, start.Wrap)
	if err != nil {
		return rao.FilePositionInfo{}, err
	}
	endBand, err := geometry.DetermineBand(e.wrapCount, end.Wrap)
	if err != nil {
		return rao.FilePositionInfo{}, err
	}

	return rao.FilePositionInfo{
		Start:     start,
		End:       end,
		StartBand: startBand,
		EndBand:   endBand,
		StartZone: geometry.DetermineZone(e.minPos, e.maxPos, start.Pos),
		EndZone:   geometry.DetermineZone(e.minPos, e.maxPos, end.Pos),
	}, nil
}
