// Package geometry provides pure functions over the serpentine tape model:
// calibration correction, band and landing zone quantization, and the
// transition predicates consumed by cost heuristics.
//
// The tape is modeled as WrapCount wraps grouped into exactly 4 bands.
// Even wraps are recorded from MinPos towards MaxPos, odd wraps from MaxPos
// back towards MinPos.
package geometry

import (
	"github.com/marmos91/dittotape/pkg/rao"
)

// BandCount is the number of physical bands a tape is divided into.
const BandCount = 4

// ImproveLastWrapBoundary corrects the last calibration point.
//
// The drive reports the last block written on the last wrap rather than the
// true end of that wrap, so the value is short. The corrected boundary is the
// second-to-last boundary plus the mean span of every preceding wrap, the
// first wrap spanning from block 0. The reported value is kept if the
// correction would not extend it, so the result is only greater than or
// equal to the reported boundary, never strictly greater in every case:
// when the last wrap is already longer than the mean, as in
// [(0,100),(1,250)], the boundary stays at 250.
//
// The input slice is not modified. Fewer than 2 points are returned as is.
func ImproveLastWrapBoundary(points []rao.CalibrationPoint) []rao.CalibrationPoint {
	improved := make([]rao.CalibrationPoint, len(points))
	copy(improved, points)

	n := len(improved)
	if n < 2 {
		return improved
	}

	var (
		total    uint64
		previous uint64
	)
	for _, p := range improved[:n-1] {
		total += p.BlockID - previous
		previous = p.BlockID
	}
	meanSpan := total / uint64(n-1)

	corrected := improved[n-2].BlockID + meanSpan
	if corrected > improved[n-1].BlockID {
		improved[n-1].BlockID = corrected
	}
	return improved
}

// ValidateCalibration checks that the calibration table is usable: not
// empty and strictly increasing in block id.
func ValidateCalibration(points []rao.CalibrationPoint) error {
	if len(points) == 0 {
		return rao.NewConfigurationError("empty calibration table")
	}
	for i := 1; i < len(points); i++ {
		if points[i].BlockID <= points[i-1].BlockID {
			return rao.NewConfigurationError(
				"calibration table not strictly increasing at wrap %d (block %d after %d)",
				points[i].WrapIndex, points[i].BlockID, points[i-1].BlockID)
		}
	}
	return nil
}

// DetermineBand returns the band (0..3) holding wrapIndex.
func DetermineBand(wrapCount uint64, wrapIndex uint32) (uint8, error) {
	if wrapCount < BandCount {
		return 0, rao.NewConfigurationError("wrap count %d is lower than the band count %d", wrapCount, BandCount)
	}
	if uint64(wrapIndex) >= wrapCount {
		return 0, rao.NewGeometryError("wrap %d is beyond the tape wrap count %d", wrapIndex, wrapCount)
	}

	band := uint64(wrapIndex) / (wrapCount / BandCount)
	// wrapCount not divisible by 4 leaves a few trailing wraps in the last band
	if band >= BandCount {
		band = BandCount - 1
	}
	return uint8(band), nil
}

// DetermineZone returns the landing zone of pos: 0 below the middle of the
// tape, 1 otherwise.
func DetermineZone(minPos, maxPos, pos uint64) uint8 {
	mid := minPos + (maxPos-minPos)/2
	if pos < mid {
		return 0
	}
	return 1
}

// IsForward reports whether wrap is recorded towards MaxPos.
func IsForward(wrap uint32) bool {
	return wrap%2 == 0
}

// ============================================================================
// Transition predicates
// ============================================================================
//
// Each predicate compares the end of the file just read (from) with the start
// of the candidate next file (to).

// WrapChanged reports whether the head must move to another wrap.
func WrapChanged(from, to rao.FilePositionInfo) bool {
	return from.End.Wrap != to.Start.Wrap
}

// BandChanged reports whether the head must move to another band.
func BandChanged(from, to rao.FilePositionInfo) bool {
	return from.EndBand != to.StartBand
}

// ZoneChanged reports whether the target lies in the other landing zone.
func ZoneChanged(from, to rao.FilePositionInfo) bool {
	return from.EndZone != to.StartZone
}

// DirectionReversed reports whether the two wraps run in opposite directions.
func DirectionReversed(from, to rao.FilePositionInfo) bool {
	return IsForward(from.End.Wrap) != IsForward(to.Start.Wrap)
}

// StepsBack reports whether the target is on the same wrap but behind the
// head, against the wrap's recording direction.
func StepsBack(from, to rao.FilePositionInfo) bool {
	if from.End.Wrap != to.Start.Wrap {
		return false
	}
	if IsForward(from.End.Wrap) {
		return to.Start.Pos < from.End.Pos
	}
	return to.Start.Pos > from.End.Pos
}
