// Package rao holds the value types shared by the Recommended Access Order
// (RAO) components: calibration points, media geometry, physical positions,
// retrieve jobs and the error taxonomy.
//
// Import graph: rao <- geometry <- estimator, cost <- algorithm <- manager
package rao

import "fmt"

// CalibrationPoint marks the tape block boundary at the end of a wrap.
//
// A mount holds an ordered sequence of these, strictly increasing in BlockID
// and indexed by WrapIndex. The drive reports them once per mount
// (READ END OF WRAP POSITION).
type CalibrationPoint struct {
	WrapIndex uint32 `json:"wrap" yaml:"wrap"`
	BlockID   uint64 `json:"block_id" yaml:"block_id"`
}

// MediaGeometry describes the physical layout of a media type.
//
// MinPos, MaxPos and WrapCount are optional in the catalogue; an
// interpolation estimator cannot be built without them.
type MediaGeometry struct {
	Name      string  `json:"name" yaml:"name"`
	MinPos    *uint64 `json:"min_lpos,omitempty" yaml:"min_lpos,omitempty"`
	MaxPos    *uint64 `json:"max_lpos,omitempty" yaml:"max_lpos,omitempty"`
	WrapCount *uint64 `json:"nb_wraps,omitempty" yaml:"nb_wraps,omitempty"`
}

// IsComplete reports whether every optional geometry field is set.
func (g *MediaGeometry) IsComplete() bool {
	return g != nil && g.MinPos != nil && g.MaxPos != nil && g.WrapCount != nil
}

// Position is a physical location on tape: a wrap and the longitudinal
// position (LPos) of the head along that wrap.
type Position struct {
	Wrap uint32 `json:"wrap"`
	Pos  uint64 `json:"lpos"`
}

func (p Position) String() string {
	return fmt.Sprintf("wrap=%d lpos=%d", p.Wrap, p.Pos)
}

// FilePositionInfo is the estimated physical extent of a file on tape.
type FilePositionInfo struct {
	Start     Position `json:"start"`
	End       Position `json:"end"`
	StartBand uint8    `json:"start_band"`
	EndBand   uint8    `json:"end_band"`
	StartZone uint8    `json:"start_zone"`
	EndZone   uint8    `json:"end_zone"`
}

// Job is the read-only view of a retrieve job that RAO needs.
// Ownership stays with the scheduler.
type Job interface {
	// BlockID is the logical object identifier of the file's first block.
	BlockID() uint64

	// FSeq is the tape-file sequence number.
	FSeq() uint64

	// FileSize is the file size in bytes.
	FileSize() uint64
}

// FileJob is a plain Job value.
type FileJob struct {
	Block uint64 `json:"block_id" yaml:"block_id"`
	Seq   uint64 `json:"fseq" yaml:"fseq"`
	Size  uint64 `json:"size" yaml:"size"`
}

func (j FileJob) BlockID() uint64  { return j.Block }
func (j FileJob) FSeq() uint64     { return j.Seq }
func (j FileJob) FileSize() uint64 { return j.Size }

// Capability is the resolved drive capability for a mount. It is computed
// once from the drive probe and never mutated afterwards.
type Capability struct {
	// HasNativeSupport is true when the drive answers RAO queries itself.
	HasNativeSupport bool

	// MaxFilesPerNativeQuery is the per-query file limit (0 when unknown).
	MaxFilesPerNativeQuery int
}

// MaxFiles returns the per-query file limit and whether one is known.
func (c Capability) MaxFiles() (int, bool) {
	return c.MaxFilesPerNativeQuery, c.MaxFilesPerNativeQuery > 0
}
