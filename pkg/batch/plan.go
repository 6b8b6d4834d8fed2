package batch

import (
	"context"
	"time"

	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/rao/manager"
)

// AlgorithmDisabled is reported when RAO is disabled and the batch keeps
// its order.
const AlgorithmDisabled = "disabled"

// Plan is the recall order computed for a document.
type Plan struct {
	MountID   string        `json:"mount_id" yaml:"mount_id"`
	VID       string        `json:"vid" yaml:"vid"`
	Algorithm string        `json:"algorithm" yaml:"algorithm"`
	Order     []int         `json:"order" yaml:"order"`
	FSeqs     []uint64      `json:"fseqs" yaml:"fseqs"`
	Timings   []StageTiming `json:"timings" yaml:"timings"`
	TotalMs   float64       `json:"total_ms" yaml:"total_ms"`

	// MaxFiles is the drive limit of files per native query, the size a
	// caller should give its next batch. Zero when the drive reports none.
	MaxFiles int `json:"max_files,omitempty" yaml:"max_files,omitempty"`
}

// StageTiming is one timed stage of a plan.
type StageTiming struct {
	Name       string  `json:"name" yaml:"name"`
	DurationMs float64 `json:"duration_ms" yaml:"duration_ms"`
}

// Plan orders the jobs of d as a mount of d.VID would, on a simulated drive
// answering with the document calibration table and native limits.
//
// base carries the configured RAO settings. The document volume id and
// drive replace those of base, a document algorithm overrides the
// configured one, and rao: false keeps the batch order.
func (d *Document) Plan(ctx context.Context, base manager.Params, cat catalogue.Catalogue, opts ...manager.Option) (*Plan, error) {
	params := base
	params.VID = d.VID
	params.Drive = d.Drive
	if d.Algorithm != "" {
		params.Algorithm = d.Algorithm
	}

	m, err := manager.New(params, d.SimulatedDrive(), cat, opts...)
	if err != nil {
		return nil, err
	}
	if d.RAO != nil && !*d.RAO {
		m.Disable()
	}

	result, err := m.Query(ctx, d.RAOJobs())
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		MountID:   m.MountID(),
		VID:       d.VID,
		Algorithm: AlgorithmDisabled,
		Order:     result.Order,
		FSeqs:     d.FSeqs(result.Order),
		Timings:   make([]StageTiming, 0, len(result.Timings)),
		TotalMs:   milliseconds(result.Timings.Total()),
	}
	if m.Enabled() {
		res, err := m.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		plan.Algorithm = res.Algorithm.Name().String()
		if n, ok := m.MaxFilesSupported(); ok {
			plan.MaxFiles = n
		}
	}
	for _, stage := range result.Timings {
		plan.Timings = append(plan.Timings, StageTiming{Name: stage.Name, DurationMs: milliseconds(stage.Duration)})
	}
	return plan, nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
