// Package batch reads recall batch documents: the tape, its calibration
// table, the drive native limits and the retrieve jobs to order.
//
// Documents are YAML or JSON:
//
//	vid: V00001
//	drive: drive0
//	calibration:
//	  - {wrap: 0, block_id: 208310}
//	  - {wrap: 1, block_id: 416271}
//	native:
//	  max_supported: 30
//	jobs:
//	  - {fseq: 1, block_id: 10, size: 1Mi}
package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/dittotape/internal/bytesize"
	"github.com/marmos91/dittotape/pkg/drive"
	"github.com/marmos91/dittotape/pkg/rao"
	"github.com/marmos91/dittotape/pkg/rao/geometry"
)

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// MaxJobs bounds the number of jobs in one document. SLTF is quadratic in
// the batch size and does not observe cancellation.
const MaxJobs = 4096

// Job is one retrieve request of a batch.
type Job struct {
	FSeq    uint64            `json:"fseq" yaml:"fseq" validate:"required"`
	BlockID uint64            `json:"block_id" yaml:"block_id"`
	Size    bytesize.ByteSize `json:"size" yaml:"size"`
}

// Document is a recall batch.
type Document struct {
	// VID is the volume id of the tape.
	VID string `json:"vid" yaml:"vid" validate:"required,max=6"`

	// Drive names the drive, for logs only.
	Drive string `json:"drive,omitempty" yaml:"drive,omitempty"`

	// Algorithm overrides the configured algorithm when set.
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`

	// RAO set to false keeps the batch order for this document.
	RAO *bool `json:"rao,omitempty" yaml:"rao,omitempty"`

	// Calibration is the end-of-wrap table the drive would report.
	Calibration []rao.CalibrationPoint `json:"calibration,omitempty" yaml:"calibration,omitempty"`

	// Native holds the drive native ordering limits. Nil means the drive
	// cannot order natively.
	Native *drive.UDSLimits `json:"native,omitempty" yaml:"native,omitempty"`

	Jobs []Job `json:"jobs" yaml:"jobs" validate:"required,min=1,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the document.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid batch: %s", describe(verrs))
		}
		return fmt.Errorf("invalid batch: %w", err)
	}
	if len(d.Jobs) > MaxJobs {
		return fmt.Errorf("invalid batch: %d jobs exceed the limit of %d", len(d.Jobs), MaxJobs)
	}
	if len(d.Calibration) > 0 {
		if err := geometry.ValidateCalibration(d.Calibration); err != nil {
			return fmt.Errorf("invalid batch: %w", err)
		}
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entries", fe.Namespace(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Namespace(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// RAOJobs returns the jobs as rao.Job values, in document order.
func (d *Document) RAOJobs() []rao.Job {
	jobs := make([]rao.Job, len(d.Jobs))
	for i, j := range d.Jobs {
		jobs[i] = rao.FileJob{Block: j.BlockID, Seq: j.FSeq, Size: j.Size.Uint64()}
	}
	return jobs
}

// FSeqs returns the fseqs of the jobs at the given batch indices.
func (d *Document) FSeqs(order []int) []uint64 {
	fseqs := make([]uint64, len(order))
	for i, idx := range order {
		fseqs[i] = d.Jobs[idx].FSeq
	}
	return fseqs
}

// SimulatedDrive returns a drive answering with the document calibration
// table and native limits.
func (d *Document) SimulatedDrive() *drive.Simulated {
	opts := []drive.SimulatedOption{drive.WithCalibration(d.Calibration)}
	if d.Native != nil {
		opts = append(opts, drive.WithNativeLimits(*d.Native))
	}
	return drive.NewSimulated(opts...)
}

// FormatFromPath picks the format from a file extension, YAML by default.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// Decode reads and validates a document. Unknown fields are rejected.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode batch: %w", err)
		}
	case FormatYAML, "":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to decode batch: empty document")
			}
			return nil, fmt.Errorf("failed to decode batch: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported batch format %q", format)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Parse is Decode over a byte slice.
func Parse(data []byte, format Format) (*Document, error) {
	return Decode(bytes.NewReader(data), format)
}

// Encode writes doc in format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported batch format %q", format)
	}
}
