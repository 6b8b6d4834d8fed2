package catalogue

import (
	"fmt"
	"strings"
	"time"

	"github.com/marmos91/dittotape/pkg/rao"
)

// MaxVIDLength is the longest volume id accepted.
const MaxVIDLength = 6

// MediaType describes a tape media type (LTO-8, LTO-9, ...).
//
// MinLPos, MaxLPos and NbWraps are optional; SLTF cannot run on a tape whose
// media type leaves any of them unset.
type MediaType struct {
	Name      string    `gorm:"primaryKey;size:100" json:"name" yaml:"name"`
	Cartridge string    `gorm:"size:100" json:"cartridge,omitempty" yaml:"cartridge,omitempty"`
	Capacity  uint64    `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	MinLPos   *uint64   `json:"min_lpos,omitempty" yaml:"min_lpos,omitempty"`
	MaxLPos   *uint64   `json:"max_lpos,omitempty" yaml:"max_lpos,omitempty"`
	NbWraps   *uint64   `json:"nb_wraps,omitempty" yaml:"nb_wraps,omitempty"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty" yaml:"comment,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at" yaml:"-"`
}

// TableName returns the table name for MediaType.
func (MediaType) TableName() string {
	return "media_types"
}

// Validate checks the media type fields.
func (m *MediaType) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: media type name is required", ErrInvalid)
	}
	if m.MinLPos != nil && m.MaxLPos != nil && *m.MinLPos >= *m.MaxLPos {
		return fmt.Errorf("%w: min_lpos %d must be below max_lpos %d", ErrInvalid, *m.MinLPos, *m.MaxLPos)
	}
	if m.NbWraps != nil && *m.NbWraps == 0 {
		return fmt.Errorf("%w: nb_wraps must be positive", ErrInvalid)
	}
	return nil
}

// Geometry returns the RAO view of the media type. Pointers are copied.
func (m *MediaType) Geometry() *rao.MediaGeometry {
	return &rao.MediaGeometry{
		Name:      m.Name,
		MinPos:    copyUint(m.MinLPos),
		MaxPos:    copyUint(m.MaxLPos),
		WrapCount: copyUint(m.NbWraps),
	}
}

// Clone returns a deep copy.
func (m *MediaType) Clone() *MediaType {
	c := *m
	c.MinLPos = copyUint(m.MinLPos)
	c.MaxLPos = copyUint(m.MaxLPos)
	c.NbWraps = copyUint(m.NbWraps)
	return &c
}

// Tape is a cartridge known to the catalogue.
type Tape struct {
	VID       string    `gorm:"primaryKey;size:20" json:"vid" yaml:"vid"`
	MediaType string    `gorm:"index;not null;size:100" json:"media_type" yaml:"media_type"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty" yaml:"comment,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at" yaml:"-"`
}

// TableName returns the table name for Tape.
func (Tape) TableName() string {
	return "tapes"
}

// Validate checks the tape fields.
func (t *Tape) Validate() error {
	if t.VID == "" {
		return fmt.Errorf("%w: vid is required", ErrInvalid)
	}
	if len(t.VID) > MaxVIDLength {
		return fmt.Errorf("%w: vid %q longer than %d characters", ErrInvalid, t.VID, MaxVIDLength)
	}
	if t.MediaType == "" {
		return fmt.Errorf("%w: media type is required", ErrInvalid)
	}
	return nil
}

// Clone returns a copy.
func (t *Tape) Clone() *Tape {
	c := *t
	return &c
}

// AllModels returns the models to migrate.
func AllModels() []any {
	return []any{&MediaType{}, &Tape{}}
}

// Uint64 returns a pointer to v, for optional geometry fields.
func Uint64(v uint64) *uint64 {
	return &v
}

func copyUint(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
