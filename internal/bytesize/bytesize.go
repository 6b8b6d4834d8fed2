// Package bytesize parses and formats human-readable byte sizes used for
// tape block sizes and recall file sizes.
package bytesize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes. It decodes from plain numbers or from
// strings with a unit suffix:
//
//   - Binary units (×1024): Ki/KiB, Mi/MiB, Gi/GiB, Ti/TiB
//   - Decimal units (×1000): K/KB, M/MB, G/GB, T/TB
//   - Bytes: B or no suffix
//
// Examples: "256000", "256KB", "1.5Gi", "12TB".
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

var pattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([a-z]*)\s*$`)

var multipliers = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB,
	"m": MB, "mb": MB,
	"g": GB, "gb": GB,
	"t": TB, "tb": TB,
	"ki": KiB, "kib": KiB,
	"mi": MiB, "mib": MiB,
	"gi": GiB, "gib": GiB,
	"ti": TiB, "tib": TiB,
}

// exactUnits are tried largest first when formatting without loss.
var exactUnits = []struct {
	suffix string
	size   ByteSize
}{
	{"Ti", TiB}, {"TB", TB},
	{"Gi", GiB}, {"GB", GB},
	{"Mi", MiB}, {"MB", MB},
	{"Ki", KiB}, {"KB", KB},
}

// Parse parses a human-readable byte size.
func Parse(s string) (ByteSize, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}
	multiplier, ok := multipliers[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
	}

	if strings.Contains(m[1], ".") {
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in byte size: %q", m[1])
		}
		return ByteSize(num * float64(multiplier)), nil
	}

	num, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in byte size: %q", m[1])
	}
	return ByteSize(num) * multiplier, nil
}

// MustParse is Parse that panics on error, for constants and tests.
func MustParse(s string) ByteSize {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}

// UnmarshalText implements encoding.TextUnmarshaler, which viper decode
// hooks and yaml.v3 use for string values.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalText renders the size in its exact compact form.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.Exact()), nil
}

// UnmarshalJSON accepts a JSON number or a size string.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid byte size %s: %w", n, err)
		}
		*b = ByteSize(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("byte size must be a number or a string: %w", err)
	}
	return b.UnmarshalText([]byte(s))
}

// Exact renders b with the largest unit dividing it exactly, or in plain
// bytes. Parse(b.Exact()) == b.
func (b ByteSize) Exact() string {
	if b == 0 {
		return "0"
	}
	for _, u := range exactUnits {
		if b%u.size == 0 {
			return strconv.FormatUint(uint64(b/u.size), 10) + u.suffix
		}
	}
	return strconv.FormatUint(uint64(b), 10)
}

// String returns a rounded binary-unit representation for display.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// Uint64 returns the size in bytes.
func (b ByteSize) Uint64() uint64 {
	return uint64(b)
}
