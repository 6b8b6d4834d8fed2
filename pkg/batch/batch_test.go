package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittotape/internal/bytesize"
	"github.com/marmos91/dittotape/pkg/drive"
	"github.com/marmos91/dittotape/pkg/rao"
)

// ============================================================================
// Load Tests
// ============================================================================

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	doc, err := Load(filepath.Join("testdata", "lto8.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "V00001", doc.VID)
	assert.Equal(t, "drive0", doc.Drive)
	assert.Equal(t, "sltf", doc.Algorithm)
	require.Len(t, doc.Calibration, 4)
	assert.Equal(t, rao.CalibrationPoint{WrapIndex: 3, BlockID: 633521}, doc.Calibration[3])
	assert.Nil(t, doc.Native)

	require.Len(t, doc.Jobs, 4)
	assert.Equal(t, bytesize.MiB, doc.Jobs[0].Size)
	assert.Equal(t, 256*bytesize.KB, doc.Jobs[1].Size)
	assert.Equal(t, bytesize.ByteSize(4096), doc.Jobs[2].Size)
	assert.Equal(t, bytesize.GiB, doc.Jobs[3].Size)
}

func TestLoad_JSON(t *testing.T) {
	t.Parallel()

	doc, err := Load(filepath.Join("testdata", "native.json"))
	require.NoError(t, err)

	assert.Equal(t, "V00002", doc.VID)
	require.NotNil(t, doc.Native)
	assert.Equal(t, uint16(3), doc.Native.MaxSupported)
	assert.Equal(t, bytesize.KiB, doc.Jobs[1].Size)
	assert.Empty(t, doc.Calibration)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatJSON, FormatFromPath("batch.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("batch.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("batch"))
}

// ============================================================================
// Validation Tests
// ============================================================================

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"Empty", "", "empty document"},
		{"MissingVID", "jobs: [{fseq: 1, block_id: 1}]", "VID is required"},
		{"LongVID", "vid: V0000001\njobs: [{fseq: 1}]", "at most 6"},
		{"NoJobs", "vid: V00001\njobs: []", "Jobs"},
		{"ZeroFSeq", "vid: V00001\njobs: [{fseq: 0, block_id: 1}]", "FSeq is required"},
		{"UnknownField", "vid: V00001\ncolour: blue\njobs: [{fseq: 1}]", "colour"},
		{"BadSize", "vid: V00001\njobs: [{fseq: 1, size: 3 parsecs}]", "byte size"},
		{"UnorderedCalibration", "vid: V00001\ncalibration: [{wrap: 0, block_id: 10}, {wrap: 1, block_id: 5}]\njobs: [{fseq: 1}]", "ConfigurationError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.input), FormatYAML)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecode_JSONUnknownField(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"vid":"V00001","jobs":[{"fseq":1}],"extra":true}`), FormatJSON)
	assert.ErrorContains(t, err, "extra")
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("vid: V00001"), "toml")
	assert.ErrorContains(t, err, "unsupported")
}

// ============================================================================
// Conversion Tests
// ============================================================================

func TestRAOJobsAndFSeqs(t *testing.T) {
	t.Parallel()

	doc, err := Load(filepath.Join("testdata", "lto8.yaml"))
	require.NoError(t, err)

	jobs := doc.RAOJobs()
	require.Len(t, jobs, 4)
	assert.Equal(t, uint64(215000), jobs[0].BlockID())
	assert.Equal(t, uint64(1), jobs[0].FSeq())
	assert.Equal(t, uint64(bytesize.MiB), jobs[0].FileSize())

	assert.Equal(t, []uint64{4, 3, 2, 1}, doc.FSeqs([]int{3, 2, 1, 0}))
}

func TestSimulatedDrive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	doc, err := Load(filepath.Join("testdata", "native.json"))
	require.NoError(t, err)
	limits, err := doc.SimulatedDrive().ProbeCapability(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), limits.MaxSupported)

	doc, err = Load(filepath.Join("testdata", "lto8.yaml"))
	require.NoError(t, err)
	d := doc.SimulatedDrive()
	_, err = d.ProbeCapability(ctx)
	assert.ErrorIs(t, err, drive.ErrNativeUnsupported)

	positions, err := d.EndOfWrapPositions(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc.Calibration, drive.CalibrationTable(positions))
}

// ============================================================================
// Encode Tests
// ============================================================================

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := Load(filepath.Join("testdata", "lto8.yaml"))
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, doc, format))

		back, err := Decode(&buf, format)
		require.NoError(t, err, string(format))
		assert.Equal(t, doc, back, string(format))
	}
}

func TestEncode_File(t *testing.T) {
	t.Parallel()

	doc := &Document{VID: "V00003", Jobs: []Job{{FSeq: 1, BlockID: 5, Size: bytesize.KiB}}}
	path := filepath.Join(t.TempDir(), "out.json")

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, doc, FormatFromPath(path)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}
