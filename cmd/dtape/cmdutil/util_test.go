package cmdutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittotape/internal/cli/output"
	"github.com/marmos91/dittotape/pkg/catalogue"
)

func withOutput(t *testing.T, format string) {
	t.Helper()
	prev := *Flags
	Flags.Output = format
	Flags.NoColor = true
	t.Cleanup(func() { *Flags = prev })
}

func TestEmptyOr(t *testing.T) {
	assert.Equal(t, "LTO-9", EmptyOr("LTO-9", "-"))
	assert.Equal(t, "-", EmptyOr("", "-"))
}

func TestOptionalUint(t *testing.T) {
	assert.Equal(t, "-", OptionalUint(nil))
	assert.Equal(t, "171097", OptionalUint(catalogue.Uint64(171097)))
}

func TestPrintOutput(t *testing.T) {
	table := output.NewTable("VID", "MEDIA TYPE")
	table.AddRow("L00001", "LTO-7")

	t.Run("Empty", func(t *testing.T) {
		withOutput(t, "table")
		var buf bytes.Buffer
		require.NoError(t, PrintOutput(&buf, []string{}, true, "No tapes found.", table))
		assert.Equal(t, "No tapes found.\n", buf.String())
	})

	t.Run("Table", func(t *testing.T) {
		withOutput(t, "")
		var buf bytes.Buffer
		require.NoError(t, PrintOutput(&buf, nil, false, "", table))
		assert.Contains(t, buf.String(), "L00001")
	})

	t.Run("JSON", func(t *testing.T) {
		withOutput(t, "json")
		var buf bytes.Buffer
		require.NoError(t, PrintOutput(&buf, []string{"L00001"}, false, "", table))
		assert.JSONEq(t, `["L00001"]`, buf.String())
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		withOutput(t, "xml")
		assert.Error(t, PrintOutput(&bytes.Buffer{}, nil, false, "", table))
	})
}

func TestPrintResourceWithSuccess(t *testing.T) {
	withOutput(t, "table")
	var buf bytes.Buffer
	require.NoError(t, PrintResourceWithSuccess(&buf, map[string]string{"vid": "L00001"}, "Tape 'L00001' created"))
	assert.Equal(t, "Tape 'L00001' created\n", buf.String())
}

func TestRunDeleteWithConfirmation(t *testing.T) {
	withOutput(t, "table")

	var buf bytes.Buffer
	called := false
	require.NoError(t, RunDeleteWithConfirmation(&buf, "Tape", "L00001", true, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
	assert.Contains(t, buf.String(), "Tape 'L00001' deleted successfully")

	boom := errors.New("catalogue is closed")
	err := RunDeleteWithConfirmation(&bytes.Buffer{}, "Tape", "L00001", true, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}
