package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type plan struct {
	VID   string `json:"vid" yaml:"vid"`
	Order []int  `json:"order" yaml:"order"`
}

func (p plan) Headers() []string { return []string{"Position", "Job"} }

func (p plan) Rows() [][]string {
	return [][]string{{"0", "2"}, {"1", "0"}}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yml ", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPrinter_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(plan{VID: "L00001"}))

	out := buf.String()
	assert.Contains(t, out, "POSITION")
	assert.Contains(t, out, "JOB")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestPrinter_TableFallsBackToJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(map[string]int{"a": 1}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got["a"])
}

func TestPrinter_Structured(t *testing.T) {
	t.Parallel()

	in := plan{VID: "L00001", Order: []int{2, 0, 1}}

	var jsonBuf bytes.Buffer
	require.NoError(t, NewPrinter(&jsonBuf, FormatJSON, false).Print(in))
	assert.Contains(t, jsonBuf.String(), "\n  \"vid\": \"L00001\"")

	var yamlBuf bytes.Buffer
	require.NoError(t, NewPrinter(&yamlBuf, FormatYAML, false).Print(in))
	var got plan
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &got))
	assert.Equal(t, in, got)
}

func TestPrinter_Status(t *testing.T) {
	t.Parallel()

	var plain bytes.Buffer
	NewPrinter(&plain, FormatTable, false).Success("saved")
	assert.Equal(t, "saved\n", plain.String())

	var colored bytes.Buffer
	NewPrinter(&colored, FormatTable, true).Warning("careful")
	assert.Equal(t, "\033[33mcareful\033[0m\n", colored.String())

	var quiet bytes.Buffer
	NewPrinter(&quiet, FormatJSON, true).Success("saved")
	assert.Empty(t, quiet.String())
}

func TestTable(t *testing.T) {
	t.Parallel()

	table := NewTable("VID", "Media Type")
	assert.Empty(t, table.Rows())

	table.AddRow("L00001", "LTO-7")
	table.AddRow("L00002", "LTO-8")
	require.Len(t, table.Rows(), 2)
	assert.Equal(t, []string{"L00002", "LTO-8"}, table.Rows()[1])

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))
	assert.Contains(t, buf.String(), "MEDIA TYPE")
	assert.Contains(t, buf.String(), "L00002")
}

func TestPrintKeyValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintKeyValues(&buf, KeyValues{{"Name", "LTO-7"}, {"Wraps", "112"}}))

	out := buf.String()
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "LTO-7")
	assert.Contains(t, out, "112")
}
