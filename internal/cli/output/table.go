package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by results that render as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes a borderless, left-aligned table.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := newTable(w, "")
	table.SetHeader(data.Headers())
	table.SetAutoFormatHeaders(true)
	table.AppendBulk(data.Rows())
	table.Render()
	return nil
}

// Table is an ad-hoc TableRenderer.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, rows: make([][]string, 0)}
}

// AddRow appends a row.
func (t *Table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *Table) Headers() []string { return t.headers }

func (t *Table) Rows() [][]string { return t.rows }

// KeyValues is a two-column listing used for single records.
type KeyValues [][2]string

// PrintKeyValues writes pairs as aligned "key: value" lines.
func PrintKeyValues(w io.Writer, pairs KeyValues) error {
	table := newTable(w, ":")
	table.SetAutoFormatHeaders(false)
	for _, pair := range pairs {
		table.Append([]string{pair[0], pair[1]})
	}
	table.Render()
	return nil
}

func newTable(w io.Writer, columnSeparator string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(columnSeparator)
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}
