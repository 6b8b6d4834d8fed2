// Package media implements media type management commands.
package media

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/internal/bytesize"
	"github.com/marmos91/dittotape/internal/cli/output"
	"github.com/marmos91/dittotape/pkg/catalogue"
)

// Cmd is the media subcommand.
var Cmd = &cobra.Command{
	Use:   "media",
	Short: "Manage media types",
	Long: `Manage the media types of the catalogue.

A media type carries the tape geometry SLTF needs: the first and last
longitudinal positions and the number of wraps.

Subcommands:
  add     Register a media type
  list    List media types
  get     Show one media type
  delete  Delete a media type`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(deleteCmd)
}

// MediaTypeList is a list of media types for table rendering.
type MediaTypeList []*catalogue.MediaType

// Headers implements TableRenderer.
func (l MediaTypeList) Headers() []string {
	return []string{"NAME", "CARTRIDGE", "CAPACITY", "MIN LPOS", "MAX LPOS", "WRAPS"}
}

// Rows implements TableRenderer.
func (l MediaTypeList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, mt := range l {
		rows = append(rows, []string{
			mt.Name,
			cmdutil.EmptyOr(mt.Cartridge, "-"),
			capacity(mt.Capacity),
			cmdutil.OptionalUint(mt.MinLPos),
			cmdutil.OptionalUint(mt.MaxLPos),
			cmdutil.OptionalUint(mt.NbWraps),
		})
	}
	return rows
}

// details returns the key/value view of one media type.
func details(mt *catalogue.MediaType) output.KeyValues {
	return output.KeyValues{
		{"Name", mt.Name},
		{"Cartridge", cmdutil.EmptyOr(mt.Cartridge, "-")},
		{"Capacity", capacity(mt.Capacity)},
		{"Min LPos", cmdutil.OptionalUint(mt.MinLPos)},
		{"Max LPos", cmdutil.OptionalUint(mt.MaxLPos)},
		{"Wraps", cmdutil.OptionalUint(mt.NbWraps)},
		{"SLTF ready", strconv.FormatBool(mt.Geometry().IsComplete())},
		{"Comment", cmdutil.EmptyOr(mt.Comment, "-")},
	}
}

func capacity(b uint64) string {
	if b == 0 {
		return "-"
	}
	return bytesize.ByteSize(b).String()
}
