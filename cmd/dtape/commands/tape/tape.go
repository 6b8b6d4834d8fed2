// Package tape implements tape management commands.
package tape

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/pkg/catalogue"
)

// Cmd is the tape subcommand.
var Cmd = &cobra.Command{
	Use:   "tape",
	Short: "Manage tapes",
	Long: `Manage the tapes of the catalogue.

Every tape references a media type, which gives RAO its geometry.

Subcommands:
  add     Register a tape
  list    List tapes
  delete  Delete a tape`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
}

// TapeList is a list of tapes for table rendering.
type TapeList []*catalogue.Tape

// Headers implements TableRenderer.
func (l TapeList) Headers() []string {
	return []string{"VID", "MEDIA TYPE", "COMMENT"}
}

// Rows implements TableRenderer.
func (l TapeList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{t.VID, t.MediaType, cmdutil.EmptyOr(t.Comment, "-")})
	}
	return rows
}
