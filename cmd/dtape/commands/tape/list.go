package tape

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
)

var listMediaType string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tapes",
	Long: `List the tapes of the catalogue.

Examples:
  # All tapes
  dtape tape list

  # Only LTO-8 tapes, as YAML
  dtape tape list --media-type LTO8 -o yaml`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listMediaType, "media-type", "m", "", "Only list tapes of this media type")
}

func runList(cmd *cobra.Command, args []string) error {
	_, store, err := cmdutil.OpenCatalogue()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tapes, err := store.ListTapes(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tapes: %w", err)
	}

	if listMediaType != "" {
		filtered := tapes[:0]
		for _, t := range tapes {
			if t.MediaType == listMediaType {
				filtered = append(filtered, t)
			}
		}
		tapes = filtered
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), tapes, len(tapes) == 0, "No tapes found.", TapeList(tapes))
}
