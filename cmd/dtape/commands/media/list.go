package media

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List media types",
	Long: `List the media types of the catalogue.

Examples:
  # List as table
  dtape media list

  # List as JSON
  dtape media list -o json`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	_, store, err := cmdutil.OpenCatalogue()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	types, err := store.ListMediaTypes(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list media types: %w", err)
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), types, len(types) == 0, "No media types found.", MediaTypeList(types))
}
