package media

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/internal/cli/output"
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show one media type",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	_, store, err := cmdutil.OpenCatalogue()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	mt, err := store.GetMediaType(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get media type: %w", err)
	}

	printer, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if printer.Format() != output.FormatTable {
		return printer.Print(mt)
	}
	return output.PrintKeyValues(cmd.OutOrStdout(), details(mt))
}
