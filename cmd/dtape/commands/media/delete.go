package media

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a media type",
	Long: `Delete a media type from the catalogue.

A media type still referenced by tapes cannot be deleted. You will be
prompted for confirmation unless --force is specified.

Examples:
  dtape media delete LTO8 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	_, store, err := cmdutil.OpenCatalogue()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return cmdutil.RunDeleteWithConfirmation(cmd.OutOrStdout(), "Media type", name, deleteForce, func() error {
		if err := store.DeleteMediaType(cmd.Context(), name); err != nil {
			return fmt.Errorf("failed to delete media type: %w", err)
		}
		return nil
	})
}
