package tape

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <vid>",
	Short: "Delete a tape",
	Long: `Delete a tape from the catalogue.

You will be prompted for confirmation unless --force is specified.

Examples:
  dtape tape delete L80001 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	vid := args[0]

	_, store, err := cmdutil.OpenCatalogue()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return cmdutil.RunDeleteWithConfirmation(cmd.OutOrStdout(), "Tape", vid, deleteForce, func() error {
		if err := store.DeleteTape(cmd.Context(), vid); err != nil {
			return fmt.Errorf("failed to delete tape: %w", err)
		}
		return nil
	})
}
