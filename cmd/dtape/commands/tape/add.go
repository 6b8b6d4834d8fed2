package tape

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/pkg/catalogue"
)

var (
	addMediaType string
	addComment   string
)

var addCmd = &cobra.Command{
	Use:   "add <vid>",
	Short: "Register a tape",
	Long: `Register a tape in the catalogue. The media type must exist.

Examples:
  dtape tape add L80001 --media-type LTO8`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addMediaType, "media-type", "m", "", "Media type name (required)")
	addCmd.Flags().StringVar(&addComment, "comment", "", "Free-form comment")
	_ = addCmd.MarkFlagRequired("media-type")
}

func runAdd(cmd *cobra.Command, args []string) error {
	tape := &catalogue.Tape{
		VID:       args[0],
		MediaType: addMediaType,
		Comment:   addComment,
	}

	_, store, err := cmdutil.OpenCatalogue()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTape(cmd.Context(), tape); err != nil {
		return fmt.Errorf("failed to add tape: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(cmd.OutOrStdout(), tape, fmt.Sprintf("Tape '%s' added", tape.VID))
}
