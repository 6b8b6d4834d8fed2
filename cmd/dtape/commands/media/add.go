package media

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/internal/bytesize"
	"github.com/marmos91/dittotape/pkg/catalogue"
)

var (
	addCartridge string
	addCapacity  string
	addMinLPos   uint64
	addMaxLPos   uint64
	addWraps     uint64
	addComment   string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a media type",
	Long: `Register a media type in the catalogue.

The geometry flags are optional, but SLTF can only order tapes whose media
type has all three of --min-lpos, --max-lpos and --wraps.

Examples:
  # LTO-8 with its geometry
  dtape media add LTO8 --cartridge LTO-8 --capacity 12TB \
    --min-lpos 2696 --max-lpos 171097 --wraps 208`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addCartridge, "cartridge", "", "Cartridge model")
	addCmd.Flags().StringVar(&addCapacity, "capacity", "", "Nominal capacity (e.g. 12TB, 18T)")
	addCmd.Flags().Uint64Var(&addMinLPos, "min-lpos", 0, "First longitudinal position of a wrap")
	addCmd.Flags().Uint64Var(&addMaxLPos, "max-lpos", 0, "Last longitudinal position of a wrap")
	addCmd.Flags().Uint64Var(&addWraps, "wraps", 0, "Number of wraps")
	addCmd.Flags().StringVar(&addComment, "comment", "", "Free-form comment")
}

func runAdd(cmd *cobra.Command, args []string) error {
	mt := &catalogue.MediaType{
		Name:      args[0],
		Cartridge: addCartridge,
		Comment:   addComment,
	}
	if addCapacity != "" {
		size, err := bytesize.Parse(addCapacity)
		if err != nil {
			return fmt.Errorf("invalid --capacity: %w", err)
		}
		mt.Capacity = size.Uint64()
	}

	// Unset flags leave the geometry unknown rather than zero.
	flags := cmd.Flags()
	if flags.Changed("min-lpos") {
		mt.MinLPos = catalogue.Uint64(addMinLPos)
	}
	if flags.Changed("max-lpos") {
		mt.MaxLPos = catalogue.Uint64(addMaxLPos)
	}
	if flags.Changed("wraps") {
		mt.NbWraps = catalogue.Uint64(addWraps)
	}

	_, store, err := cmdutil.OpenCatalogue()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateMediaType(cmd.Context(), mt); err != nil {
		return fmt.Errorf("failed to add media type: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(cmd.OutOrStdout(), mt, fmt.Sprintf("Media type '%s' added", mt.Name))
}
