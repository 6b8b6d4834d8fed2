package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/internal/cli/output"
	"github.com/marmos91/dittotape/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective DittoTape configuration, defaults and
environment overrides included.

Output is YAML unless --output json is given.

Examples:
  # Show default config as YAML
  dtape config show

  # Show as JSON
  dtape config show -o json

  # Check what an environment override resolves to
  DITTOTAPE_RAO_ALGORITHM=sltf dtape config show`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}
