package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/internal/cli/output"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/config"
	"github.com/marmos91/dittotape/pkg/rao"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the DittoTape configuration file.

Checks for syntax errors, missing required fields and invalid values, and
warns about settings that are valid but probably not intended.

Examples:
  # Validate default config
  dtape config validate

  # Validate specific config file
  dtape config validate --config /etc/dittotape/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}

	displayPath := cmdutil.Flags.ConfigFile
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := configWarnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintln(out, "\nConfiguration summary:")
	return output.PrintKeyValues(out, output.KeyValues{
		{"  RAO", fmt.Sprintf("enabled=%t algorithm=%s enterprise=%t", cfg.RAO.IsEnabled(), cfg.RAO.Algorithm, cfg.RAO.IsEnterpriseEnabled())},
		{"  Catalogue", string(cfg.Catalogue.Type)},
		{"  API port", fmt.Sprintf("%d", cfg.API.Port)},
		{"  Log level", cfg.Logging.Level},
	})
}

// configWarnings lists settings that load fine but behave unexpectedly.
func configWarnings(cfg *config.Config) []string {
	var warnings []string

	algorithm, err := rao.ParseAlgorithmName(cfg.RAO.Algorithm)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("unknown rao.algorithm %q: mounts will fall back to linear", cfg.RAO.Algorithm))
	}
	if cfg.Catalogue.Type == catalogue.TypeMemory && algorithm == rao.AlgorithmSLTF {
		warnings = append(warnings, "sltf needs media geometry but the memory catalogue starts empty")
	}
	if !cfg.RAO.IsEnabled() {
		warnings = append(warnings, "RAO is disabled: batches are recalled in submission order")
	}
	return warnings
}
