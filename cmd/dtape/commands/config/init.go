package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/internal/cli/prompt"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/config"
	"github.com/marmos91/dittotape/pkg/rao"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a DittoTape configuration file with default values.

By default the file is created at $XDG_CONFIG_HOME/dittotape/config.yaml.
Use --config to choose another path.

Examples:
  # Create the default configuration
  dtape config init

  # Answer a few questions first
  dtape config init --interactive

  # Overwrite an existing file
  dtape config init --config /etc/dittotape/config.yaml --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cmdutil.Flags.ConfigFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.NewSampleConfig()
	if initInteractive {
		if err := askSettings(cfg); err != nil {
			if prompt.IsAborted(err) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nAborted.")
				return nil
			}
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.WriteConfig(cfg, path, initForce); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Register media types and tapes: dtape media add, dtape tape add")
	_, _ = fmt.Fprintln(out, "  2. Order a batch: dtape order batch.yaml")
	_, _ = fmt.Fprintln(out, "  3. Or start the API server: dtape serve")
	return nil
}

// askSettings prompts for the settings most installations change.
func askSettings(cfg *config.Config) error {
	algorithm, err := prompt.Select("RAO algorithm", []prompt.Option{
		{Label: "linear", Value: string(rao.AlgorithmLinear), Description: "Ascending block order"},
		{Label: "random", Value: string(rao.AlgorithmRandom), Description: "Random order, for benchmarks"},
		{Label: "sltf", Value: string(rao.AlgorithmSLTF), Description: "Shortest locate time first, needs media geometry"},
	}, cfg.RAO.Algorithm)
	if err != nil {
		return err
	}
	cfg.RAO.Algorithm = algorithm

	enterprise, err := prompt.Confirm("Let capable drives order files natively")
	if err != nil {
		return err
	}
	cfg.RAO.EnterpriseEnabled = &enterprise

	backend, err := prompt.Select("Catalogue backend", []prompt.Option{
		{Label: "sqlite", Value: string(catalogue.TypeSQLite)},
		{Label: "badger", Value: string(catalogue.TypeBadger)},
		{Label: "postgres", Value: string(catalogue.TypePostgres)},
		{Label: "memory", Value: string(catalogue.TypeMemory), Description: "Lost on exit"},
	}, string(cfg.Catalogue.Type))
	if err != nil {
		return err
	}
	cfg.Catalogue = config.CatalogueConfig{Type: catalogue.Type(backend)}

	if cfg.Catalogue.Type == catalogue.TypePostgres {
		if err := askPostgres(cfg); err != nil {
			return err
		}
	}

	port, err := prompt.InputUint("API port", uint64(cfg.API.Port), 65535)
	if err != nil {
		return err
	}
	cfg.API.Port = int(port)

	metricsEnabled, err := prompt.Confirm("Expose Prometheus metrics")
	if err != nil {
		return err
	}
	cfg.Metrics.Enabled = metricsEnabled

	config.ApplyDefaults(cfg)
	return nil
}

func askPostgres(cfg *config.Config) error {
	pg := &cfg.Catalogue.Postgres

	var err error
	if pg.Host, err = prompt.Input("PostgreSQL host", "localhost", nil); err != nil {
		return err
	}
	port, err := prompt.InputUint("PostgreSQL port", 5432, 65535)
	if err != nil {
		return err
	}
	pg.Port = int(port)
	if pg.Database, err = prompt.Input("Database", "dittotape", nil); err != nil {
		return err
	}
	if pg.User, err = prompt.Input("User", "dittotape", nil); err != nil {
		return err
	}
	return nil
}
