// Package commands implements the dtape command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/cmd/dtape/commands/config"
	"github.com/marmos91/dittotape/cmd/dtape/commands/media"
	"github.com/marmos91/dittotape/cmd/dtape/commands/tape"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dtape",
	Short: "DittoTape - Recommended access order for tape recalls",
	Long: `DittoTape orders the files of a tape recall batch so the drive reads
them with as little repositioning as possible.

It uses the drive's own ordering when the drive supports it, and otherwise
one of the software algorithms: linear, random or sltf (shortest locate
time first, driven by the tape's wrap geometry).

Use "dtape [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.ConfigFile, "config", "", "config file (default: $XDG_CONFIG_HOME/dittotape/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(media.Cmd)
	rootCmd.AddCommand(tape.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
