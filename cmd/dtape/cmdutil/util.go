// Package cmdutil provides shared utilities for dtape commands.
package cmdutil

import (
	"fmt"
	"io"
	"strconv"

	"github.com/marmos91/dittotape/internal/cli/output"
	"github.com/marmos91/dittotape/internal/cli/prompt"
	"github.com/marmos91/dittotape/internal/logger"
	"github.com/marmos91/dittotape/pkg/catalogue"
	"github.com/marmos91/dittotape/pkg/config"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	NoColor    bool
}

// LoadConfig loads the configuration named by --config, falling back to
// defaults when no file exists, and initializes the logger.
//
// Logs meant for stdout go to stderr so command output stays parseable.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(Flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg, true); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config, keepStdoutClean bool) error {
	out := cfg.Logging.Output
	if keepStdoutClean && out == "stdout" {
		out = "stderr"
	}
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// OpenCatalogue loads the configuration and opens its catalogue. The caller
// closes the store.
func OpenCatalogue() (*config.Config, catalogue.Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := config.CreateCatalogue(cfg.Catalogue)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// GetOutputFormatParsed returns the parsed --output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// Printer returns a printer for the --output format writing to w.
func Printer(w io.Writer) (*output.Printer, error) {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format, !Flags.NoColor), nil
}

// PrintOutput prints data in the --output format. In table format it prints
// emptyMsg when isEmpty is set.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	printer, err := Printer(w)
	if err != nil {
		return err
	}
	if printer.Format() != output.FormatTable {
		return printer.Print(data)
	}
	if isEmpty {
		_, _ = fmt.Fprintln(w, emptyMsg)
		return nil
	}
	return printer.Print(tableRenderer)
}

// PrintResourceWithSuccess prints the resource for JSON and YAML, and a
// success message for tables.
func PrintResourceWithSuccess(w io.Writer, data any, successMsg string) error {
	printer, err := Printer(w)
	if err != nil {
		return err
	}
	if printer.Format() != output.FormatTable {
		return printer.Print(data)
	}
	printer.Success(successMsg)
	return nil
}

// RunDeleteWithConfirmation prompts for confirmation (unless force is true)
// and runs deleteFn.
func RunDeleteWithConfirmation(w io.Writer, resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'", resourceType, name), force)
	if err != nil {
		if prompt.IsAborted(err) {
			_, _ = fmt.Fprintln(w, "\nAborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		_, _ = fmt.Fprintln(w, "Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	printer, err := Printer(w)
	if err != nil {
		return err
	}
	printer.Success(fmt.Sprintf("%s '%s' deleted successfully", resourceType, name))
	return nil
}

// EmptyOr returns value, or fallback when value is empty.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// OptionalUint formats an optional number, "-" when unset.
func OptionalUint(v *uint64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(*v, 10)
}
