package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittotape/cmd/dtape/cmdutil"
	"github.com/marmos91/dittotape/internal/cli/output"
	"github.com/marmos91/dittotape/pkg/apiclient"
	"github.com/marmos91/dittotape/pkg/batch"
	"github.com/marmos91/dittotape/pkg/config"
	"github.com/marmos91/dittotape/pkg/metrics"
	"github.com/marmos91/dittotape/pkg/rao/manager"
)

var (
	orderAlgorithm string
	orderFormat    string
	orderServer    string
)

var orderCmd = &cobra.Command{
	Use:   "order <batch>",
	Short: "Compute the recall order of a batch",
	Long: `Compute the recommended access order of a recall batch.

The batch file names the tape, the drive calibration table, the drive's
native ordering limits and the jobs to order. Use "-" to read it from stdin.
The drive is simulated from the batch; media geometry comes from the
catalogue.

Examples:
  # Order with the configured algorithm
  dtape order batch.yaml

  # Force SLTF and print JSON
  dtape order batch.yaml --algorithm sltf -o json

  # Read a JSON batch from stdin
  cat batch.json | dtape order - --format json

  # Ask a running "dtape serve" instead of planning locally
  dtape order batch.yaml --server http://tape-gw:8080`,
	Args: cobra.ExactArgs(1),
	RunE: runOrder,
}

func init() {
	orderCmd.Flags().StringVar(&orderAlgorithm, "algorithm", "", "Override the algorithm (linear|random|sltf)")
	orderCmd.Flags().StringVar(&orderFormat, "format", "", "Batch format (yaml|json, default: from the file extension)")
	orderCmd.Flags().StringVar(&orderServer, "server", "", "Plan on this API server instead of locally")
}

// PlanView renders a plan as a table, one row per recall position.
type PlanView struct {
	*batch.Plan
}

// Headers implements TableRenderer.
func (v PlanView) Headers() []string {
	return []string{"POSITION", "JOB", "FSEQ"}
}

// Rows implements TableRenderer.
func (v PlanView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Order))
	for i, idx := range v.Order {
		rows = append(rows, []string{strconv.Itoa(i), strconv.Itoa(idx), strconv.FormatUint(v.FSeqs[i], 10)})
	}
	return rows
}

// Summary returns the plan header shown above the table.
func (v PlanView) Summary() output.KeyValues {
	return output.KeyValues{
		{"Tape", v.VID},
		{"Mount", v.MountID},
		{"Algorithm", v.Algorithm},
		{"Files", strconv.Itoa(len(v.Order))},
		{"Max files per query", maxFiles(v.MaxFiles)},
		{"Duration", fmt.Sprintf("%.3fms", v.TotalMs)},
	}
}

func runOrder(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	doc, err := readBatch(cmd.InOrStdin(), args[0], batch.Format(orderFormat))
	if err != nil {
		return err
	}
	if orderAlgorithm != "" {
		doc.Algorithm = orderAlgorithm
	}

	var plan *batch.Plan
	if orderServer != "" {
		plan, err = apiclient.New(orderServer).Order(cmd.Context(), doc)
	} else {
		plan, err = planLocally(cmd, cfg, doc)
	}
	if err != nil {
		return fmt.Errorf("failed to order batch: %w", err)
	}

	printer, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if printer.Format() != output.FormatTable {
		return printer.Print(plan)
	}

	view := PlanView{Plan: plan}
	if err := output.PrintKeyValues(cmd.OutOrStdout(), view.Summary()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	return printer.Print(view)
}

func planLocally(cmd *cobra.Command, cfg *config.Config, doc *batch.Document) (*batch.Plan, error) {
	params, err := cfg.RAO.ToManagerParams("", "")
	if err != nil {
		return nil, err
	}

	store, err := config.CreateCatalogue(cfg.Catalogue)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	return doc.Plan(cmd.Context(), params, store, manager.WithMetrics(metrics.NewRAOMetrics()))
}

// readBatch loads the batch at path, or from r when path is "-".
func readBatch(r io.Reader, path string, format batch.Format) (*batch.Document, error) {
	if path == "-" {
		return batch.Decode(r, format)
	}
	if format == "" {
		return batch.Load(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch: %w", err)
	}
	defer func() { _ = f.Close() }()
	return batch.Decode(f, format)
}

func maxFiles(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
