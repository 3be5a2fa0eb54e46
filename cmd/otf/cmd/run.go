package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/sigpath"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full flow and write .sigpath files",
	Long: `Load the design, resolve the top circuit, classify every net and trace the
current paths of each circuit with an unset implementation type.

One <circuit>.sigpath file is written per traced circuit into the result
directory. Each line is one path: "cell pin " tokens, one entry and one exit
pin per instance hop.

Examples:
  otf run --netlist design.json --spacing spacing.json --result-dir out
  otf run --config flow.yaml --max-paths 1000 --metrics-out flow.prom`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addFlowFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	db, ctx, err := openFlow(cmd)
	if err != nil {
		return err
	}
	if err := db.Run(ctx); err != nil {
		return err
	}

	top, err := db.TopCircuit()
	if err != nil {
		return err
	}
	report := db.Report()
	fmt.Printf("Top circuit: %s\n", top.Name())
	fmt.Printf("Circuits: %d, nets: %d (vdd %d, vss %d, digital %d, analog %d)\n",
		report.Circuits, report.Nets, report.Vdd, report.Vss, report.Digital, report.Analog)

	total := 0
	for _, res := range db.Results() {
		total += res.NumPaths()
		if verbose || res.Truncated {
			line := fmt.Sprintf("  %-20s %6d path(s)  %s", res.Circuit, res.NumPaths(),
				filepath.Join(db.Params().ResultDir, sigpath.FileName(res.Circuit)))
			if res.Truncated {
				line += "  (truncated)"
			}
			fmt.Println(line)
		}
	}
	fmt.Printf("Traced %d circuit(s), %d path(s) written to %s\n",
		len(db.Results()), total, db.Params().ResultDir)

	return writeMetrics(db)
}
