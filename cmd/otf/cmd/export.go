package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/netexport"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the classified design as an s-expression netlist",
	Long: `Load and classify the design, then write every circuit with its boundary
pins, nets (with their rail and signal classes) and instances as an
s-expression netlist.

Examples:
  otf export --netlist design.json                   # Print to stdout
  otf export --netlist design.json -o design.net     # Write to file`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addFlowFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, ctx, err := openFlow(cmd)
	if err != nil {
		return err
	}
	if err := db.Parse(ctx); err != nil {
		return err
	}
	if err := db.PostProcessing(ctx); err != nil {
		return err
	}

	text := netexport.Export(db.Store(), netexport.Options{Source: db.Params().Netlist})
	if err := netexport.Validate(text); err != nil {
		return err
	}

	if exportOutput == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(exportOutput, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write netlist: %w", err)
	}
	fmt.Printf("Netlist exported to %s (%d circuit(s))\n", exportOutput, db.Store().NumCircuits())
	return nil
}
