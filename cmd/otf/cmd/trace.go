package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/csflow"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/design"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/sigpath"
)

var traceCmd = &cobra.Command{
	Use:   "trace [circuit...]",
	Short: "Print the current paths of circuits",
	Long: `Classify the design, then trace the named circuits (or every circuit with an
unset implementation type) and print their paths in .sigpath format to stdout.
Named circuits whose implementation is already fixed are skipped. Nothing is
written to the result directory.

Examples:
  otf trace --netlist design.json inv
  otf trace --netlist design.json --max-paths 10 --max-depth 6`,
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
	addFlowFlags(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
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

	store := db.Store()
	var circuits []*design.Circuit
	if len(args) == 0 {
		for ckt := range store.SubCircuits() {
			if csflow.Eligible(ckt) {
				circuits = append(circuits, ckt)
			}
		}
	}
	for _, name := range args {
		ckt, ok := store.CircuitByName(name)
		if !ok {
			return fmt.Errorf("circuit %q not found", name)
		}
		circuits = append(circuits, ckt)
	}

	tracer := csflow.New(db.Params().Trace)
	for _, ckt := range circuits {
		if !csflow.Eligible(ckt) {
			fmt.Printf("# %s: skipped, implementation %s is fixed\n", ckt.Name(), ckt.ImplType())
			continue
		}
		res := tracer.Trace(store, ckt)
		header := fmt.Sprintf("# %s: %d path(s)", res.Circuit, res.NumPaths())
		if res.Truncated {
			header += " (truncated)"
		}
		fmt.Println(header)
		if err := sigpath.Write(os.Stdout, res); err != nil {
			return err
		}
	}
	return nil
}
