package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/design"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [circuit...]",
	Short: "Classify nets into rails, digital and analog signals",
	Long: `Load the design and run net classification without tracing.

Structural body ties come first (psub nets become VSS, nwell nets VDD), then
the --vdd and --vss name lists override them. Nets named in --digital are
digital, every other net is analog.

Without arguments a summary is printed; with circuit names the flags of
every net of those circuits are listed.`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	addFlowFlags(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
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

	report := db.Report()
	fmt.Println("Net Classification")
	fmt.Println("==================")
	fmt.Printf("Circuits: %d\n", report.Circuits)
	fmt.Printf("Nets:     %d\n", report.Nets)
	fmt.Printf("  VDD:     %d\n", report.Vdd)
	fmt.Printf("  VSS:     %d\n", report.Vss)
	fmt.Printf("  Digital: %d\n", report.Digital)
	fmt.Printf("  Analog:  %d\n", report.Analog)

	for _, name := range args {
		ckt, ok := db.Store().CircuitByName(name)
		if !ok {
			return fmt.Errorf("circuit %q not found", name)
		}
		fmt.Printf("\n%s (%s):\n", ckt.Name(), ckt.ImplType())
		for _, n := range ckt.Nets() {
			fmt.Printf("  %-16s %s\n", n.Name(), netFlags(n))
		}
	}

	return writeMetrics(db)
}

func netFlags(n *design.Net) string {
	var flags []string
	switch {
	case n.IsVdd():
		flags = append(flags, "vdd")
	case n.IsVss():
		flags = append(flags, "vss")
	}
	if n.IsDigital() {
		flags = append(flags, "digital")
	} else {
		flags = append(flags, "analog")
	}
	return strings.Join(flags, " ")
}
