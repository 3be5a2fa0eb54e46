package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlow/internal/logging"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/flow"
)

var (
	// Flow flags shared by every command that loads a design
	netlistFile  string
	spacingFile  string
	resultDir    string
	dbu          int
	layers       []string
	vddNames     []string
	vssNames     []string
	digitalNames []string
	maxPaths     int
	maxDepth     int
	workers      int
)

// addFlowFlags registers the design and run flags on c. Flags left unset
// keep the value from --config or the built-in defaults.
func addFlowFlags(c *cobra.Command) {
	c.Flags().StringVarP(&netlistFile, "netlist", "n", "", "design document (JSON)")
	c.Flags().StringVar(&spacingFile, "spacing", "", "placer spacing rule document (JSON)")
	c.Flags().StringVarP(&resultDir, "result-dir", "r", ".", "directory receiving .sigpath files")
	c.Flags().IntVar(&dbu, "dbu", 1000, "database units per micron")
	c.Flags().StringSliceVar(&layers, "layers", nil, "technology layer names, in id order")
	c.Flags().StringSliceVar(&vddNames, "vdd", nil, "net names forced to the VDD rail")
	c.Flags().StringSliceVar(&vssNames, "vss", nil, "net names forced to the VSS rail")
	c.Flags().StringSliceVar(&digitalNames, "digital", nil, "digital net names (default clk)")
	c.Flags().IntVar(&maxPaths, "max-paths", 0, "maximum paths per circuit (0 = unlimited)")
	c.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum instance hops per path (0 = unlimited)")
	c.Flags().IntVarP(&workers, "workers", "j", 0, "circuits processed concurrently (0 = number of CPUs)")
}

// loadParams reads --config, if any, and applies the flags the user set.
func loadParams(c *cobra.Command) (*flow.Params, error) {
	p := flow.DefaultParams()
	if configFile != "" {
		var err error
		if p, err = flow.LoadParams(configFile); err != nil {
			return nil, err
		}
	}

	flags := c.Flags()
	if flags.Changed("netlist") {
		p.Netlist = netlistFile
	}
	if flags.Changed("spacing") {
		p.PlacerSpacing = spacingFile
	}
	if flags.Changed("result-dir") {
		p.ResultDir = resultDir
	}
	if flags.Changed("dbu") {
		p.DBU = dbu
	}
	if flags.Changed("layers") {
		p.Layers = layers
	}
	if flags.Changed("vdd") {
		p.Names.Vdd = vddNames
	}
	if flags.Changed("vss") {
		p.Names.Vss = vssNames
	}
	if flags.Changed("digital") {
		p.Names.Digital = digitalNames
	}
	if flags.Changed("max-paths") {
		p.Trace.MaxPaths = maxPaths
	}
	if flags.Changed("max-depth") {
		p.Trace.MaxDepth = maxDepth
	}
	if flags.Changed("workers") && workers > 0 {
		p.Workers = workers
		p.Trace.Workers = workers
	}
	return p, nil
}

// openFlow builds the run for c and returns it with a context carrying the
// command logger.
func openFlow(c *cobra.Command) (*flow.DB, context.Context, error) {
	p, err := loadParams(c)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger()
	db, err := flow.New(p, flow.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	ctx := logging.WithLogger(c.Context(), logger)
	return db, ctx, nil
}

// writeMetrics honours --metrics-out.
func writeMetrics(db *flow.DB) error {
	if metricsOut == "" {
		return nil
	}
	if err := db.Metrics().WriteTextfile(metricsOut); err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Metrics written to %s\n", metricsOut)
	}
	return nil
}

// resetFlowFlags restores the flag variables to their defaults.
func resetFlowFlags() {
	netlistFile, spacingFile, resultDir = "", "", "."
	dbu = 1000
	layers, vddNames, vssNames, digitalNames = nil, nil, nil, nil
	maxPaths, maxDepth, workers = 0, 0, 0
}
