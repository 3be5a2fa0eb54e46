package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlow/internal/logging"
)

var (
	// Global flags
	verbose    bool
	logLevel   string
	logFormat  string
	configFile string
	metricsOut string
)

var rootCmd = &cobra.Command{
	Use:   "otf",
	Short: "OpenTraceFlow - netlist classification and current path tracing",
	Long: `OpenTraceFlow (otf) loads a hierarchical analog/mixed-signal design,
classifies its nets into supply rails, digital and analog signals, and traces
the current paths of every circuit whose implementation is not yet fixed.

Examples:
  otf run --netlist design.json --result-dir out   # Full flow, writes .sigpath files
  otf classify --config flow.yaml                  # Net classification summary
  otf trace --netlist design.json inv              # Print the paths of one circuit
  otf root --netlist design.json                   # Show the top circuit
  otf export --netlist design.json -o design.net   # S-expression netlist
  otf check out/inv.sigpath design.net             # Validate artifacts`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML run configuration")
	rootCmd.PersistentFlags().StringVar(&metricsOut, "metrics-out", "", "write run metrics to this file in Prometheus text format")
}

// newLogger builds the logger for one command invocation. Logs go to
// stderr so that command output stays machine readable.
func newLogger() *slog.Logger {
	level := logLevel
	if verbose {
		level = "debug"
	}
	return logging.New(level, logFormat, os.Stderr)
}
