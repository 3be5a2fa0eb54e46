package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const testdata = "../testdata"

// execute runs otf with args and returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Reset flags to prevent accumulation between tests
	resetFlags(rootCmd)
	verbose, logLevel, logFormat, configFile, metricsOut = false, "error", "text", "", ""
	resetFlowFlags()
	exportOutput = ""

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) { f.Changed = false }
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRunE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "config file",
			args: []string{"run", "--config", filepath.Join(testdata, "flow.yaml")},
			wantContain: []string{
				"Top circuit: top",
				"Circuits: 4, nets: 17 (vdd 2, vss 2, digital 1, analog 16)",
				"Traced 2 circuit(s), 7 path(s)",
			},
		},
		{
			name: "flags only",
			args: []string{"run", "--netlist", filepath.Join(testdata, "design.json"),
				"--vdd", "vdd", "--vss", "gnd"},
			wantContain: []string{
				"Top circuit: top",
				"Traced 2 circuit(s), 7 path(s)",
			},
		},
		{
			name: "path budget",
			args: []string{"run", "--config", filepath.Join(testdata, "flow.yaml"), "--max-paths", "1"},
			wantContain: []string{
				"Traced 2 circuit(s), 2 path(s)",
				"(truncated)",
			},
		},
		{
			name:    "missing netlist",
			args:    []string{"run"},
			wantErr: true,
		},
		{
			name:    "ambiguous root",
			args:    []string{"run", "--netlist", filepath.Join(testdata, "ambiguous.json")},
			wantErr: true,
		},
		{
			name:    "invalid dbu",
			args:    []string{"run", "--config", filepath.Join(testdata, "flow.yaml"), "--dbu", "0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			output, err := execute(t, append(tt.args, "--result-dir", dir)...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(dir, "flow.prom")
	output, err := execute(t, "run", "--config", filepath.Join(testdata, "flow.yaml"),
		"--result-dir", dir, "--metrics-out", metrics)
	if err != nil {
		t.Fatalf("run failed: %v\nOutput: %s", err, output)
	}

	data, err := os.ReadFile(filepath.Join(dir, "inv.sigpath"))
	if err != nil {
		t.Fatalf("inv.sigpath not written: %v", err)
	}
	if want := "MP S MP D MN D MN S \n"; string(data) != want {
		t.Errorf("inv.sigpath = %q, want %q", data, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "nch.sigpath")); !os.IsNotExist(err) {
		t.Errorf("transistor circuits must not be traced")
	}

	data, err = os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	if !strings.Contains(string(data), "opentraceflow_current_paths_total 7") {
		t.Errorf("metrics missing path count:\n%s", data)
	}

	// The artifacts pass check.
	output, err = execute(t, "check", filepath.Join(dir, "inv.sigpath"), filepath.Join(dir, "top.sigpath"))
	if err != nil {
		t.Fatalf("check failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "6 path(s)") {
		t.Errorf("check output = %s", output)
	}
}

func TestCommandsE2E(t *testing.T) {
	design := filepath.Join(testdata, "design.json")
	config := filepath.Join(testdata, "flow.yaml")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "classify summary",
			args: []string{"classify", "--config", config},
			wantContain: []string{
				"Circuits: 4",
				"Nets:     17",
				"VDD:     2",
				"Digital: 1",
			},
		},
		{
			name: "classify circuit",
			args: []string{"classify", "--netlist", design, "inv"},
			wantContain: []string{
				"inv (UNSET):",
				"vss analog",
				"vdd analog",
			},
		},
		{
			name:    "classify unknown circuit",
			args:    []string{"classify", "--netlist", design, "nand"},
			wantErr: true,
		},
		{
			name: "trace circuit",
			args: []string{"trace", "--config", config, "inv"},
			wantContain: []string{
				"# inv: 1 path(s)",
				"MP S MP D MN D MN S \n",
			},
		},
		{
			name: "trace unresolved circuits",
			args: []string{"trace", "--config", config},
			wantContain: []string{
				"# top: 6 path(s)",
				"xinv VDD xinv A \n",
				"# inv: 1 path(s)",
			},
		},
		{
			name: "trace transistor",
			args: []string{"trace", "--config", config, "nch"},
			wantContain: []string{
				"# nch: skipped, implementation PCELL_NCH is fixed",
			},
		},
		{
			name: "root",
			args: []string{"root", "--netlist", design},
			wantContain: []string{
				"Top circuit: top",
				"Circuits: 4",
				"Instantiates:",
				"inv",
			},
		},
		{
			name:    "root ambiguous",
			args:    []string{"root", "--netlist", filepath.Join(testdata, "ambiguous.json")},
			wantErr: true,
		},
		{
			name:        "check sigpath",
			args:        []string{"check", filepath.Join(testdata, "inv.sigpath")},
			wantContain: []string{"inv.sigpath: 1 path(s)"},
		},
		{
			name:    "check broken sigpath",
			args:    []string{"check", filepath.Join(testdata, "inv.sigpath"), filepath.Join(testdata, "broken.sigpath")},
			wantErr: true,
		},
		{
			name:        "check netlist",
			args:        []string{"check", filepath.Join(testdata, "inv.net")},
			wantContain: []string{"netlist version 1, 1 circuit(s), root inv"},
		},
		{
			name:    "check truncated netlist",
			args:    []string{"check", filepath.Join(testdata, "truncated.net")},
			wantErr: true,
		},
		{
			name:    "check without files",
			args:    []string{"check"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}
