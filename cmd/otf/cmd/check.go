package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFlow/pkg/netexport"
	"github.com/OpenTraceLab/OpenTraceFlow/pkg/sigpath"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Validate .sigpath files and exported netlists",
	Long: `Parse each file and report whether it is well formed.

Files ending in .sigpath are read with the path grammar and every line must
consist of whole instance hops. Any other file is read as an exported
s-expression netlist.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	parser, err := sigpath.NewParser()
	if err != nil {
		return err
	}

	failed := 0
	for _, filename := range args {
		summary, err := checkFile(parser, filename)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", filename, err)
			failed++
			continue
		}
		fmt.Printf("✓ %s: %s\n", filename, summary)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
	}
	return nil
}

func checkFile(parser *sigpath.Parser, filename string) (string, error) {
	if filepath.Ext(filename) == sigpath.Suffix {
		f, err := parser.ParseFile(filename)
		if err != nil {
			return "", err
		}
		if err := f.Check(); err != nil {
			return "", err
		}
		pins, _ := f.Split()
		return fmt.Sprintf("%d path(s)", len(pins)), nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	nl, err := netexport.Read(f)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("netlist version %s, %d circuit(s), root %s", nl.Version, len(nl.Circuits), nl.Root), nil
}
