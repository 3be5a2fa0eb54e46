package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topCmd = &cobra.Command{
	Use:   "root",
	Short: "Show the top circuit of the design",
	Long: `Load the design and print the one circuit that no other circuit instantiates,
followed by the circuits it instantiates directly.

A design with several uninstantiated circuits is ambiguous and fails with
the list of candidates.`,
	Args: cobra.NoArgs,
	RunE: runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)
	addFlowFlags(topCmd)
}

func runTop(cmd *cobra.Command, args []string) error {
	db, ctx, err := openFlow(cmd)
	if err != nil {
		return err
	}
	if err := db.Parse(ctx); err != nil {
		return err
	}
	top, err := db.TopCircuit()
	if err != nil {
		return err
	}

	store := db.Store()
	fmt.Printf("Top circuit: %s\n", top.Name())
	fmt.Printf("Circuits: %d\n", store.NumCircuits())
	children := store.Children(top.ID())
	if len(children) == 0 {
		return nil
	}
	fmt.Println("Instantiates:")
	for _, id := range children {
		child := store.Circuit(id)
		fmt.Printf("  %-20s %-10s used %d time(s) in the design\n",
			child.Name(), child.ImplType(), store.Instantiations(id))
	}
	return nil
}
