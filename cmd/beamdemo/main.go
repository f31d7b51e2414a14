// Command beamdemo wires a BasicReactor, a QueueReactor and an
// in-memory AsyncDataStore together and prints the commits as they
// happen. It is a runnable demonstration of how the pieces in this
// module fit together, not a product surface.
package main

import (
	"fmt"
	"os"

	"github.com/ygrebnov/beam/cmd/beamdemo/internal/demo"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var values []int
	var metricsOn bool

	cmd := &cobra.Command{
		Use:   "beamdemo",
		Short: "Demonstrates a wired reactor graph and async data store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return demo.Run(cmd.Context(), cmd.OutOrStdout(), values, metricsOn)
		},
	}

	cmd.Flags().IntSliceVar(&values, "values", []int{1, 2, 3}, "values pushed through the reactor graph")
	cmd.Flags().BoolVar(&metricsOn, "metrics", false, "print instrument snapshots on exit")

	return cmd
}
