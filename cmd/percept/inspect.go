package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/percept-ml/percept/internal/checkpoint"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <checkpoint.pct>",
		Short: "Print the contents of a checkpoint file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := checkpoint.Inspect(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model:   %s\n", manifest.Model.String())
			if manifest.Train != nil {
				fmt.Fprintf(out, "trained: epoch=%d step=%d loss=%.6f\n",
					manifest.Train.Epoch, manifest.Train.Step, manifest.Train.Loss)
			}

			fmt.Fprintf(out, "tensors: %d\n", len(manifest.Tensors))
			for _, t := range manifest.Tensors {
				fmt.Fprintf(out, "  %-24s %-8s %v (%d bytes)\n", t.Name, t.DType, t.Shape, t.Size)
			}
			return nil
		},
	}
}
