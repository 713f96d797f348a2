package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/percept-ml/percept/internal/checkpoint"
	"github.com/percept-ml/percept/internal/mnist"
	"github.com/percept-ml/percept/internal/train"
)

func newEvalCmd(logger zerolog.Logger) *cobra.Command {
	var (
		dataDir   string
		limit     int
		batchSize int
		synthetic bool
	)

	cmd := &cobra.Command{
		Use:   "eval <checkpoint.pct>",
		Short: "Evaluate a checkpointed classifier on the MNIST test set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := checkpoint.Load(args[0])
			if err != nil {
				return err
			}

			var ds *mnist.Dataset
			if synthetic {
				n := limit
				if n == 0 {
					n = 1000
				}
				ds = mnist.Synthetic(n)
			} else {
				ds, err = mnist.Load(dataDir, false, limit)
				if err != nil {
					return fmt.Errorf("failed to load MNIST from %s: %w", dataDir, err)
				}
			}

			accuracy, err := train.Evaluate(model, ds, batchSize)
			if err != nil {
				return err
			}

			logger.Info().
				Stringer("model", model.Config()).
				Int("samples", ds.NumSamples()).
				Float64("accuracy", accuracy).
				Msg("evaluation complete")

			fmt.Fprintf(cmd.OutOrStdout(), "accuracy: %.4f\n", accuracy)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory with MNIST IDX files")
	cmd.Flags().IntVar(&limit, "limit", 0, "max samples to load (0 = all)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 32, "mini-batch size")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "evaluate on a synthetic dataset instead of files")

	return cmd
}
