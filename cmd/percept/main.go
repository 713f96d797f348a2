// Package main provides the Percept CLI: train, evaluate, and inspect
// fully-connected classifiers and their checkpoints.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:           "percept",
		Short:         "Train and checkpoint fully-connected classifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTrainCmd(logger),
		newEvalCmd(logger),
		newInspectCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "percept %s\n", version)
		},
	}
}
