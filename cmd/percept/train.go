package main

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/percept-ml/percept/internal/config"
	"github.com/percept-ml/percept/internal/mnist"
	"github.com/percept-ml/percept/internal/nn"
	"github.com/percept-ml/percept/internal/optim"
	"github.com/percept-ml/percept/internal/train"
)

func newTrainCmd(logger zerolog.Logger) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a classifier on MNIST",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadTrain(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runTrain(cfg, logger)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	cmd.Flags().String("data-dir", "data", "directory with MNIST IDX files")
	cmd.Flags().Bool("synthetic", false, "train on a synthetic dataset instead of files")
	cmd.Flags().Int("limit", 0, "max samples to load (0 = all)")
	cmd.Flags().Int("epochs", 5, "passes over the training set")
	cmd.Flags().Int("batch-size", 32, "mini-batch size")
	cmd.Flags().Float64("lr", 0.01, "learning rate")
	cmd.Flags().Float64("momentum", 0.9, "SGD momentum")
	cmd.Flags().IntSlice("hidden", []int{128}, "hidden-layer widths")
	cmd.Flags().Int64("seed", 42, "seed for initialization and shuffling")
	cmd.Flags().String("checkpoint", "", "checkpoint output path")
	cmd.Flags().Int("checkpoint-every", 0, "checkpoint every N epochs (0 = only at end)")
	cmd.Flags().String("resume", "", "checkpoint to resume from")
	cmd.Flags().Float64("validation", 0.0, "fraction of training data held out for validation")

	return cmd
}

func runTrain(cfg config.Train, logger zerolog.Logger) error {
	dataset, err := loadDataset(cfg, true)
	if err != nil {
		return err
	}

	var valSet *mnist.Dataset
	trainSet := dataset
	if cfg.Validation > 0 {
		trainSet, valSet = dataset.Split(float32(cfg.Validation))
	}

	modelCfg := nn.Config{
		Inputs:  mnist.ImageSize,
		Outputs: mnist.NumClasses,
		Hidden:  cfg.Hidden,
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	model, err := nn.NewClassifier(modelCfg, rng)
	if err != nil {
		return err
	}

	logger.Info().
		Stringer("model", modelCfg).
		Int("train_samples", trainSet.NumSamples()).
		Int("epochs", cfg.Epochs).
		Float64("lr", cfg.LR).
		Msg("starting training")

	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{
		LR:       float32(cfg.LR),
		Momentum: float32(cfg.Momentum),
	})

	trainer := train.New(model, opt, train.Config{
		Epochs:          cfg.Epochs,
		BatchSize:       cfg.BatchSize,
		Seed:            cfg.Seed,
		CheckpointPath:  cfg.Checkpoint,
		CheckpointEvery: cfg.CheckpointEvery,
	}, logger)

	if cfg.Resume != "" {
		if err := trainer.ResumeFrom(cfg.Resume); err != nil {
			return err
		}
	}

	result, err := trainer.Fit(trainSet, valSet)
	if err != nil {
		return err
	}

	logger.Info().
		Int("epochs", result.Epochs).
		Float64("loss", result.FinalLoss).
		Float64("accuracy", result.TrainAccuracy).
		Msg("training complete")

	return nil
}

func loadDataset(cfg config.Train, trainSplit bool) (*mnist.Dataset, error) {
	if cfg.Synthetic {
		n := cfg.Limit
		if n == 0 {
			n = 1000
		}
		return mnist.Synthetic(n), nil
	}

	ds, err := mnist.Load(cfg.DataDir, trainSplit, cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load MNIST from %s: %w", cfg.DataDir, err)
	}
	return ds, nil
}
