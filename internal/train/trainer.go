// Package train runs the training loop for Percept classifiers: epochs
// over shuffled mini-batches with per-epoch loss, accuracy, and optional
// periodic checkpointing.
package train

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/percept-ml/percept/internal/checkpoint"
	"github.com/percept-ml/percept/internal/mnist"
	"github.com/percept-ml/percept/internal/nn"
	"github.com/percept-ml/percept/internal/optim"
)

// Config controls a training run.
type Config struct {
	Epochs          int    // Number of passes over the training set
	BatchSize       int    // Mini-batch size
	Seed            int64  // Seed for batch shuffling
	CheckpointPath  string // Where to write checkpoints ("" disables)
	CheckpointEvery int    // Checkpoint every N epochs (0 = only at end)
}

// Result summarizes a completed training run.
type Result struct {
	Epochs        int
	Steps         int64
	FinalLoss     float64
	TrainAccuracy float64
	ValAccuracy   float64 // Zero if no validation set was provided
}

// Trainer drives optimization of a classifier.
type Trainer struct {
	model *nn.Classifier
	opt   *optim.SGD
	loss  *nn.CrossEntropyLoss
	cfg   Config
	log   zerolog.Logger

	startEpoch int
	step       int64
}

// New creates a Trainer.
func New(model *nn.Classifier, opt *optim.SGD, cfg Config, logger zerolog.Logger) *Trainer {
	return &Trainer{
		model: model,
		opt:   opt,
		loss:  nn.NewCrossEntropyLoss(),
		cfg:   cfg,
		log:   logger,
	}
}

// ResumeFrom continues a previous run: restores model and optimizer state
// from a checkpoint and picks up at the epoch after the stored one.
func (t *Trainer) ResumeFrom(path string) error {
	ckpt, err := checkpoint.Resume(path, t.model, t.opt)
	if err != nil {
		return fmt.Errorf("resume from %s: %w", path, err)
	}

	t.startEpoch = ckpt.Epoch + 1
	t.step = ckpt.Step
	t.log.Info().
		Str("checkpoint", path).
		Int("epoch", ckpt.Epoch).
		Int64("step", ckpt.Step).
		Msg("resumed from checkpoint")
	return nil
}

// Fit trains the model on trainSet, evaluating on valSet after each epoch
// when valSet is non-nil.
func (t *Trainer) Fit(trainSet, valSet *mnist.Dataset) (*Result, error) {
	if trainSet.NumSamples() == 0 {
		return nil, fmt.Errorf("training set is empty")
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed))
	result := &Result{}

	for epoch := t.startEpoch; epoch < t.cfg.Epochs; epoch++ {
		batches, err := trainSet.Batches(t.cfg.BatchSize, rng)
		if err != nil {
			return nil, fmt.Errorf("batching failed: %w", err)
		}

		var epochLoss float64
		var correct, seen int

		for _, batch := range batches {
			t.opt.ZeroGrad()

			logits := t.model.Forward(batch.Images)
			loss := t.loss.Forward(logits, batch.Labels)
			t.model.Backward(t.loss.Backward())
			t.opt.Step()

			epochLoss += float64(loss) * float64(batch.Size)
			correct += int(nn.Accuracy(logits, batch.Labels)*float64(batch.Size) + 0.5)
			seen += batch.Size
			t.step++
		}

		result.Epochs = epoch + 1
		result.Steps = t.step
		result.FinalLoss = epochLoss / float64(seen)
		result.TrainAccuracy = float64(correct) / float64(seen)

		event := t.log.Info().
			Int("epoch", epoch).
			Int64("step", t.step).
			Float64("loss", result.FinalLoss).
			Float64("accuracy", result.TrainAccuracy)

		if valSet != nil && valSet.NumSamples() > 0 {
			valAcc, err := Evaluate(t.model, valSet, t.cfg.BatchSize)
			if err != nil {
				return nil, err
			}
			result.ValAccuracy = valAcc
			event = event.Float64("val_accuracy", valAcc)
		}
		event.Msg("epoch complete")

		if t.shouldCheckpoint(epoch) {
			if err := t.saveCheckpoint(epoch, result.FinalLoss); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// shouldCheckpoint reports whether a checkpoint is due after epoch.
func (t *Trainer) shouldCheckpoint(epoch int) bool {
	if t.cfg.CheckpointPath == "" {
		return false
	}
	if epoch == t.cfg.Epochs-1 {
		return true
	}
	return t.cfg.CheckpointEvery > 0 && (epoch+1)%t.cfg.CheckpointEvery == 0
}

func (t *Trainer) saveCheckpoint(epoch int, loss float64) error {
	ckpt := &checkpoint.Checkpoint{
		Model:     t.model,
		Optimizer: t.opt,
		Epoch:     epoch,
		Step:      t.step,
		Loss:      loss,
	}
	if err := ckpt.Save(t.cfg.CheckpointPath); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}

	t.log.Info().
		Str("path", t.cfg.CheckpointPath).
		Int("epoch", epoch).
		Msg("checkpoint saved")
	return nil
}

// Evaluate computes the model's accuracy over a dataset.
func Evaluate(model *nn.Classifier, ds *mnist.Dataset, batchSize int) (float64, error) {
	if ds.NumSamples() == 0 {
		return 0, fmt.Errorf("dataset is empty")
	}

	batches, err := ds.Batches(batchSize, nil)
	if err != nil {
		return 0, fmt.Errorf("batching failed: %w", err)
	}

	correct := 0
	for _, batch := range batches {
		logits := model.Forward(batch.Images)
		correct += int(nn.Accuracy(logits, batch.Labels)*float64(batch.Size) + 0.5)
	}

	return float64(correct) / float64(ds.NumSamples()), nil
}
