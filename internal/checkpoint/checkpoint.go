package checkpoint

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/percept-ml/percept/internal/nn"
	"github.com/percept-ml/percept/internal/tensor"
)

// optimizerPrefix namespaces optimizer state next to model parameters in
// the same tensor index.
const optimizerPrefix = "optimizer."

func isOptimizerKey(name string) bool {
	return strings.HasPrefix(name, optimizerPrefix)
}

// OptimizerState is an optimizer that can save and restore its state.
//
// This interface is used by checkpoints to serialize optimizer state
// without creating import cycles. Optimizers from the optim package
// implement this interface.
type OptimizerState interface {
	// StateDict returns the optimizer state for serialization.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads optimizer state from serialization.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// Checkpoint is a complete training snapshot: the model, optionally the
// optimizer with its buffers, and where in the run it was taken.
//
// Saving a checkpoint mid-run lets training resume after an interruption
// with momentum and progress counters intact.
type Checkpoint struct {
	Model     *nn.Classifier
	Optimizer OptimizerState // nil for a weights-only checkpoint
	Epoch     int
	Step      int64
	Loss      float64
}

// Save writes the checkpoint to a .pct file.
func (c *Checkpoint) Save(path string) error {
	stateDict := make(map[string]*tensor.RawTensor)

	for name, raw := range c.Model.StateDict() {
		stateDict[name] = raw
	}

	if c.Optimizer != nil {
		for name, raw := range c.Optimizer.StateDict() {
			stateDict[optimizerPrefix+name] = raw
		}
	}

	header := Header{
		Model: c.Model.Config(),
		Train: &TrainMeta{
			Epoch: c.Epoch,
			Step:  c.Step,
			Loss:  c.Loss,
		},
	}

	return writeFile(path, stateDict, header)
}

// Save serializes a model's descriptor and parameters to a .pct file,
// creating or overwriting it.
func Save(model *nn.Classifier, path string) error {
	return writeFile(path, model.StateDict(), Header{Model: model.Config()})
}

func writeFile(path string, stateDict map[string]*tensor.RawTensor, header Header) (err error) {
	writer, err := NewWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := writer.WriteStateDict(stateDict, header); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	return nil
}

// Load reads a .pct file, constructs a fresh classifier with the stored
// descriptor, and copies the stored parameters into it.
//
// The descriptor must be able to account for every stored model tensor:
// a mismatch between descriptor and parameter shapes fails with an error
// wrapping nn.ErrShapeMismatch rather than silently truncating or padding.
func Load(path string) (*nn.Classifier, error) {
	model, _, err := load(path, nil)
	return model, err
}

// Resume restores a mid-run checkpoint into an existing model and
// optimizer. The model's descriptor must equal the stored one.
//
// Returns the checkpoint's training metadata so the caller can continue
// from Epoch+1.
func Resume(path string, model *nn.Classifier, opt OptimizerState) (*Checkpoint, error) {
	reader, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	header := reader.Header()
	if !model.Config().Equal(header.Model) {
		return nil, fmt.Errorf("%w: checkpoint built for %s, model is %s",
			nn.ErrShapeMismatch, header.Model.String(), model.Config().String())
	}

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return nil, fmt.Errorf("failed to read state dict: %w", err)
	}

	modelState, optState := splitStateDict(stateDict)

	if err := model.LoadStateDict(modelState); err != nil {
		return nil, fmt.Errorf("failed to load model state: %w", err)
	}
	if opt != nil {
		if err := opt.LoadStateDict(optState); err != nil {
			return nil, fmt.Errorf("failed to load optimizer state: %w", err)
		}
	}

	ckpt := &Checkpoint{Model: model, Optimizer: opt}
	if header.Train != nil {
		ckpt.Epoch = header.Train.Epoch
		ckpt.Step = header.Train.Step
		ckpt.Loss = header.Train.Loss
	}

	return ckpt, nil
}

func load(path string, rng *rand.Rand) (*nn.Classifier, Header, error) {
	reader, err := NewReader(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer func() { _ = reader.Close() }()

	header := reader.Header()

	if rng == nil {
		// Loaded weights overwrite the initialization, so the source
		// does not matter for a fully specified checkpoint.
		rng = rand.New(rand.NewSource(0))
	}
	model, err := nn.NewClassifier(header.Model, rng)
	if err != nil {
		return nil, Header{}, fmt.Errorf("invalid model descriptor: %w", err)
	}

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to read state dict: %w", err)
	}

	modelState, _ := splitStateDict(stateDict)

	if err := model.LoadStateDict(modelState); err != nil {
		return nil, Header{}, fmt.Errorf("failed to load model state: %w", err)
	}

	// The descriptor and blob must account for each other exactly: every
	// model parameter overwritten by the blob, every blob tensor consumed
	// by the model.
	modelSD := model.StateDict()
	for name := range modelSD {
		if _, ok := modelState[name]; !ok {
			return nil, Header{}, fmt.Errorf("%w: descriptor %s expects tensor %q, not present in checkpoint",
				nn.ErrShapeMismatch, header.Model.String(), name)
		}
	}
	for name := range modelState {
		if _, ok := modelSD[name]; !ok {
			return nil, Header{}, fmt.Errorf("%w: checkpoint tensor %q has no place in descriptor %s",
				nn.ErrShapeMismatch, name, header.Model.String())
		}
	}

	return model, header, nil
}

// splitStateDict separates model tensors from "optimizer."-prefixed ones.
func splitStateDict(stateDict map[string]*tensor.RawTensor) (model, opt map[string]*tensor.RawTensor) {
	model = make(map[string]*tensor.RawTensor)
	opt = make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		if isOptimizerKey(name) {
			opt[name[len(optimizerPrefix):]] = raw
		} else {
			model[name] = raw
		}
	}
	return model, opt
}

// Manifest summarizes a checkpoint file for inspection tooling.
type Manifest struct {
	Model   nn.Config
	Tensors []TensorMeta
	Train   *TrainMeta
}

// Inspect reads a checkpoint's header without loading tensor data into a
// model. The checksum is still verified.
func Inspect(path string) (*Manifest, error) {
	reader, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	header := reader.Header()
	return &Manifest{
		Model:   header.Model,
		Tensors: header.Tensors,
		Train:   header.Train,
	}, nil
}
