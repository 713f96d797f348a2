package nn

import (
	"fmt"
	"math/rand"

	"github.com/percept-ml/percept/internal/tensor"
)

// Config describes a fully-connected classifier's architecture: input
// dimensionality, output dimensionality, and the ordered widths of its
// hidden layers. It is the minimal record needed to reconstruct a model
// without yet knowing its learned values.
//
// A Config is carried alongside the model from construction onward; the
// architecture is never inferred back from live layers.
type Config struct {
	Inputs  int   `json:"inputs"`  // Input dimensionality (e.g., 784 for 28x28 images)
	Outputs int   `json:"outputs"` // Number of classes
	Hidden  []int `json:"hidden"`  // Ordered hidden-layer widths
}

// Validate checks that all dimensions are positive.
func (c Config) Validate() error {
	if c.Inputs <= 0 {
		return fmt.Errorf("invalid config: inputs must be > 0, got %d", c.Inputs)
	}
	if c.Outputs <= 0 {
		return fmt.Errorf("invalid config: outputs must be > 0, got %d", c.Outputs)
	}
	for i, h := range c.Hidden {
		if h <= 0 {
			return fmt.Errorf("invalid config: hidden layer %d must be > 0, got %d", i, h)
		}
	}
	return nil
}

// Equal reports whether two configs describe the same architecture.
func (c Config) Equal(other Config) bool {
	if c.Inputs != other.Inputs || c.Outputs != other.Outputs {
		return false
	}
	if len(c.Hidden) != len(other.Hidden) {
		return false
	}
	for i := range c.Hidden {
		if c.Hidden[i] != other.Hidden[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy with its own Hidden slice.
func (c Config) Clone() Config {
	return Config{
		Inputs:  c.Inputs,
		Outputs: c.Outputs,
		Hidden:  append([]int(nil), c.Hidden...),
	}
}

// String renders the architecture as "784-400-200-100-10".
func (c Config) String() string {
	s := fmt.Sprintf("%d", c.Inputs)
	for _, h := range c.Hidden {
		s += fmt.Sprintf("-%d", h)
	}
	return s + fmt.Sprintf("-%d", c.Outputs)
}

// Classifier is a fully-connected classification network built from a
// Config: Linear and ReLU layers for each hidden width, then a final
// Linear projecting to class logits.
//
// The Config is fixed at construction; the classifier exposes it so that
// checkpoints can persist the architecture next to the learned values.
type Classifier struct {
	config Config
	layers *Sequential
}

// NewClassifier constructs a classifier from a Config.
//
// Weights are Xavier-initialized from rng; biases start at zero. Returns
// an error if the config is invalid.
func NewClassifier(cfg Config, rng *rand.Rand) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	layers := NewSequential()
	in := cfg.Inputs
	for _, h := range cfg.Hidden {
		layers.Add(NewLinear(in, h, rng))
		layers.Add(NewReLU())
		in = h
	}
	layers.Add(NewLinear(in, cfg.Outputs, rng))

	return &Classifier{
		config: cfg.Clone(),
		layers: layers,
	}, nil
}

// Config returns the model descriptor. The returned value is a copy;
// mutating it does not affect the classifier.
func (c *Classifier) Config() Config {
	return c.config.Clone()
}

// Forward computes class logits for a batch of inputs.
//
// Input shape: [batch, inputs]. A 1D input of length inputs is treated
// as a batch of one.
func (c *Classifier) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) == 1 {
		if shape[0] != c.config.Inputs {
			panic(fmt.Sprintf("Classifier.Forward: expected input of length %d, got %d", c.config.Inputs, shape[0]))
		}
		input = input.Reshape(1, c.config.Inputs)
	}
	return c.layers.Forward(input)
}

// Backward propagates the logit gradient through the network.
func (c *Classifier) Backward(grad *tensor.Tensor) *tensor.Tensor {
	return c.layers.Backward(grad)
}

// Parameters returns all trainable parameters.
func (c *Classifier) Parameters() []*Parameter {
	return c.layers.Parameters()
}

// StateDict returns the network's parameters keyed by indexed layer names
// ("0.weight", "0.bias", "2.weight", ...).
func (c *Classifier) StateDict() map[string]*tensor.RawTensor {
	return c.layers.StateDict()
}

// LoadStateDict loads parameters produced by StateDict on a classifier
// with the same Config. Shape mismatches fail with ErrShapeMismatch.
func (c *Classifier) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return c.layers.LoadStateDict(stateDict)
}
