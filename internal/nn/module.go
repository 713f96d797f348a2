// Package nn implements the neural network modules of the Percept framework.
//
// This package provides building blocks for fully-connected classifiers:
//   - Module interface: base interface for all NN components
//   - Parameter: trainable parameters with gradient buffers
//   - Linear: fully connected layer
//   - ReLU: activation
//   - Sequential: container for stacking layers
//   - CrossEntropyLoss: softmax + negative log likelihood
//   - Classifier: a fully-connected network built from an explicit Config
//
// Gradients are computed layer by layer: each module's Backward receives
// the gradient of the loss with respect to its output and returns the
// gradient with respect to its input, accumulating parameter gradients
// along the way.
package nn

import (
	"errors"

	"github.com/percept-ml/percept/internal/tensor"
)

// ErrShapeMismatch reports that a tensor being loaded into a module does
// not match the shape the module's architecture requires. This is fatal:
// it means the wrong architecture was chosen for a stored parameter set.
var ErrShapeMismatch = errors.New("shape mismatch")

// Module is the base interface for all neural network components.
type Module interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Linear expects [batch_size, in_features].
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Backward receives the gradient of the loss with respect to this
	// module's output and returns the gradient with respect to its input.
	// Parameter gradients are accumulated into the module's Parameters.
	//
	// Backward must be called after Forward; modules cache whatever
	// forward-pass state their gradient needs.
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter

	// StateDict returns a map of parameter names to raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads parameters from a state dictionary.
	// Shape or dtype mismatches fail with an error wrapping ErrShapeMismatch.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
