package nn

import (
	"github.com/percept-ml/percept/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that receive gradients during the backward pass.
// They typically represent weights and biases of layers.
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor // The parameter tensor
	grad   *tensor.Tensor // Accumulated gradient, nil until first backward pass
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
// The gradient buffer is allocated on the first backward pass.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the accumulated gradient.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// AccumGrad adds g into the parameter's gradient buffer, allocating it on
// first use. Accumulation (rather than assignment) keeps gradients correct
// when a parameter contributes to the loss through multiple paths.
func (p *Parameter) AccumGrad(g *tensor.Tensor) {
	if p.grad == nil {
		p.grad = tensor.Zeros(p.tensor.Shape())
	}
	gd := p.grad.Data()
	ad := g.Data()
	for i := range gd {
		gd[i] += ad[i]
	}
}

// ZeroGrad clears the gradient buffer.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
