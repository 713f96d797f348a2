package nn

import (
	"github.com/percept-ml/percept/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU struct {
	input *tensor.Tensor // cached forward input, consumed by Backward
}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	r.input = input

	out := input.Clone()
	data := out.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
	return out
}

// Backward passes through gradients where the forward input was positive
// and zeroes them elsewhere.
func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.input == nil {
		panic("ReLU.Backward: called before Forward")
	}

	out := grad.Clone()
	od := out.Data()
	in := r.input.Data()
	for i := range od {
		if in[i] <= 0 {
			od[i] = 0
		}
	}
	return out
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// StateDict returns an empty map (ReLU has no state).
func (r *ReLU) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op for ReLU.
func (r *ReLU) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}
