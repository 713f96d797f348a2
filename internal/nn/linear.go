package nn

import (
	"fmt"
	"math/rand"

	"github.com/percept-ml/percept/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]

	input *tensor.Tensor // cached forward input, consumed by Backward
}

// NewLinear creates a new Linear layer.
//
// The rng drives weight initialization; passing an explicitly seeded
// source makes model construction reproducible.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, rng))

	biasShape := tensor.Shape{outFeatures}
	bias := NewParameter("bias", Zeros(biasShape))

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	l.input = input

	w := l.weight.Tensor() // [out_features, in_features]
	wT := w.Transpose()    // [in_features, out_features]

	// [batch, in] @ [in, out] = [batch, out]
	output := input.MatMul(wT)

	b := l.bias.Tensor() // [out_features]
	output = output.Add(b.Reshape(1, l.outFeatures))

	return output
}

// Backward computes parameter gradients and the input gradient.
//
// Given grad = dL/dy with shape [batch, out_features]:
//
//	dW = grad.T @ x      [out_features, in_features]
//	db = sum_rows(grad)  [out_features]
//	dx = grad @ W        [batch, in_features]
func (l *Linear) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if l.input == nil {
		panic("Linear.Backward: called before Forward")
	}

	gradShape := grad.Shape()
	if len(gradShape) != 2 || gradShape[1] != l.outFeatures {
		panic(fmt.Sprintf("Linear.Backward: expected grad shape [batch, %d], got %v", l.outFeatures, gradShape))
	}

	dW := grad.Transpose().MatMul(l.input)
	l.weight.AccumGrad(dW)

	db := grad.SumRows()
	l.bias.AccumGrad(db)

	return grad.MatMul(l.weight.Tensor())
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.weight.Tensor().Raw(),
		"bias":   l.bias.Tensor().Raw(),
	}
}

// LoadStateDict loads parameters from a state dictionary.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	weightRaw, ok := stateDict["weight"]
	if !ok {
		return fmt.Errorf("missing weight in state dict")
	}

	expectedWeightShape := tensor.Shape{l.outFeatures, l.inFeatures}
	if !weightRaw.Shape().Equal(expectedWeightShape) {
		return fmt.Errorf("%w: weight: expected %v, got %v",
			ErrShapeMismatch, expectedWeightShape, weightRaw.Shape())
	}
	if weightRaw.DType() != tensor.Float32 {
		return fmt.Errorf("weight dtype mismatch: expected float32, got %v", weightRaw.DType())
	}

	copy(l.weight.Tensor().Data(), weightRaw.AsFloat32())

	biasRaw, ok := stateDict["bias"]
	if !ok {
		return fmt.Errorf("missing bias in state dict")
	}

	expectedBiasShape := tensor.Shape{l.outFeatures}
	if !biasRaw.Shape().Equal(expectedBiasShape) {
		return fmt.Errorf("%w: bias: expected %v, got %v",
			ErrShapeMismatch, expectedBiasShape, biasRaw.Shape())
	}
	if biasRaw.DType() != tensor.Float32 {
		return fmt.Errorf("bias dtype mismatch: expected float32, got %v", biasRaw.DType())
	}

	copy(l.bias.Tensor().Data(), biasRaw.AsFloat32())

	return nil
}
