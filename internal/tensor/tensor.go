package tensor

import (
	"fmt"
)

// Tensor is a float32 view over a RawTensor with the dense linear-algebra
// operations needed by fully-connected networks. Operations allocate fresh
// result tensors; inputs are never modified.
//
// Shape violations panic with a descriptive message. Tensor shapes are a
// programming-error class of problem in a training loop, not a runtime
// condition worth threading error returns through every expression.
type Tensor struct {
	raw *RawTensor
}

// New wraps a Float32 RawTensor.
// Panics if the raw tensor is not Float32.
func New(raw *RawTensor) *Tensor {
	if raw.DType() != Float32 {
		panic(fmt.Sprintf("tensor.New: dtype is %s, not float32", raw.DType()))
	}
	return &Tensor{raw: raw}
}

// FromSlice creates a tensor from a float32 slice with the given shape.
func FromSlice(values []float32, shape Shape) (*Tensor, error) {
	raw, err := FromFloat32(values, shape)
	if err != nil {
		return nil, err
	}
	return &Tensor{raw: raw}, nil
}

// Zeros creates a zero-filled tensor with the given shape.
func Zeros(shape Shape) *Tensor {
	raw, err := NewRaw(shape, Float32)
	if err != nil {
		panic(fmt.Sprintf("tensor.Zeros: %v", err))
	}
	return &Tensor{raw: raw}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.raw.Shape()
}

// Raw returns the underlying RawTensor.
func (t *Tensor) Raw() *RawTensor {
	return t.raw
}

// Data returns the tensor values as a float32 slice sharing storage.
func (t *Tensor) Data() []float32 {
	return t.raw.AsFloat32()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{raw: t.raw.Clone()}
}

// Reshape returns a view of the same data with a new shape.
// The number of elements must be preserved.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := Shape(dims)
	if shape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("Reshape: cannot reshape %v to %v", t.Shape(), shape))
	}
	return &Tensor{raw: &RawTensor{
		data:   t.raw.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  Float32,
	}}
}

// MatMul computes the matrix product of two 2D tensors.
// [m, k] @ [k, n] -> [m, n].
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	a, b := t.Shape(), other.Shape()
	if len(a) != 2 || len(b) != 2 {
		panic(fmt.Sprintf("MatMul: expected 2D tensors, got %v and %v", a, b))
	}
	if a[1] != b[0] {
		panic(fmt.Sprintf("MatMul: inner dimensions do not match: %v @ %v", a, b))
	}

	m, k, n := a[0], a[1], b[1]
	out := Zeros(Shape{m, n})

	ad := t.Data()
	bd := other.Data()
	od := out.Data()

	for i := 0; i < m; i++ {
		arow := ad[i*k : (i+1)*k]
		orow := od[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := arow[p]
			if av == 0 {
				continue
			}
			brow := bd[p*n : (p+1)*n]
			for j := 0; j < n; j++ {
				orow[j] += av * brow[j]
			}
		}
	}

	return out
}

// Transpose returns the transpose of a 2D tensor.
func (t *Tensor) Transpose() *Tensor {
	s := t.Shape()
	if len(s) != 2 {
		panic(fmt.Sprintf("Transpose: expected 2D tensor, got %v", s))
	}

	rows, cols := s[0], s[1]
	out := Zeros(Shape{cols, rows})

	in := t.Data()
	od := out.Data()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			od[j*rows+i] = in[i*cols+j]
		}
	}

	return out
}

// Add returns the elementwise sum of two tensors.
//
// Shapes must either be equal, or other must be a [1, n] row vector
// broadcast over every row of a [m, n] tensor (bias addition).
func (t *Tensor) Add(other *Tensor) *Tensor {
	a, b := t.Shape(), other.Shape()

	if a.Equal(b) {
		out := t.Clone()
		od := out.Data()
		bd := other.Data()
		for i := range od {
			od[i] += bd[i]
		}
		return out
	}

	if len(a) == 2 && len(b) == 2 && b[0] == 1 && b[1] == a[1] {
		out := t.Clone()
		od := out.Data()
		bd := other.Data()
		n := a[1]
		for i := 0; i < a[0]; i++ {
			row := od[i*n : (i+1)*n]
			for j := range row {
				row[j] += bd[j]
			}
		}
		return out
	}

	panic(fmt.Sprintf("Add: shapes not compatible: %v and %v", a, b))
}

// Sub returns the elementwise difference of two equally shaped tensors.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	if !t.Shape().Equal(other.Shape()) {
		panic(fmt.Sprintf("Sub: shape mismatch: %v and %v", t.Shape(), other.Shape()))
	}
	out := t.Clone()
	od := out.Data()
	bd := other.Data()
	for i := range od {
		od[i] -= bd[i]
	}
	return out
}

// Mul returns the elementwise product of two equally shaped tensors.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	if !t.Shape().Equal(other.Shape()) {
		panic(fmt.Sprintf("Mul: shape mismatch: %v and %v", t.Shape(), other.Shape()))
	}
	out := t.Clone()
	od := out.Data()
	bd := other.Data()
	for i := range od {
		od[i] *= bd[i]
	}
	return out
}

// Scale returns the tensor multiplied by a scalar.
func (t *Tensor) Scale(s float32) *Tensor {
	out := t.Clone()
	od := out.Data()
	for i := range od {
		od[i] *= s
	}
	return out
}

// SumRows sums a [m, n] tensor over its rows, producing a [n] tensor.
// Used for bias gradients.
func (t *Tensor) SumRows() *Tensor {
	s := t.Shape()
	if len(s) != 2 {
		panic(fmt.Sprintf("SumRows: expected 2D tensor, got %v", s))
	}

	m, n := s[0], s[1]
	out := Zeros(Shape{n})

	in := t.Data()
	od := out.Data()
	for i := 0; i < m; i++ {
		row := in[i*n : (i+1)*n]
		for j := range row {
			od[j] += row[j]
		}
	}

	return out
}

// ArgMaxRows returns the index of the maximum value in each row of a
// [m, n] tensor. Ties resolve to the lowest index.
func (t *Tensor) ArgMaxRows() []int {
	s := t.Shape()
	if len(s) != 2 {
		panic(fmt.Sprintf("ArgMaxRows: expected 2D tensor, got %v", s))
	}

	m, n := s[0], s[1]
	in := t.Data()
	result := make([]int, m)

	for i := 0; i < m; i++ {
		row := in[i*n : (i+1)*n]
		best := 0
		for j := 1; j < n; j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		result[i] = best
	}

	return result
}
