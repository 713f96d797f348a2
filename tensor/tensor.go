// Copyright 2025 Percept ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public API for Percept's dense tensor types.
package tensor

import (
	"github.com/percept-ml/percept/internal/tensor"
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// Supported data types for tensors.
const (
	Float32 = tensor.Float32
	Int32   = tensor.Int32
	Uint8   = tensor.Uint8
)

// RawTensor is the low-level tensor representation: a contiguous byte
// buffer plus shape and type information.
type RawTensor = tensor.RawTensor

// Tensor is a float32 view over a RawTensor with dense linear-algebra
// operations.
type Tensor = tensor.Tensor

// NewRaw creates a new zero-initialized RawTensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// New wraps a Float32 RawTensor in a Tensor.
func New(raw *RawTensor) *Tensor {
	return tensor.New(raw)
}

// FromSlice creates a tensor from a float32 slice with the given shape.
func FromSlice(values []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(values, shape)
}

// Zeros creates a zero-filled tensor with the given shape.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}
