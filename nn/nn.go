// Copyright 2025 Percept ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn is the public API for Percept's neural network modules.
package nn

import (
	"math/rand"

	"github.com/percept-ml/percept/internal/nn"
	"github.com/percept-ml/percept/internal/tensor"
)

// ErrShapeMismatch reports that a tensor being loaded into a module does
// not match the shape the module's architecture requires.
var ErrShapeMismatch = nn.ErrShapeMismatch

// Module is the base interface for all neural network components.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, rng)
}

// ReLU represents the Rectified Linear Unit activation function.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Sequential chains modules into a pipeline.
type Sequential = nn.Sequential

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Loss

// CrossEntropyLoss combines softmax and negative log likelihood.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a new cross-entropy loss.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss()
}

// Models

// Config describes a fully-connected classifier's architecture.
type Config = nn.Config

// Classifier is a fully-connected classification network built from a
// Config.
type Classifier = nn.Classifier

// NewClassifier constructs a classifier from a Config.
func NewClassifier(cfg Config, rng *rand.Rand) (*Classifier, error) {
	return nn.NewClassifier(cfg, rng)
}

// Accuracy returns the fraction of rows in logits whose argmax equals
// the corresponding label.
func Accuracy(logits *tensor.Tensor, labels []int32) float64 {
	return nn.Accuracy(logits, labels)
}
