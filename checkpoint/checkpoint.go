// Copyright 2025 Percept ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint is the public API for saving and loading Percept
// classifiers in the native .pct format.
package checkpoint

import (
	"github.com/percept-ml/percept/internal/checkpoint"
	"github.com/percept-ml/percept/internal/nn"
)

// Common errors surfaced when a checkpoint file is malformed.
var (
	ErrInvalidMagic       = checkpoint.ErrInvalidMagic
	ErrUnsupportedVersion = checkpoint.ErrUnsupportedVersion
	ErrChecksumMismatch   = checkpoint.ErrChecksumMismatch
)

// Checkpoint is a complete training snapshot: model, optimizer state,
// and run position.
type Checkpoint = checkpoint.Checkpoint

// OptimizerState is an optimizer that can save and restore its state.
type OptimizerState = checkpoint.OptimizerState

// Manifest summarizes a checkpoint file for inspection tooling.
type Manifest = checkpoint.Manifest

// Save serializes a model's descriptor and parameters to a .pct file,
// creating or overwriting it.
func Save(model *nn.Classifier, path string) error {
	return checkpoint.Save(model, path)
}

// Load reads a .pct file, constructs a fresh classifier with the stored
// descriptor, and copies the stored parameters into it.
func Load(path string) (*nn.Classifier, error) {
	return checkpoint.Load(path)
}

// Resume restores a mid-run checkpoint into an existing model and
// optimizer.
func Resume(path string, model *nn.Classifier, opt OptimizerState) (*Checkpoint, error) {
	return checkpoint.Resume(path, model, opt)
}

// Inspect reads a checkpoint's header without loading tensor data into a
// model.
func Inspect(path string) (*Manifest, error) {
	return checkpoint.Inspect(path)
}
