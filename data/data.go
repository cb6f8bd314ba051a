// Copyright 2026 Kiln ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides datasets and the batching loader.
//
// A Loader shuffles, collates and optionally prefetches batches with
// worker goroutines while preserving batch order:
//
//	loader, err := data.NewLoader(dataset, data.LoaderConfig{
//	    BatchSize: 32,
//	    Shuffle:   true,
//	    Workers:   4,
//	})
//	for batch := range loader.Batches() {
//	    // ...
//	}
package data

import (
	"github.com/kiln-ml/kiln/internal/data"
	"github.com/kiln-ml/kiln/internal/tensor"
)

// Dataset is an indexable collection of (input, target) samples.
type Dataset = data.Dataset

// TensorDataset is an in-memory dataset of paired tensors.
type TensorDataset = data.TensorDataset

// NewTensorDataset pairs inputs with targets by index.
func NewTensorDataset(inputs, targets []*tensor.Tensor) (*TensorDataset, error) {
	return data.NewTensorDataset(inputs, targets)
}

// Subset restricts a dataset to a fixed index list.
type Subset = data.Subset

// NewSubset creates a view over dataset limited to indices.
func NewSubset(dataset Dataset, indices []int) (*Subset, error) {
	return data.NewSubset(dataset, indices)
}

// Batch is one collated batch of samples.
type Batch = data.Batch

// Collate merges individual samples into one batch.
type Collate = data.Collate

// DefaultCollate stacks samples along a new leading batch axis.
func DefaultCollate(inputs, targets []*tensor.Tensor) Batch {
	return data.DefaultCollate(inputs, targets)
}

// Loader iterates a dataset in batches.
type Loader = data.Loader

// LoaderConfig configures a Loader.
type LoaderConfig = data.LoaderConfig

// NewLoader creates a batching loader over dataset.
func NewLoader(dataset Dataset, cfg LoaderConfig) (*Loader, error) {
	return data.NewLoader(dataset, cfg)
}
