// Copyright 2026 Kiln ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"log/slog"

	"github.com/kiln-ml/kiln/internal/tensor"
	"github.com/kiln-ml/kiln/internal/train"
)

// Configuration errors, returned before any compute begins.
var (
	ErrInvalidIterations         = train.ErrInvalidIterations
	ErrInvalidAveragePredictions = train.ErrInvalidAveragePredictions
	ErrInvalidEpochs             = train.ErrInvalidEpochs
)

// Model is the contract the loops drive. nn.Sequential satisfies it.
type Model = train.Model

// MultiHead is implemented by models producing several output tensors.
type MultiHead = train.MultiHead

// Criterion scores predictions and supplies the loss gradient.
type Criterion = train.Criterion

// Wrapper orchestrates training, evaluation and prediction for one model
// and criterion.
type Wrapper = train.Wrapper

// Option configures a Wrapper.
type Option = train.Option

// WithLogger sets the structured logging sink for loop events.
func WithLogger(log *slog.Logger) Option {
	return train.WithLogger(log)
}

// New creates a Wrapper around model and criterion.
//
// Example:
//
//	wrapper := train.New(model, nn.NewMSELoss(),
//	    train.WithLogger(slog.Default()))
func New(model Model, criterion Criterion, opts ...Option) *Wrapper {
	return train.New(model, criterion, opts...)
}

// LoopConfig configures a dataset-level loop.
type LoopConfig = train.LoopConfig

// History records per-epoch metric snapshots of a joint train/test loop.
type History = train.History

// Variance computes the per-element spread of a stacked prediction across
// its trailing iteration axis.
func Variance(pred *tensor.Tensor) *tensor.Tensor {
	return train.Variance(pred)
}

// Entropy scores a stacked [samples, classes, iterations] probability
// prediction by the Shannon entropy of the iteration-averaged
// distribution.
func Entropy(pred *tensor.Tensor) *tensor.Tensor {
	return train.Entropy(pred)
}
