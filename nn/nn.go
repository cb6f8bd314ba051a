// Copyright 2026 Kiln ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/kiln-ml/kiln/internal/nn"
	"github.com/kiln-ml/kiln/internal/tensor"
)

// Module is the common interface for all neural network layers.
type Module = nn.Module

// Resettable is implemented by layers whose parameters can be
// re-initialized in place.
type Resettable = nn.Resettable

// Parameter is a named trainable tensor with an accumulated gradient.
type Parameter = nn.Parameter

// NewParameter creates a parameter wrapping t.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear is a fully connected layer with Xavier-initialized weights.
type Linear = nn.Linear

// NewLinear creates a fully connected layer.
//
// Example:
//
//	layer := nn.NewLinear(784, 128)
func NewLinear(inFeatures, outFeatures int) *Linear {
	return nn.NewLinear(inFeatures, outFeatures)
}

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Sigmoid is the logistic activation.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a sigmoid activation.
func NewSigmoid() *Sigmoid {
	return nn.NewSigmoid()
}

// Dropout randomly zeroes activations during training, scaling survivors
// so the expected activation is unchanged.
type Dropout = nn.Dropout

// NewDropout creates a dropout layer active only in training mode.
func NewDropout(p float32) *Dropout {
	return nn.NewDropout(p)
}

// NewMCDropout creates a Monte-Carlo dropout layer that stays stochastic
// in evaluation mode, which is what makes repeated predictions disagree.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128),
//	    nn.NewMCDropout(0.5),
//	    nn.NewLinear(128, 10),
//	)
func NewMCDropout(p float32) *Dropout {
	return nn.NewMCDropout(p)
}

// Sequential chains modules, feeding each one's output to the next.
type Sequential = nn.Sequential

// NewSequential creates a sequential container.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Losses

// MSELoss is the mean squared error criterion.
type MSELoss = nn.MSELoss

// NewMSELoss creates an MSE criterion.
func NewMSELoss() *MSELoss {
	return nn.NewMSELoss()
}

// CrossEntropyLoss combines softmax and negative log likelihood over
// class-index targets.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a cross-entropy criterion.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss()
}
