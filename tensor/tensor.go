// Copyright 2026 Kiln ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/kiln-ml/kiln/internal/tensor"
)

// Tensor is a dense row-major float32 array with an explicit shape.
type Tensor = tensor.Tensor

// Shape describes the dimensions of a tensor.
type Shape = tensor.Shape

// Device identifies where a tensor's data lives.
type Device = tensor.Device

// Known devices.
const (
	CPU         = tensor.CPU
	Accelerator = tensor.Accelerator
)

// ErrDeviceUnavailable is returned by transfers to a device the host does
// not provide.
var ErrDeviceUnavailable = tensor.ErrDeviceUnavailable

// New wraps an existing float32 slice without copying.
func New(data []float32, shape Shape) (*Tensor, error) {
	return tensor.New(data, shape)
}

// FromSlice copies data into a new tensor.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a one-filled tensor.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor of standard normal samples.
func Randn(shape Shape) *Tensor {
	return tensor.Randn(shape)
}

// Stack joins equally shaped tensors along a new leading axis.
func Stack(tensors []*Tensor) *Tensor {
	return tensor.Stack(tensors)
}

// Concat joins tensors along an existing axis.
func Concat(tensors []*Tensor, dim int) *Tensor {
	return tensor.Concat(tensors, dim)
}
