package tensor

import "math/rand"

func newUninitialized(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	return &Tensor{data: make([]float32, shape.NumElements()), shape: shape.Clone(), device: CPU}
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return newUninitialized(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	t := newUninitialized(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from the standard normal
// distribution.
func Randn(shape Shape) *Tensor {
	t := newUninitialized(shape)
	for i := range t.data {
		t.data[i] = float32(rand.NormFloat64())
	}
	return t
}
