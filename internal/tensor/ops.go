package tensor

import (
	"fmt"

	"github.com/kiln-ml/kiln/internal/parallel"
)

func (t *Tensor) binaryCheck(other *Tensor, op string) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, t.shape, other.shape))
	}
	if t.device != other.device {
		panic(fmt.Sprintf("%s: device mismatch %s vs %s", op, t.device, other.device))
	}
}

func (t *Tensor) elementwise(other *Tensor, op string, f func(a, b float32) float32) *Tensor {
	t.binaryCheck(other, op)
	out := newUninitialized(t.shape)
	out.device = t.device
	parallel.Ranges(len(t.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = f(t.data[i], other.data[i])
		}
	})
	return out
}

// Add performs element-wise addition.
func (t *Tensor) Add(other *Tensor) *Tensor {
	return t.elementwise(other, "Add", func(a, b float32) float32 { return a + b })
}

// Sub performs element-wise subtraction.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	return t.elementwise(other, "Sub", func(a, b float32) float32 { return a - b })
}

// Mul performs element-wise multiplication.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return t.elementwise(other, "Mul", func(a, b float32) float32 { return a * b })
}

// Div performs element-wise division.
func (t *Tensor) Div(other *Tensor) *Tensor {
	return t.elementwise(other, "Div", func(a, b float32) float32 { return a / b })
}

func (t *Tensor) scalar(f func(a float32) float32) *Tensor {
	out := newUninitialized(t.shape)
	out.device = t.device
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// AddScalar adds a scalar to every element.
func (t *Tensor) AddScalar(s float32) *Tensor {
	return t.scalar(func(a float32) float32 { return a + s })
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor) MulScalar(s float32) *Tensor {
	return t.scalar(func(a float32) float32 { return a * s })
}

// MatMul performs matrix multiplication of two 2-D tensors:
// [m, k] x [k, n] -> [m, n]. Rows are computed in parallel.
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic(fmt.Sprintf("MatMul: requires 2-D tensors, got %v and %v", t.shape, other.shape))
	}
	m, k := t.shape[0], t.shape[1]
	k2, n := other.shape[0], other.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("MatMul: inner dimension mismatch %v vs %v", t.shape, other.shape))
	}

	out := newUninitialized(Shape{m, n})
	out.device = t.device
	parallel.Ranges(m, func(start, end int) {
		for i := start; i < end; i++ {
			row := t.data[i*k : (i+1)*k]
			outRow := out.data[i*n : (i+1)*n]
			for p, a := range row {
				if a == 0 {
					continue
				}
				otherRow := other.data[p*n : (p+1)*n]
				for j, b := range otherRow {
					outRow[j] += a * b
				}
			}
		}
	})
	return out
}
