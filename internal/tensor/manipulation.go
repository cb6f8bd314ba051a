package tensor

import (
	"fmt"

	"github.com/kiln-ml/kiln/internal/parallel"
)

// Reshape returns a view of the tensor with a new shape sharing the same
// data. The element count must be unchanged.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	newShape := Shape(dims)
	if err := newShape.Validate(); err != nil {
		panic(err)
	}
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("Reshape: cannot reshape %v into %v", t.shape, newShape))
	}
	return &Tensor{data: t.data, shape: newShape.Clone(), device: t.device}
}

// Permute reorders the tensor's axes: output axis i is input axis axes[i].
// The result is materialized in contiguous row-major layout.
func (t *Tensor) Permute(axes ...int) *Tensor {
	if len(axes) != len(t.shape) {
		panic(fmt.Sprintf("Permute: expected %d axes, got %d", len(t.shape), len(axes)))
	}
	seen := make([]bool, len(axes))
	outShape := make(Shape, len(axes))
	for i, a := range axes {
		if a < 0 || a >= len(t.shape) || seen[a] {
			panic(fmt.Sprintf("Permute: invalid axis permutation %v for shape %v", axes, t.shape))
		}
		seen[a] = true
		outShape[i] = t.shape[a]
	}

	out := newUninitialized(outShape)
	out.device = t.device
	inStrides := t.shape.Strides()
	outStrides := outShape.Strides()
	parallel.Ranges(out.NumElements(), func(start, end int) {
		for flat := start; flat < end; flat++ {
			rem := flat
			src := 0
			for i, stride := range outStrides {
				idx := rem / stride
				rem -= idx * stride
				src += idx * inStrides[axes[i]]
			}
			out.data[flat] = t.data[src]
		}
	})
	return out
}

// T transposes a 2-D tensor.
func (t *Tensor) T() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("T: requires a 2-D tensor, got %v", t.shape))
	}
	return t.Permute(1, 0)
}

// Stack concatenates tensors of identical shape along a new leading axis:
// n tensors of shape [d...] produce [n, d...].
func Stack(tensors []*Tensor) *Tensor {
	if len(tensors) == 0 {
		panic("Stack: empty tensor list")
	}
	first := tensors[0]
	for _, t := range tensors[1:] {
		first.binaryCheck(t, "Stack")
	}

	outShape := append(Shape{len(tensors)}, first.shape...)
	out := newUninitialized(outShape)
	out.device = first.device
	per := first.NumElements()
	for i, t := range tensors {
		copy(out.data[i*per:(i+1)*per], t.data)
	}
	return out
}

// Concat concatenates tensors along an existing axis. All shapes must match
// outside the concatenation axis.
func Concat(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("Concat: empty tensor list")
	}
	first := tensors[0]
	if dim < 0 || dim >= len(first.shape) {
		panic(fmt.Sprintf("Concat: invalid dim %d for shape %v", dim, first.shape))
	}

	total := 0
	for _, t := range tensors {
		if len(t.shape) != len(first.shape) {
			panic(fmt.Sprintf("Concat: rank mismatch %v vs %v", first.shape, t.shape))
		}
		for i := range t.shape {
			if i != dim && t.shape[i] != first.shape[i] {
				panic(fmt.Sprintf("Concat: shape mismatch %v vs %v along dim %d", first.shape, t.shape, dim))
			}
		}
		total += t.shape[dim]
	}

	outShape := first.shape.Clone()
	outShape[dim] = total
	out := newUninitialized(outShape)
	out.device = first.device

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= first.shape[i]
	}
	inner := 1
	for i := dim + 1; i < len(first.shape); i++ {
		inner *= first.shape[i]
	}

	rowOffset := 0
	outRow := total * inner
	for _, t := range tensors {
		block := t.shape[dim] * inner
		for o := 0; o < outer; o++ {
			copy(out.data[o*outRow+rowOffset:o*outRow+rowOffset+block], t.data[o*block:(o+1)*block])
		}
		rowOffset += block
	}
	return out
}

// Mean reduces one axis to its mean, removing it from the shape.
func (t *Tensor) Mean(dim int) *Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("Mean: invalid dim %d for shape %v", dim, t.shape))
	}
	outShape := make(Shape, 0, len(t.shape)-1)
	outShape = append(outShape, t.shape[:dim]...)
	outShape = append(outShape, t.shape[dim+1:]...)

	d := t.shape[dim]
	inner := 1
	for i := dim + 1; i < len(t.shape); i++ {
		inner *= t.shape[i]
	}
	outer := t.NumElements() / (d * inner)

	out := newUninitialized(outShape)
	out.device = t.device
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			var sum float32
			for j := 0; j < d; j++ {
				sum += t.data[(o*d+j)*inner+i]
			}
			out.data[o*inner+i] = sum / float32(d)
		}
	}
	return out
}

// Argmax returns, for every position outside dim, the index of the maximum
// element along dim. Results are in row-major order of the reduced shape.
func (t *Tensor) Argmax(dim int) []int {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("Argmax: invalid dim %d for shape %v", dim, t.shape))
	}
	d := t.shape[dim]
	inner := 1
	for i := dim + 1; i < len(t.shape); i++ {
		inner *= t.shape[i]
	}
	outer := t.NumElements() / (d * inner)

	out := make([]int, outer*inner)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			best := 0
			bestVal := t.data[o*d*inner+i]
			for j := 1; j < d; j++ {
				if v := t.data[(o*d+j)*inner+i]; v > bestVal {
					bestVal = v
					best = j
				}
			}
			out[o*inner+i] = best
		}
	}
	return out
}
