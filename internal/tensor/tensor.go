// Package tensor implements the dense float32 tensors the training
// orchestration core moves around: contiguous row-major storage with the
// shape, reduction and permutation operations the core needs. It is a
// compute substrate, not a general math library.
package tensor

import (
	"fmt"

	"github.com/x448/float16"
)

// Tensor is a dense float32 tensor with row-major contiguous storage.
type Tensor struct {
	data   []float32
	shape  Shape
	device Device
}

// New creates a tensor wrapping data with the given shape.
// The slice is used directly, not copied.
func New(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	return &Tensor{data: data, shape: shape.Clone(), device: CPU}, nil
}

// FromSlice creates a tensor from a Go slice. The data is copied.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	buf := make([]float32, len(data))
	copy(buf, data)
	return New(buf, shape)
}

// Shape returns the tensor's shape. Callers must not mutate it.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Device returns the tensor's compute device.
func (t *Tensor) Device() Device {
	return t.device
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Data returns the underlying storage. The slice directly accesses the
// tensor's memory; modifications are visible to every view of it.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Item returns the value of a single-element tensor.
// Panics otherwise.
func (t *Tensor) Item() float32 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() requires a single-element tensor, got shape %v", t.shape))
	}
	return t.data[0]
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) float32 {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
func (t *Tensor) Set(value float32, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	strides := t.shape.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{data: data, shape: t.shape.Clone(), device: t.device}
}

// Detach returns a new tensor header sharing the same data. The result is
// independent of any layer caches or gradient bookkeeping built on top of
// the original.
func (t *Tensor) Detach() *Tensor {
	return &Tensor{data: t.data, shape: t.shape.Clone(), device: t.device}
}

// Half converts the tensor's data to IEEE 754 half precision. Used when
// streaming large prediction stacks to keep the host-resident copy small.
func (t *Tensor) Half() []float16.Float16 {
	out := make([]float16.Float16, len(t.data))
	for i, v := range t.data {
		out[i] = float16.Fromfloat32(v)
	}
	return out
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v on %s", t.shape, t.device)
}
