// Package data provides the dataset and batch-loading collaborators the
// training orchestration core iterates over.
//
// A Dataset is a finite, restartable, random-access sequence of samples.
// The Loader groups samples into batches with optional shuffling and
// worker-based prefetch; the consuming loop stays strictly sequential.
package data

import (
	"fmt"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Dataset is a finite random-access collection of (input, target) samples.
type Dataset interface {
	// Len returns the number of samples.
	Len() int
	// At returns the sample at index i. Tensors are per-sample shaped;
	// the batch dimension is added by collation.
	At(i int) (input, target *tensor.Tensor)
}

// TensorDataset is an in-memory dataset over parallel input/target slices.
type TensorDataset struct {
	inputs  []*tensor.Tensor
	targets []*tensor.Tensor
}

// NewTensorDataset creates a dataset from parallel slices of inputs and
// targets.
func NewTensorDataset(inputs, targets []*tensor.Tensor) (*TensorDataset, error) {
	if len(inputs) != len(targets) {
		return nil, fmt.Errorf("tensor dataset: %d inputs but %d targets", len(inputs), len(targets))
	}
	return &TensorDataset{inputs: inputs, targets: targets}, nil
}

func (d *TensorDataset) Len() int {
	return len(d.inputs)
}

func (d *TensorDataset) At(i int) (*tensor.Tensor, *tensor.Tensor) {
	return d.inputs[i], d.targets[i]
}

// Subset is a view over a subset of another dataset's indices, e.g. the
// labelled pool in an active-learning split.
type Subset struct {
	dataset Dataset
	indices []int
}

// NewSubset creates a view of dataset restricted to indices.
func NewSubset(dataset Dataset, indices []int) (*Subset, error) {
	for _, idx := range indices {
		if idx < 0 || idx >= dataset.Len() {
			return nil, fmt.Errorf("subset: index %d out of range [0, %d)", idx, dataset.Len())
		}
	}
	return &Subset{dataset: dataset, indices: indices}, nil
}

func (s *Subset) Len() int {
	return len(s.indices)
}

func (s *Subset) At(i int) (*tensor.Tensor, *tensor.Tensor) {
	return s.dataset.At(s.indices[i])
}
