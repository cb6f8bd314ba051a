// Package nn implements the neural network substrate the orchestration core
// drives: trainable parameters, layers with layer-local backpropagation,
// a Sequential container, and loss criteria.
//
// There is no autodiff tape. Each layer caches what its own backward pass
// needs during Forward and produces the input gradient (plus parameter
// gradient accumulation) during Backward. This keeps the substrate small;
// the orchestration layer only relies on the Module contract below.
package nn

import (
	"github.com/kiln-ml/kiln/internal/tensor"
)

// Module is the base interface for all neural network components.
type Module interface {
	// Forward computes the output of the module given an input tensor.
	// While training, the module caches whatever its backward pass needs.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Backward takes the gradient of the loss with respect to the module's
	// output, accumulates gradients into the module's parameters, and
	// returns the gradient with respect to the module's input.
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	// Modules without trainable parameters return an empty slice.
	Parameters() []*Parameter

	// SetTraining switches between training and evaluation behavior
	// (e.g. dropout sampling). Parameter-only modules ignore it.
	SetTraining(training bool)
}

// Resettable is implemented by modules whose parameters can be
// re-initialized in place, e.g. between active-learning rounds.
type Resettable interface {
	ResetParameters()
}
