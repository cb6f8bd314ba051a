package nn

import (
	"fmt"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Linear is a fully connected layer computing output = input @ weight + bias.
//
// Weight has shape [inFeatures, outFeatures], bias [outFeatures].
// Input is [batch, inFeatures], output [batch, outFeatures].
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter

	input *tensor.Tensor // cached for the backward pass
}

// NewLinear creates a fully connected layer with Xavier-initialized weights
// and zero bias.
func NewLinear(inFeatures, outFeatures int) *Linear {
	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
	}
	l.weight = NewParameter("weight", xavierUniform(tensor.Shape{inFeatures, outFeatures}, inFeatures, outFeatures))
	l.bias = NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures}))
	return l
}

// Forward computes input @ weight + bias, caching the input.
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 || shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear: expected input [batch, %d], got %v", l.inFeatures, shape))
	}
	l.input = input

	out := input.MatMul(l.weight.Tensor())
	data := out.Data()
	bias := l.bias.Tensor().Data()
	for b := 0; b < shape[0]; b++ {
		row := data[b*l.outFeatures : (b+1)*l.outFeatures]
		for j := range row {
			row[j] += bias[j]
		}
	}
	return out
}

// Backward accumulates weight and bias gradients and returns the gradient
// with respect to the layer input.
func (l *Linear) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if l.input == nil {
		panic("Linear: Backward called before Forward")
	}

	// dW = x^T @ dOut, db = column sums of dOut, dx = dOut @ W^T
	l.weight.AccumGrad(l.input.T().MatMul(grad))
	l.bias.AccumGrad(grad.Mean(0).MulScalar(float32(grad.Shape()[0])))
	return grad.MatMul(l.weight.Tensor().T())
}

// Parameters returns the weight and bias parameters.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// SetTraining is a no-op: Linear behaves identically in both modes.
func (l *Linear) SetTraining(bool) {}

// ResetParameters re-initializes the weight and bias in place.
func (l *Linear) ResetParameters() {
	fresh := xavierUniform(tensor.Shape{l.inFeatures, l.outFeatures}, l.inFeatures, l.outFeatures)
	copy(l.weight.Tensor().Data(), fresh.Data())
	bias := l.bias.Tensor().Data()
	for i := range bias {
		bias[i] = 0
	}
}
