package nn

import (
	"math"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
type ReLU struct {
	input *tensor.Tensor
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return &ReLU{}
}

func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	r.input = input
	out := input.Clone()
	data := out.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
	return out
}

func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.input == nil {
		panic("ReLU: Backward called before Forward")
	}
	out := grad.Clone()
	data := out.Data()
	in := r.input.Data()
	for i := range data {
		if in[i] <= 0 {
			data[i] = 0
		}
	}
	return out
}

func (r *ReLU) Parameters() []*Parameter { return nil }

func (r *ReLU) SetTraining(bool) {}

// Sigmoid applies 1/(1+exp(-x)) element-wise.
type Sigmoid struct {
	output *tensor.Tensor
}

// NewSigmoid creates a sigmoid activation.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

func (s *Sigmoid) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := input.Clone()
	data := out.Data()
	for i, v := range data {
		data[i] = float32(1 / (1 + math.Exp(-float64(v))))
	}
	s.output = out
	return out
}

func (s *Sigmoid) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if s.output == nil {
		panic("Sigmoid: Backward called before Forward")
	}
	// dx = dOut * y * (1 - y)
	y := s.output.Data()
	out := grad.Clone()
	data := out.Data()
	for i := range data {
		data[i] *= y[i] * (1 - y[i])
	}
	return out
}

func (s *Sigmoid) Parameters() []*Parameter { return nil }

func (s *Sigmoid) SetTraining(bool) {}
