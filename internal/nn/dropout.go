package nn

import (
	"fmt"
	"math/rand"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Dropout randomly zeroes elements with probability p during training and
// rescales the survivors by 1/(1-p) (inverted dropout), so evaluation needs
// no scaling.
//
// A Monte-Carlo dropout layer (NewMCDropout) stays stochastic in evaluation
// mode as well. That per-pass stochasticity is what repeated inference
// exploits to estimate predictive uncertainty.
type Dropout struct {
	p          float32
	monteCarlo bool
	training   bool
	rng        *rand.Rand

	mask *tensor.Tensor // nil when the last forward pass was a passthrough
}

// NewDropout creates a dropout layer active only in training mode.
func NewDropout(p float32) *Dropout {
	return newDropout(p, false)
}

// NewMCDropout creates a Monte-Carlo dropout layer that samples a fresh
// mask on every forward pass regardless of mode.
func NewMCDropout(p float32) *Dropout {
	return newDropout(p, true)
}

func newDropout(p float32, monteCarlo bool) *Dropout {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: probability must be in [0, 1), got %v", p))
	}
	return &Dropout{
		p:          p,
		monteCarlo: monteCarlo,
		rng:        rand.New(rand.NewSource(rand.Int63())),
	}
}

func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training && !d.monteCarlo {
		d.mask = nil
		return input
	}

	scale := 1 / (1 - d.p)
	d.mask = tensor.Zeros(input.Shape())
	mask := d.mask.Data()
	for i := range mask {
		if d.rng.Float32() >= d.p {
			mask[i] = scale
		}
	}
	return input.Mul(d.mask)
}

func (d *Dropout) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if d.mask == nil {
		return grad
	}
	return grad.Mul(d.mask)
}

func (d *Dropout) Parameters() []*Parameter { return nil }

func (d *Dropout) SetTraining(training bool) {
	d.training = training
}
