package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/internal/nn"
	"github.com/kiln-ml/kiln/internal/tensor"
)

func paramWithGrad(t *testing.T, value, grad float32) *nn.Parameter {
	t.Helper()
	tt, err := tensor.FromSlice([]float32{value}, tensor.Shape{1})
	require.NoError(t, err)
	p := nn.NewParameter("w", tt)
	g, err := tensor.FromSlice([]float32{grad}, tensor.Shape{1})
	require.NoError(t, err)
	p.AccumGrad(g)
	return p
}

func TestSGDStep(t *testing.T) {
	p := paramWithGrad(t, 1.0, 0.5)
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	sgd.Step()
	assert.InDelta(t, 0.95, p.Tensor().At(0), 1e-6)
}

func TestSGDMomentum(t *testing.T) {
	p := paramWithGrad(t, 0, 1)
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1, Momentum: 0.9})

	sgd.Step() // v=1, p=-0.1
	assert.InDelta(t, -0.1, p.Tensor().At(0), 1e-6)

	// Same gradient again: v=1.9, p=-0.29
	sgd.Step()
	assert.InDelta(t, -0.29, p.Tensor().At(0), 1e-6)
}

func TestSGDSkipsNilGrad(t *testing.T) {
	tt, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1})
	p := nn.NewParameter("w", tt)
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{LR: 0.1})

	sgd.Step()
	assert.Equal(t, float32(2), p.Tensor().At(0))
}

func TestZeroGrad(t *testing.T) {
	p := paramWithGrad(t, 1, 1)
	sgd := NewSGD([]*nn.Parameter{p}, SGDConfig{})
	require.NotNil(t, p.Grad())

	sgd.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestSGDDefaults(t *testing.T) {
	sgd := NewSGD(nil, SGDConfig{})
	assert.Equal(t, float32(0.01), sgd.LR())
}

func TestAdamFirstStep(t *testing.T) {
	p := paramWithGrad(t, 1.0, 0.5)
	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.001})

	adam.Step()
	// With bias correction the first step moves by ~lr regardless of the
	// gradient magnitude.
	assert.InDelta(t, 1.0-0.001, p.Tensor().At(0), 1e-5)
}

func TestAdamConverges(t *testing.T) {
	// Minimize f(w) = w^2 from w=1; gradient is 2w.
	tt, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	p := nn.NewParameter("w", tt)
	adam := NewAdam([]*nn.Parameter{p}, AdamConfig{LR: 0.05})

	for i := 0; i < 200; i++ {
		adam.ZeroGrad()
		w := p.Tensor().At(0)
		g, _ := tensor.FromSlice([]float32{2 * w}, tensor.Shape{1})
		p.AccumGrad(g)
		adam.Step()
	}
	assert.InDelta(t, 0, p.Tensor().At(0), 0.05)
}
