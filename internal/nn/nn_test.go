package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/internal/tensor"
)

func mustTensor(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	tt, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return tt
}

func TestLinearForwardBackward(t *testing.T) {
	l := NewLinear(2, 1)
	copy(l.weight.Tensor().Data(), []float32{0.5, -1})
	copy(l.bias.Tensor().Data(), []float32{0.25})

	x := mustTensor(t, []float32{1, 2}, tensor.Shape{1, 2})
	y := l.Forward(x)
	require.True(t, y.Shape().Equal(tensor.Shape{1, 1}))
	assert.InDelta(t, -1.25, y.Item(), 1e-6)

	gradOut := mustTensor(t, []float32{1}, tensor.Shape{1, 1})
	gradIn := l.Backward(gradOut)

	assert.Equal(t, []float32{1, 2}, l.weight.Grad().Data())
	assert.Equal(t, []float32{1}, l.bias.Grad().Data())
	assert.Equal(t, []float32{0.5, -1}, gradIn.Data())
}

func TestLinearGradAccumulates(t *testing.T) {
	l := NewLinear(2, 1)
	x := mustTensor(t, []float32{1, 1}, tensor.Shape{1, 2})
	grad := mustTensor(t, []float32{1}, tensor.Shape{1, 1})

	l.Forward(x)
	l.Backward(grad)
	first := append([]float32(nil), l.weight.Grad().Data()...)

	l.Forward(x)
	l.Backward(grad)
	for i, v := range l.weight.Grad().Data() {
		assert.InDelta(t, first[i]*2, v, 1e-6)
	}

	l.weight.ZeroGrad()
	assert.Nil(t, l.weight.Grad())
}

func TestReLU(t *testing.T) {
	r := NewReLU()
	x := mustTensor(t, []float32{-1, 0, 2}, tensor.Shape{3})
	y := r.Forward(x)
	assert.Equal(t, []float32{0, 0, 2}, y.Data())

	grad := mustTensor(t, []float32{1, 1, 1}, tensor.Shape{3})
	gx := r.Backward(grad)
	assert.Equal(t, []float32{0, 0, 1}, gx.Data())
}

func TestSigmoid(t *testing.T) {
	s := NewSigmoid()
	x := mustTensor(t, []float32{0}, tensor.Shape{1})
	y := s.Forward(x)
	assert.InDelta(t, 0.5, y.At(0), 1e-6)

	grad := mustTensor(t, []float32{1}, tensor.Shape{1})
	gx := s.Backward(grad)
	assert.InDelta(t, 0.25, gx.At(0), 1e-6) // y*(1-y) at y=0.5
}

func TestDropoutEvalPassthrough(t *testing.T) {
	d := NewDropout(0.5)
	d.SetTraining(false)

	x := mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	y := d.Forward(x)
	assert.Equal(t, x.Data(), y.Data())

	// Backward after a passthrough forward is the identity.
	g := mustTensor(t, []float32{1, 1, 1, 1}, tensor.Shape{4})
	assert.Equal(t, g.Data(), d.Backward(g).Data())
}

func TestDropoutTrainingMasks(t *testing.T) {
	d := NewDropout(0.5)
	d.SetTraining(true)

	x := tensor.Ones(tensor.Shape{1024})
	y := d.Forward(x)

	zeros := 0
	for _, v := range y.Data() {
		switch v {
		case 0:
			zeros++
		case 2: // survivors scaled by 1/(1-p)
		default:
			t.Fatalf("unexpected dropout output %v", v)
		}
	}
	// With p=0.5 over 1024 elements, both outcomes occur.
	assert.Greater(t, zeros, 0)
	assert.Less(t, zeros, 1024)
}

func TestMCDropoutStochasticInEval(t *testing.T) {
	d := NewMCDropout(0.5)
	d.SetTraining(false)

	x := tensor.Ones(tensor.Shape{256})
	a := d.Forward(x)
	b := d.Forward(x)
	assert.NotEqual(t, a.Data(), b.Data())
}

func TestDropoutInvalidProbability(t *testing.T) {
	assert.Panics(t, func() { NewDropout(1) })
	assert.Panics(t, func() { NewDropout(-0.1) })
}

func TestSequentialStateDictRoundTrip(t *testing.T) {
	model := NewSequential(NewLinear(4, 3), NewReLU(), NewLinear(3, 2))
	state := model.StateDict()
	require.Len(t, state, 4)
	require.Contains(t, state, "0.weight")
	require.Contains(t, state, "2.bias")

	// Snapshot, perturb, restore.
	snapshot := make(map[string]*tensor.Tensor, len(state))
	for k, v := range state {
		snapshot[k] = v.Clone()
	}
	for _, p := range model.Parameters() {
		data := p.Tensor().Data()
		for i := range data {
			data[i] += 7
		}
	}
	require.NoError(t, model.LoadStateDict(snapshot))
	for k, v := range model.StateDict() {
		assert.Equal(t, snapshot[k].Data(), v.Data(), k)
	}
}

func TestSequentialLoadStateDictErrors(t *testing.T) {
	model := NewSequential(NewLinear(2, 2))

	err := model.LoadStateDict(map[string]*tensor.Tensor{})
	assert.Error(t, err)

	bad := map[string]*tensor.Tensor{
		"0.weight": tensor.Zeros(tensor.Shape{3, 3}),
		"0.bias":   tensor.Zeros(tensor.Shape{2}),
	}
	err = model.LoadStateDict(bad)
	assert.Error(t, err)
}

func TestSequentialBackwardOrder(t *testing.T) {
	// With two linear layers, a full forward/backward must produce
	// gradients for all four parameters.
	model := NewSequential(NewLinear(3, 3), NewReLU(), NewLinear(3, 1))
	x := tensor.Ones(tensor.Shape{2, 3})
	out := model.Forward(x)
	require.True(t, out.Shape().Equal(tensor.Shape{2, 1}))

	model.Backward(tensor.Ones(tensor.Shape{2, 1}))
	for _, p := range model.Parameters() {
		require.NotNil(t, p.Grad(), p.Name())
	}
}

func TestResetParameters(t *testing.T) {
	model := NewSequential(NewLinear(8, 8))
	before := model.StateDict()["0.weight"].Clone()
	model.ResetParameters()
	assert.NotEqual(t, before.Data(), model.StateDict()["0.weight"].Data())
}

func TestMSELoss(t *testing.T) {
	c := NewMSELoss()
	pred := mustTensor(t, []float32{1, 2}, tensor.Shape{2})
	target := mustTensor(t, []float32{0, 0}, tensor.Shape{2})

	assert.InDelta(t, 2.5, c.Loss(pred, target), 1e-6)

	grad := c.Grad(pred, target)
	assert.InDelta(t, 1.0, grad.At(0), 1e-6) // 2*1/2
	assert.InDelta(t, 2.0, grad.At(1), 1e-6) // 2*2/2
}

func TestCrossEntropyLoss(t *testing.T) {
	c := NewCrossEntropyLoss()
	// Uniform logits: loss = log(C)
	pred := tensor.Zeros(tensor.Shape{2, 4})
	target := mustTensor(t, []float32{0, 3}, tensor.Shape{2})
	assert.InDelta(t, math.Log(4), c.Loss(pred, target), 1e-5)

	grad := c.Grad(pred, target)
	// (softmax - onehot)/batch: 0.25 everywhere, minus 1 at the target.
	assert.InDelta(t, (0.25-1)/2, grad.At(0, 0), 1e-5)
	assert.InDelta(t, 0.25/2, grad.At(0, 1), 1e-5)
	assert.InDelta(t, (0.25-1)/2, grad.At(1, 3), 1e-5)
}

func TestCrossEntropyGradSumsToZero(t *testing.T) {
	c := NewCrossEntropyLoss()
	pred := tensor.Randn(tensor.Shape{3, 5})
	target := mustTensor(t, []float32{1, 0, 4}, tensor.Shape{3})

	grad := c.Grad(pred, target)
	var sum float64
	for _, v := range grad.Data() {
		sum += float64(v)
	}
	assert.InDelta(t, 0, sum, 1e-5)
}
