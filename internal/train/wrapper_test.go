package train

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/internal/data"
	"github.com/kiln-ml/kiln/internal/metrics"
	"github.com/kiln-ml/kiln/internal/nn"
	"github.com/kiln-ml/kiln/internal/optim"
	"github.com/kiln-ml/kiln/internal/tensor"
)

func mustTensor(t *testing.T, values []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	out, err := tensor.FromSlice(values, shape)
	require.NoError(t, err)
	return out
}

// planeModel maps [b, c, h, w] to [b, outC, h, w] with
// out[b, o, h, w] = in[b, 0, h, w] + o. Deterministic, no parameters.
type planeModel struct {
	outC  int
	calls int
}

func (m *planeModel) Forward(in *tensor.Tensor) *tensor.Tensor {
	m.calls++
	s := in.Shape()
	b, h, w := s[0], s[2], s[3]
	out := tensor.Zeros(tensor.Shape{b, m.outC, h, w})
	for bi := 0; bi < b; bi++ {
		for o := 0; o < m.outC; o++ {
			for hi := 0; hi < h; hi++ {
				for wi := 0; wi < w; wi++ {
					out.Set(in.At(bi, 0, hi, wi)+float32(o), bi, o, hi, wi)
				}
			}
		}
	}
	return out
}

func (m *planeModel) Backward(grad *tensor.Tensor) *tensor.Tensor { return grad }

func (m *planeModel) Parameters() []*nn.Parameter { return nil }

func (m *planeModel) SetTraining(bool) {}

func (m *planeModel) StateDict() map[string]*tensor.Tensor { return map[string]*tensor.Tensor{} }

func (m *planeModel) LoadStateDict(map[string]*tensor.Tensor) error { return nil }

func TestPredictOnBatchShapeAndLayout(t *testing.T) {
	model := &planeModel{outC: 2}
	w := New(model, nn.NewMSELoss())

	input := tensor.Randn(tensor.Shape{4, 3, 8, 8})
	out, err := w.PredictOnBatch(input, 5, tensor.CPU)
	require.NoError(t, err)

	pred, ok := out.(*tensor.Tensor)
	require.True(t, ok)
	assert.Equal(t, tensor.Shape{4, 2, 8, 8, 5}, pred.Shape())

	// One forward over the replicated batch, not one per iteration.
	assert.Equal(t, 1, model.calls)

	// The model is deterministic, so the trailing axis must be constant
	// and match a direct forward pass.
	direct := model.Forward(input)
	for _, idx := range [][]int{{0, 0, 0, 0}, {1, 1, 3, 2}, {3, 1, 7, 7}} {
		want := direct.At(idx...)
		for it := 0; it < 5; it++ {
			got := pred.At(append(append([]int{}, idx...), it)...)
			assert.InDelta(t, want, got, 1e-6)
		}
	}
}

func TestPredictOnBatchInvalidIterations(t *testing.T) {
	w := New(&planeModel{outC: 1}, nn.NewMSELoss())
	input := tensor.Ones(tensor.Shape{2, 1, 2, 2})

	for _, iterations := range []int{0, -3} {
		_, err := w.PredictOnBatch(input, iterations, tensor.CPU)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidIterations))
	}
}

func TestPredictOnBatchStochasticUnderMCDropout(t *testing.T) {
	model := nn.NewSequential(nn.NewMCDropout(0.5))
	w := New(model, nn.NewMSELoss())
	model.SetTraining(false) // MC dropout stays stochastic in eval mode

	out, err := w.PredictOnBatch(tensor.Ones(tensor.Shape{1, 256}), 2, tensor.CPU)
	require.NoError(t, err)
	pred := out.(*tensor.Tensor)
	require.Equal(t, tensor.Shape{1, 256, 2}, pred.Shape())

	first := make([]float32, 256)
	second := make([]float32, 256)
	for i := 0; i < 256; i++ {
		first[i] = pred.At(0, i, 0)
		second[i] = pred.At(0, i, 1)
	}
	assert.NotEqual(t, first, second)
}

func TestTrainOnBatchUpdatesParameters(t *testing.T) {
	model := nn.NewSequential(nn.NewLinear(2, 1))
	w := New(model, nn.NewMSELoss())
	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})

	before := make(map[string]*tensor.Tensor)
	for name, p := range model.StateDict() {
		before[name] = p.Clone()
	}

	batch := data.Batch{
		Data:   mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}),
		Target: mustTensor(t, []float32{5, 6}, tensor.Shape{2, 1}),
	}
	loss, err := w.TrainOnBatch(batch, opt, tensor.CPU)
	require.NoError(t, err)
	assert.Greater(t, loss, 0.0)

	changed := false
	for name, p := range model.StateDict() {
		if !assert.ObjectsAreEqual(before[name].Data(), p.Data()) {
			changed = true
		}
	}
	assert.True(t, changed, "parameters should move after one step")

	got, err := w.Metrics().Value(metrics.Train, "loss")
	require.NoError(t, err)
	assert.InDelta(t, loss, got, 1e-9)
}

func TestTestOnBatchLeavesParametersAlone(t *testing.T) {
	model := nn.NewSequential(nn.NewLinear(2, 1))
	w := New(model, nn.NewMSELoss())

	before := make(map[string]*tensor.Tensor)
	for name, p := range model.StateDict() {
		before[name] = p.Clone()
	}

	batch := data.Batch{
		Data:   mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}),
		Target: mustTensor(t, []float32{5, 6}, tensor.Shape{2, 1}),
	}
	_, err := w.TestOnBatch(batch, tensor.CPU, 1)
	require.NoError(t, err)

	for name, p := range model.StateDict() {
		assert.Equal(t, before[name].Data(), p.Data(), name)
	}
}

func TestTestOnBatchDeterministicAveragingMatchesSinglePass(t *testing.T) {
	// Without stochastic layers, averaging N identical predictions must
	// score identically to one pass.
	w := New(&planeModel{outC: 1}, nn.NewMSELoss())
	batch := data.Batch{
		Data:   tensor.Randn(tensor.Shape{3, 1, 2, 2}),
		Target: tensor.Zeros(tensor.Shape{3, 1, 2, 2}),
	}

	single, err := w.TestOnBatch(batch, tensor.CPU, 1)
	require.NoError(t, err)
	averaged, err := w.TestOnBatch(batch, tensor.CPU, 4)
	require.NoError(t, err)
	assert.InDelta(t, single, averaged, 1e-5)
}

func TestTestOnBatchInvalidAveragePredictions(t *testing.T) {
	w := New(&planeModel{outC: 1}, nn.NewMSELoss())
	batch := data.Batch{
		Data:   tensor.Ones(tensor.Shape{1, 1, 2, 2}),
		Target: tensor.Zeros(tensor.Shape{1, 1, 2, 2}),
	}
	_, err := w.TestOnBatch(batch, tensor.CPU, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAveragePredictions))
}
