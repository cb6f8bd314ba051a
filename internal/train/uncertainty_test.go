package train

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/internal/tensor"
)

func TestVariance(t *testing.T) {
	// Two samples, two outputs, two iterations.
	pred := mustTensor(t, []float32{
		1, 3, // var 1
		2, 2, // var 0
		0, 4, // var 4
		5, 5, // var 0
	}, tensor.Shape{2, 2, 2})

	v := Variance(pred)
	require.Equal(t, tensor.Shape{2, 2}, v.Shape())
	assert.InDelta(t, 1.0, v.At(0, 0), 1e-6)
	assert.InDelta(t, 0.0, v.At(0, 1), 1e-6)
	assert.InDelta(t, 4.0, v.At(1, 0), 1e-6)
	assert.InDelta(t, 0.0, v.At(1, 1), 1e-6)
}

func TestVarianceZeroForDeterministicStack(t *testing.T) {
	pred := tensor.Full(tensor.Shape{3, 4, 7}, 2.5)
	v := Variance(pred)
	for _, x := range v.Data() {
		assert.InDelta(t, 0.0, x, 1e-6)
	}
}

func TestEntropy(t *testing.T) {
	// Sample 0: uniform over two classes in both iterations -> ln 2.
	// Sample 1: one-hot in both iterations -> 0.
	pred := mustTensor(t, []float32{
		0.5, 0.5,
		0.5, 0.5,
		1, 1,
		0, 0,
	}, tensor.Shape{2, 2, 2})

	h := Entropy(pred)
	require.Equal(t, tensor.Shape{2}, h.Shape())
	assert.InDelta(t, math.Log(2), float64(h.At(0)), 1e-6)
	assert.InDelta(t, 0.0, float64(h.At(1)), 1e-6)
}

func TestEntropyDisagreementBeatsAgreement(t *testing.T) {
	// Iterations that disagree about the class average to a flatter
	// distribution and must score higher than unanimous ones.
	disagree := mustTensor(t, []float32{
		1, 0,
		0, 1,
	}, tensor.Shape{1, 2, 2})
	agree := mustTensor(t, []float32{
		1, 1,
		0, 0,
	}, tensor.Shape{1, 2, 2})

	assert.Greater(t, Entropy(disagree).At(0), Entropy(agree).At(0))
}
