package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// sequentialDataset returns samples whose single input value is the index.
func sequentialDataset(t *testing.T, n int) *TensorDataset {
	t.Helper()
	inputs := make([]*tensor.Tensor, n)
	targets := make([]*tensor.Tensor, n)
	for i := 0; i < n; i++ {
		x, err := tensor.FromSlice([]float32{float32(i)}, tensor.Shape{1})
		require.NoError(t, err)
		y, err := tensor.FromSlice([]float32{float32(i % 2)}, tensor.Shape{})
		require.NoError(t, err)
		inputs[i] = x
		targets[i] = y
	}
	ds, err := NewTensorDataset(inputs, targets)
	require.NoError(t, err)
	return ds
}

func collect(l *Loader) []Batch {
	var batches []Batch
	for b := range l.Batches() {
		batches = append(batches, b)
	}
	return batches
}

func TestLoaderSequentialOrder(t *testing.T) {
	ds := sequentialDataset(t, 10)
	l, err := NewLoader(ds, LoaderConfig{BatchSize: 4})
	require.NoError(t, err)

	batches := collect(l)
	require.Len(t, batches, 3)
	assert.True(t, batches[0].Data.Shape().Equal(tensor.Shape{4, 1}))
	assert.True(t, batches[2].Data.Shape().Equal(tensor.Shape{2, 1})) // remainder
	assert.Equal(t, []float32{0, 1, 2, 3}, batches[0].Data.Data())
	assert.Equal(t, []float32{8, 9}, batches[2].Data.Data())
}

func TestLoaderShuffleIsPermutation(t *testing.T) {
	ds := sequentialDataset(t, 16)
	l, err := NewLoader(ds, LoaderConfig{BatchSize: 4, Shuffle: true, Seed: 1})
	require.NoError(t, err)

	seen := map[float32]bool{}
	order := []float32{}
	for _, b := range collect(l) {
		for _, v := range b.Data.Data() {
			seen[v] = true
			order = append(order, v)
		}
	}
	assert.Len(t, seen, 16)
	assert.NotEqual(t, []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, order)
}

func TestLoaderRestartable(t *testing.T) {
	ds := sequentialDataset(t, 6)
	l, err := NewLoader(ds, LoaderConfig{BatchSize: 2})
	require.NoError(t, err)

	first := collect(l)
	second := collect(l)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Data.Data(), second[i].Data.Data())
	}
}

func TestLoaderWorkersMatchSequential(t *testing.T) {
	ds := sequentialDataset(t, 23)
	seq, err := NewLoader(ds, LoaderConfig{BatchSize: 4})
	require.NoError(t, err)
	par, err := NewLoader(ds, LoaderConfig{BatchSize: 4, Workers: 4})
	require.NoError(t, err)

	a := collect(seq)
	b := collect(par)
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Data.Data(), b[i].Data.Data(), "batch %d", i)
		assert.Equal(t, a[i].Target.Data(), b[i].Target.Data(), "batch %d", i)
	}
}

func TestLoaderEarlyExitWithWorkers(t *testing.T) {
	ds := sequentialDataset(t, 100)
	l, err := NewLoader(ds, LoaderConfig{BatchSize: 2, Workers: 3})
	require.NoError(t, err)

	count := 0
	for range l.Batches() {
		count++
		if count == 5 {
			break
		}
	}
	assert.Equal(t, 5, count)

	// A fresh pass still works after abandoning the previous one.
	assert.Len(t, collect(l), 50)
}

func TestLoaderEmptyDataset(t *testing.T) {
	ds := sequentialDataset(t, 0)
	l, err := NewLoader(ds, LoaderConfig{BatchSize: 4, Workers: 2})
	require.NoError(t, err)
	assert.Empty(t, collect(l))
}

func TestLoaderInvalidBatchSize(t *testing.T) {
	ds := sequentialDataset(t, 4)
	_, err := NewLoader(ds, LoaderConfig{BatchSize: 0})
	assert.Error(t, err)
}

func TestLoaderCustomCollate(t *testing.T) {
	ds := sequentialDataset(t, 4)
	called := 0
	collate := func(inputs, targets []*tensor.Tensor) Batch {
		called++
		return DefaultCollate(inputs, targets)
	}
	l, err := NewLoader(ds, LoaderConfig{BatchSize: 2, Collate: collate})
	require.NoError(t, err)

	collect(l)
	assert.Equal(t, 2, called)
}

func TestSubset(t *testing.T) {
	ds := sequentialDataset(t, 10)
	sub, err := NewSubset(ds, []int{7, 2, 9})
	require.NoError(t, err)
	require.Equal(t, 3, sub.Len())

	x, _ := sub.At(0)
	assert.Equal(t, float32(7), x.At(0))

	_, err = NewSubset(ds, []int{10})
	assert.Error(t, err)
}

func TestTensorDatasetLenMismatch(t *testing.T) {
	x := tensor.Zeros(tensor.Shape{1})
	_, err := NewTensorDataset([]*tensor.Tensor{x}, nil)
	assert.Error(t, err)
}
