package train

import (
	"fmt"
	"iter"

	"github.com/kiln-ml/kiln/internal/data"
	"github.com/kiln-ml/kiln/internal/iterutils"
	"github.com/kiln-ml/kiln/internal/tensor"
)

// PredictOnBatch runs the model `iterations` times on every sample of the
// batch in a single forward pass: the batch is replicated along a new
// leading axis, flattened into one batch of size N*iterations, and the
// output is reshaped to [N, ...outputDims, iterations].
//
// The trailing iteration axis is load-bearing: variance and entropy
// estimators assume it. Per-pass stochasticity inside the model (e.g.
// Monte-Carlo dropout) is what makes the replicas differ.
//
// Returns a single tensor, or a []*tensor.Tensor for MultiHead models;
// every leaf is detached.
func (w *Wrapper) PredictOnBatch(input *tensor.Tensor, iterations int, device tensor.Device) (any, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("predict on batch: got %d: %w", iterations, ErrInvalidIterations)
	}
	input, err := input.To(device)
	if err != nil {
		return nil, fmt.Errorf("predict on batch: %w", err)
	}

	batchSize := input.Shape()[0]
	replicas := make([]*tensor.Tensor, iterations)
	for i := range replicas {
		replicas[i] = input
	}
	flatShape := append([]int{iterations * batchSize}, input.Shape()[1:]...)
	flat := tensor.Stack(replicas).Reshape(flatShape...)

	var out any
	if mh, ok := w.model.(MultiHead); ok {
		out = mh.ForwardAll(flat)
	} else {
		out = w.model.Forward(flat)
	}

	return iterutils.MapOnTensors(out, func(o *tensor.Tensor) *tensor.Tensor {
		dims := o.Shape()[1:]
		unflat := o.Reshape(append([]int{iterations, batchSize}, dims...)...)

		// [iterations, N, d...] -> [N, d..., iterations]
		axes := make([]int, 0, len(dims)+2)
		for i := 1; i <= len(dims)+1; i++ {
			axes = append(axes, i)
		}
		axes = append(axes, 0)
		return unflat.Permute(axes...).Detach()
	}), nil
}

// meanOverIterations collapses the trailing iteration axis of every leaf
// to its mean.
func meanOverIterations(pred any) any {
	return iterutils.MapOnTensors(pred, func(t *tensor.Tensor) *tensor.Tensor {
		return t.Mean(len(t.Shape()) - 1)
	})
}

// PredictOnDatasetSeq lazily yields one multi-sample prediction per batch,
// so the full dataset's predictions never need to be resident at once.
// Every leaf is detached and host-resident; with half set, values are
// additionally rounded through IEEE half precision. An empty dataset
// yields nothing and never invokes the model.
func (w *Wrapper) PredictOnDatasetSeq(dataset data.Dataset, cfg LoopConfig, iterations int, half bool) (iter.Seq2[any, error], error) {
	if iterations < 1 {
		return nil, fmt.Errorf("predict on dataset: got %d: %w", iterations, ErrInvalidIterations)
	}
	loader, err := data.NewLoader(dataset, data.LoaderConfig{
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
		Collate:   cfg.Collate,
	})
	if err != nil {
		return nil, fmt.Errorf("predict on dataset: %w", err)
	}

	seq := func(yield func(any, error) bool) {
		if dataset.Len() == 0 {
			return
		}
		w.model.SetTraining(false)
		w.log.Info("starting prediction", "dataset", dataset.Len(), "iterations", iterations)

		batches := loader.Len()
		done := 0
		for batch := range loader.Batches() {
			pred, err := w.PredictOnBatch(batch.Data, iterations, cfg.Device)
			if err != nil {
				yield(nil, err)
				return
			}
			pred, err = iterutils.MapOnTensorsErr(pred, func(t *tensor.Tensor) (*tensor.Tensor, error) {
				host, err := t.To(tensor.CPU)
				if err != nil {
					return nil, err
				}
				if half {
					host = roundHalf(host)
				}
				return host, nil
			})
			if !yield(pred, err) {
				return
			}
			if err != nil {
				return
			}
			done++
			w.log.Debug("prediction progress", "batch", done, "batches", batches)
		}
	}
	return seq, nil
}

// roundHalf sheds precision by rounding every value through float16.
func roundHalf(t *tensor.Tensor) *tensor.Tensor {
	out := t.Clone()
	data := out.Data()
	for i, h := range t.Half() {
		data[i] = h.Float32()
	}
	return out
}

// PredictOnDataset is the eager form of PredictOnDatasetSeq: it consumes
// the whole sequence and concatenates the per-batch results along the
// sample axis. Single-tensor models produce one [n, ...outputDims,
// iterations] tensor; MultiHead models produce a []*tensor.Tensor with
// each head concatenated independently. An empty dataset returns nil.
func (w *Wrapper) PredictOnDataset(dataset data.Dataset, cfg LoopConfig, iterations int, half bool) (any, error) {
	seq, err := w.PredictOnDatasetSeq(dataset, cfg, iterations, half)
	if err != nil {
		return nil, err
	}

	var single []*tensor.Tensor
	var heads [][]*tensor.Tensor
	for pred, err := range seq {
		if err != nil {
			return nil, err
		}
		switch p := pred.(type) {
		case *tensor.Tensor:
			single = append(single, p)
		case []*tensor.Tensor:
			if heads == nil {
				heads = make([][]*tensor.Tensor, len(p))
			}
			for i, t := range p {
				heads[i] = append(heads[i], t)
			}
		default:
			return nil, fmt.Errorf("predict on dataset: unsupported prediction type %T", pred)
		}
	}

	switch {
	case single != nil:
		return tensor.Concat(single, 0), nil
	case heads != nil:
		out := make([]*tensor.Tensor, len(heads))
		for i, h := range heads {
			out[i] = tensor.Concat(h, 0)
		}
		return out, nil
	default:
		return nil, nil
	}
}
