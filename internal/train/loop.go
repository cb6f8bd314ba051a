package train

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/kiln-ml/kiln/internal/data"
	"github.com/kiln-ml/kiln/internal/metrics"
	"github.com/kiln-ml/kiln/internal/optim"
	"github.com/kiln-ml/kiln/internal/tensor"
)

// LoopConfig configures a dataset-level loop.
type LoopConfig struct {
	BatchSize int
	Epochs    int
	// Workers is forwarded to the data loader's prefetch pipeline.
	Workers int
	// Device is where batches are placed before each step. Transfer
	// failures abort the loop and propagate unmodified.
	Device tensor.Device
	// Collate overrides the loader's default sample merging.
	Collate data.Collate
	// Seed fixes the training shuffle order. Zero seeds randomly.
	Seed int64
}

// History records, per epoch of a joint train/test loop, every metric's
// aggregate keyed by its flat "phase_name" form.
type History []map[string]float64

// TrainOnDataset trains for cfg.Epochs epochs, shuffling every pass.
// Train metrics reset at each epoch start; the per-epoch aggregate train
// loss is recorded. After all epochs, gradients are zeroed once more so no
// partially-accumulated state survives the loop. Returns the ordered
// per-epoch train loss history.
func (w *Wrapper) TrainOnDataset(dataset data.Dataset, optimizer optim.Optimizer, cfg LoopConfig) ([]float64, error) {
	if cfg.Epochs < 1 {
		return nil, fmt.Errorf("train on dataset: got %d: %w", cfg.Epochs, ErrInvalidEpochs)
	}
	loader, err := data.NewLoader(dataset, data.LoaderConfig{
		BatchSize: cfg.BatchSize,
		Shuffle:   true, // always on for training
		Workers:   cfg.Workers,
		Collate:   cfg.Collate,
		Seed:      cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("train on dataset: %w", err)
	}

	runID := uuid.NewString()
	w.log.Info("starting training",
		"run_id", runID, "epochs", cfg.Epochs, "dataset", dataset.Len())

	w.model.SetTraining(true)
	history := make([]float64, 0, cfg.Epochs)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		w.metrics.Reset(metrics.Train)

		var stepErr error
		for batch := range loader.Batches() {
			if _, stepErr = w.TrainOnBatch(batch, optimizer, cfg.Device); stepErr != nil {
				break
			}
		}
		if stepErr != nil {
			return nil, stepErr
		}

		epochLoss, err := w.metrics.Value(metrics.Train, "loss")
		if err != nil {
			return nil, err
		}
		history = append(history, epochLoss)
	}

	// Assert that the gradient is flushed, whatever the last step did.
	optimizer.ZeroGrad()

	w.log.Info("training complete",
		"run_id", runID, "train_loss", history[len(history)-1])
	return history, nil
}

// TestOnDataset evaluates the model over the full dataset in order (no
// shuffling), resetting test metrics first, and returns the aggregate
// test loss. An empty dataset is a graceful no-op returning the reset
// aggregate.
func (w *Wrapper) TestOnDataset(dataset data.Dataset, cfg LoopConfig, averagePredictions int) (float64, error) {
	if averagePredictions < 1 {
		return 0, fmt.Errorf("test on dataset: got %d: %w", averagePredictions, ErrInvalidAveragePredictions)
	}
	loader, err := data.NewLoader(dataset, data.LoaderConfig{
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
		Collate:   cfg.Collate,
	})
	if err != nil {
		return 0, fmt.Errorf("test on dataset: %w", err)
	}

	w.log.Info("starting evaluating", "dataset", dataset.Len())
	w.model.SetTraining(false)
	w.metrics.Reset(metrics.Test)

	var stepErr error
	for batch := range loader.Batches() {
		if _, stepErr = w.TestOnBatch(batch, cfg.Device, averagePredictions); stepErr != nil {
			break
		}
	}
	if stepErr != nil {
		return 0, stepErr
	}

	testLoss, err := w.metrics.Value(metrics.Test, "loss")
	if err != nil {
		return 0, err
	}
	w.log.Info("evaluation complete", "test_loss", testLoss)
	return testLoss, nil
}

// TrainAndTestOnDatasets alternates one training epoch and one evaluation
// pass for cfg.Epochs rounds, snapshotting every metric value per round.
// With returnBestWeights set, it deep-copies the model state whenever the
// epoch's test loss strictly improves on the best seen so far; the initial
// best is +Inf so the first epoch always qualifies, and ties keep the
// earliest snapshot. Returns the history and, when requested, the best
// weights.
func (w *Wrapper) TrainAndTestOnDatasets(trainSet, testSet data.Dataset, optimizer optim.Optimizer, cfg LoopConfig, returnBestWeights bool) (History, map[string]*tensor.Tensor, error) {
	if cfg.Epochs < 1 {
		return nil, nil, fmt.Errorf("train and test: got %d: %w", cfg.Epochs, ErrInvalidEpochs)
	}

	epochCfg := cfg
	epochCfg.Epochs = 1

	bestLoss := math.Inf(1)
	var bestWeights map[string]*tensor.Tensor
	history := make(History, 0, cfg.Epochs)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if _, err := w.TrainOnDataset(trainSet, optimizer, epochCfg); err != nil {
			return nil, nil, err
		}
		testLoss, err := w.TestOnDataset(testSet, epochCfg, 1)
		if err != nil {
			return nil, nil, err
		}
		history = append(history, w.metrics.Snapshot())

		if returnBestWeights && testLoss < bestLoss {
			bestLoss = testLoss
			bestWeights = cloneStateDict(w.model.StateDict())
		}
	}
	return history, bestWeights, nil
}

// cloneStateDict deep-copies a state dict so the snapshot cannot alias the
// live model's mutable parameters.
func cloneStateDict(state map[string]*tensor.Tensor) map[string]*tensor.Tensor {
	out := make(map[string]*tensor.Tensor, len(state))
	for name, t := range state {
		out[name] = t.Clone()
	}
	return out
}
