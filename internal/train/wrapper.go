// Package train implements the orchestration core: batched training,
// evaluation and Monte-Carlo prediction loops over an opaque model,
// criterion and optimizer, with per-phase metric bookkeeping.
//
// The core is strictly sequential: one batch's forward/backward/update
// completes before the next begins. Worker parallelism lives entirely in
// the data loader.
package train

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kiln-ml/kiln/internal/data"
	"github.com/kiln-ml/kiln/internal/metrics"
	"github.com/kiln-ml/kiln/internal/nn"
	"github.com/kiln-ml/kiln/internal/optim"
	"github.com/kiln-ml/kiln/internal/tensor"
)

// Configuration errors, returned before any compute begins.
var (
	ErrInvalidIterations         = errors.New("iterations must be >= 1")
	ErrInvalidAveragePredictions = errors.New("average predictions must be >= 1")
	ErrInvalidEpochs             = errors.New("epochs must be >= 1")
)

// Model is the contract the orchestration core drives. nn.Sequential
// satisfies it; any other differentiable-model binding can too.
type Model interface {
	// Forward computes the model output for a batch, batch dimension first.
	Forward(input *tensor.Tensor) *tensor.Tensor
	// Backward propagates the loss gradient, accumulating parameter
	// gradients.
	Backward(grad *tensor.Tensor) *tensor.Tensor
	// Parameters returns the trainable parameters.
	Parameters() []*nn.Parameter
	// SetTraining toggles between training and evaluation behavior.
	SetTraining(training bool)
	// StateDict returns the live parameter tensors keyed by name.
	StateDict() map[string]*tensor.Tensor
	// LoadStateDict restores parameters from a state dict.
	LoadStateDict(state map[string]*tensor.Tensor) error
}

// MultiHead is implemented by models whose forward pass produces several
// output tensors. The prediction path applies its reshaping uniformly to
// every head; training and evaluation use the single-tensor Forward.
type MultiHead interface {
	ForwardAll(input *tensor.Tensor) []*tensor.Tensor
}

// Criterion is a stateless scoring function. Grad returns dLoss/dPred,
// which the core feeds into the model's backward pass.
type Criterion interface {
	Loss(pred, target *tensor.Tensor) float64
	Grad(pred, target *tensor.Tensor) *tensor.Tensor
}

// Wrapper orchestrates training, evaluation and prediction for one model
// and criterion. It owns the metric registry; a "loss" metric pair always
// exists.
type Wrapper struct {
	model     Model
	criterion Criterion
	metrics   *metrics.Registry
	log       *slog.Logger
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithLogger sets the structured logging sink. Without one, events are
// discarded; logging never affects control flow or return values.
func WithLogger(log *slog.Logger) Option {
	return func(w *Wrapper) {
		if log != nil {
			w.log = log
		}
	}
}

// New creates a Wrapper around model and criterion.
func New(model Model, criterion Criterion, opts ...Option) *Wrapper {
	w := &Wrapper{
		model:     model,
		criterion: criterion,
		metrics:   metrics.NewRegistry(),
		log:       slog.New(slog.DiscardHandler),
	}
	w.AddMetric("loss", func() metrics.Metric { return metrics.NewLoss() })
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddMetric registers a named accumulator. The factory runs once per phase
// so train and test get isolated instances.
func (w *Wrapper) AddMetric(name string, factory metrics.Factory) {
	w.metrics.Register(name, factory)
}

// Metrics exposes the registry, e.g. to read aggregates after a loop.
func (w *Wrapper) Metrics() *metrics.Registry {
	return w.metrics
}

// Model returns the wrapped model.
func (w *Wrapper) Model() Model {
	return w.model
}

// ResetParameters re-initializes every resettable layer of the wrapped
// model in place, e.g. between active-learning rounds.
func (w *Wrapper) ResetParameters() {
	if r, ok := w.model.(nn.Resettable); ok {
		r.ResetParameters()
	}
}

// TrainOnBatch runs one forward/backward/update cycle on a single batch:
// gradients are zeroed first, exactly one parameter update happens, and
// train metrics are updated with (output, target, loss). The caller is
// responsible for having put the model in training mode (the dataset-level
// loop does this once, not per batch). Returns the batch loss.
func (w *Wrapper) TrainOnBatch(batch data.Batch, optimizer optim.Optimizer, device tensor.Device) (float64, error) {
	input, err := batch.Data.To(device)
	if err != nil {
		return 0, fmt.Errorf("train on batch: %w", err)
	}
	target, err := batch.Target.To(device)
	if err != nil {
		return 0, fmt.Errorf("train on batch: %w", err)
	}

	optimizer.ZeroGrad()
	output := w.model.Forward(input)
	loss := w.criterion.Loss(output, target)
	w.model.Backward(w.criterion.Grad(output, target))
	optimizer.Step()

	w.metrics.Update(output, target, loss, metrics.Train)
	return loss, nil
}

// TestOnBatch evaluates one batch without touching gradients or
// parameters. With averagePredictions == 1 it scores a single forward
// pass; with more, it collapses a multi-sample prediction stack to its
// mean over the trailing iteration axis and scores that point estimate
// (average-then-loss). Test metrics are updated with the prediction used
// for the loss. Returns the batch loss.
func (w *Wrapper) TestOnBatch(batch data.Batch, device tensor.Device, averagePredictions int) (float64, error) {
	if averagePredictions < 1 {
		return 0, fmt.Errorf("test on batch: got %d: %w", averagePredictions, ErrInvalidAveragePredictions)
	}

	input, err := batch.Data.To(device)
	if err != nil {
		return 0, fmt.Errorf("test on batch: %w", err)
	}
	target, err := batch.Target.To(device)
	if err != nil {
		return 0, fmt.Errorf("test on batch: %w", err)
	}

	var pred *tensor.Tensor
	if averagePredictions == 1 {
		pred = w.model.Forward(input)
	} else {
		stack, err := w.PredictOnBatch(input, averagePredictions, device)
		if err != nil {
			return 0, err
		}
		mean := meanOverIterations(stack)
		single, ok := mean.(*tensor.Tensor)
		if !ok {
			return 0, fmt.Errorf("test on batch: criterion requires a single-tensor prediction, model produced %T", stack)
		}
		pred = single
	}

	loss := w.criterion.Loss(pred, target)
	w.metrics.Update(pred, target, loss, metrics.Test)
	return loss, nil
}
