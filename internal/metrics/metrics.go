// Package metrics implements the named accumulators the training and
// evaluation loops update once per batch, partitioned into train and test
// phases.
package metrics

import (
	"github.com/kiln-ml/kiln/internal/tensor"
)

// Metric is a stateful accumulator tracking a running statistic across one
// phase of a loop.
type Metric interface {
	// Reset clears the accumulator to its initial state.
	Reset()
	// Value returns the current aggregate.
	Value() float64
}

// LossMetric accumulates scalar loss values.
type LossMetric interface {
	Metric
	UpdateLoss(loss float64)
}

// PredictionMetric accumulates (prediction, target) pairs.
type PredictionMetric interface {
	Metric
	Update(pred, target *tensor.Tensor)
}

// Factory creates a fresh accumulator instance. The registry calls it once
// per phase so the phases never share state.
type Factory func() Metric

// Loss tracks the running mean of scalar loss values.
type Loss struct {
	sum   float64
	count int
}

// NewLoss creates a running-mean loss accumulator.
func NewLoss() *Loss {
	return &Loss{}
}

func (l *Loss) Reset() {
	l.sum = 0
	l.count = 0
}

func (l *Loss) UpdateLoss(loss float64) {
	l.sum += loss
	l.count++
}

// Value returns the mean of all updates since the last reset, or 0 when
// nothing has been accumulated.
func (l *Loss) Value() float64 {
	if l.count == 0 {
		return 0
	}
	return l.sum / float64(l.count)
}

// Accuracy tracks the fraction of predictions whose argmax over the class
// axis matches the target class index.
type Accuracy struct {
	correct int
	total   int
}

// NewAccuracy creates an accuracy accumulator. Predictions are
// [batch, classes] scores; targets hold one class index per sample.
func NewAccuracy() *Accuracy {
	return &Accuracy{}
}

func (a *Accuracy) Reset() {
	a.correct = 0
	a.total = 0
}

func (a *Accuracy) Update(pred, target *tensor.Tensor) {
	predicted := pred.Argmax(len(pred.Shape()) - 1)
	targets := target.Data()
	for i, p := range predicted {
		if p == int(targets[i]) {
			a.correct++
		}
		a.total++
	}
}

func (a *Accuracy) Value() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.total)
}
