// Copyright 2026 Kiln ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package metrics provides phase-separated metric accumulation for
// training loops: every registered metric exists once for the train phase
// and once for the test phase, and the loops reset and update them
// independently.
package metrics

import (
	"github.com/kiln-ml/kiln/internal/metrics"
)

// Metric accumulates a value over batches.
type Metric = metrics.Metric

// LossMetric is updated with the batch loss.
type LossMetric = metrics.LossMetric

// PredictionMetric is updated with model output and target.
type PredictionMetric = metrics.PredictionMetric

// Factory creates a fresh metric instance per phase.
type Factory = metrics.Factory

// Phase tags a metric instance as training or evaluation.
type Phase = metrics.Phase

// Phases.
const (
	Train = metrics.Train
	Test  = metrics.Test
)

// Registry holds all metric instances for one training run.
type Registry = metrics.Registry

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return metrics.NewRegistry()
}

// Loss tracks a running mean of batch losses.
type Loss = metrics.Loss

// NewLoss creates a loss accumulator.
func NewLoss() *Loss {
	return metrics.NewLoss()
}

// Accuracy tracks top-1 classification accuracy against class-index
// targets.
type Accuracy = metrics.Accuracy

// NewAccuracy creates an accuracy accumulator.
func NewAccuracy() *Accuracy {
	return metrics.NewAccuracy()
}
