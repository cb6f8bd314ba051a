// Copyright 2026 Kiln ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train orchestrates training, evaluation and Monte-Carlo
// prediction for a model/criterion pair.
//
// # Overview
//
// A Wrapper drives the batch and dataset loops:
//   - TrainOnBatch / TestOnBatch: single-batch step and evaluation
//   - TrainOnDataset / TestOnDataset: epoch loops with metric bookkeeping
//   - TrainAndTestOnDatasets: alternating loop with best-weight tracking
//   - PredictOnBatch / PredictOnDataset: repeated stochastic predictions
//     stacked along a trailing iteration axis
//
// # Basic Usage
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128),
//	    nn.NewReLU(),
//	    nn.NewMCDropout(0.5),
//	    nn.NewLinear(128, 10),
//	)
//	wrapper := train.New(model, nn.NewCrossEntropyLoss())
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	history, err := wrapper.TrainOnDataset(trainSet, optimizer, train.LoopConfig{
//	    BatchSize: 32,
//	    Epochs:    10,
//	})
//
// # Monte-Carlo Prediction
//
// With stochastic layers such as Monte-Carlo dropout, repeated predictions
// disagree, and the spread measures uncertainty:
//
//	pred, err := wrapper.PredictOnDataset(pool, train.LoopConfig{BatchSize: 32}, 20, false)
//	scores := train.Entropy(pred.(*tensor.Tensor))
package train
