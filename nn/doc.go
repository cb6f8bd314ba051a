// Copyright 2026 Kiln ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and loss functions.
//
// # Overview
//
// This package contains:
//   - Module interface: the forward/backward contract every layer meets
//   - Layers: Linear, ReLU, Sigmoid, Dropout (including Monte-Carlo
//     dropout, which stays stochastic in evaluation mode)
//   - Container: Sequential, with state dict save/restore
//   - Losses: MSELoss, CrossEntropyLoss
//
// # Basic Usage
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128),
//	    nn.NewReLU(),
//	    nn.NewMCDropout(0.5),
//	    nn.NewLinear(128, 10),
//	)
//	criterion := nn.NewCrossEntropyLoss()
//
//	output := model.Forward(x)
//	loss := criterion.Loss(output, y)
//	model.Backward(criterion.Grad(output, y))
package nn
