// Package optim implements optimization algorithms over nn parameters.
//
// Optimizers are bound to a fixed parameter list at construction and update
// those parameters in place from their accumulated gradients. Parameters
// without a gradient (not touched by the last backward pass) are skipped.
package optim

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter with a gradient.
	Step()

	// ZeroGrad clears all parameter gradients. Called before each training
	// step, and once more after a training loop as a safety net.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}
