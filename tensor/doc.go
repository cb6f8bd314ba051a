// Copyright 2026 Kiln ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 tensor type used throughout
// Kiln.
//
// # Overview
//
// Tensors are row-major, CPU-resident float32 arrays with an explicit
// shape. The package covers:
//   - Creation: Zeros, Ones, Full, Randn, FromSlice
//   - Elementwise math: Add, Sub, Mul, Div, scalar variants
//   - Linear algebra: MatMul, T
//   - Shape manipulation: Reshape, Permute, Stack, Concat, Mean, Argmax
//   - Device placement: To, with explicit unavailable-device errors
//
// # Basic Usage
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	y := x.MatMul(x.T())
//	fmt.Println(y.Shape()) // [2 2]
package tensor
