// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides float64 tensors for building input-convex networks.
//
// # Overview
//
// A Tensor pairs a RawTensor (shape plus row-major data) with the Backend
// that computes on it. This package provides:
//   - Tensor[B]: high-level tensor with broadcasting arithmetic
//   - RawTensor: low-level storage used by backends and gradient maps
//   - Backend: interface implemented by backend/cpu and autodiff
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/icnn/backend/cpu"
//	    "github.com/born-ml/icnn/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones(tensor.Shape{1, 3}, backend)
//	    z := x.Add(y) // [2, 3], y broadcast over rows
//	}
//
// # Broadcasting
//
// Binary operations follow NumPy rules: shapes are aligned from the right
// and a dimension of size 1 stretches to match the other operand.
package tensor
