// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers and building blocks of input-convex
// networks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear (optionally without bias)
//   - Activations: Softplus, ReLU, LeakyReLU, all convex and non-decreasing
//   - Loss functions: MSELoss, L1Loss
//   - Utilities: Module and Stateful interfaces, Parameter
//   - Initialization: Xavier, Zeros
//   - Checkpoints: safetensors files holding model and optimizer state
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/icnn/autodiff"
//	    "github.com/born-ml/icnn/backend/cpu"
//	    "github.com/born-ml/icnn/nn"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    rng := rand.New(rand.NewSource(0))
//
//	    layer := nn.NewLinear(4, 8, backend, rng)
//	    act := nn.NewSoftplus[*autodiff.Backend[*cpu.Backend]]()
//	    out := act.Forward(layer.Forward(input))
//	}
//
// Activations need backend support, which autodiff and cpu backends
// provide; on an autodiff backend every activation except the unit step
// used by ReLU derivatives is recorded.
package nn
