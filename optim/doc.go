// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/icnn/icnn"
//	    "github.com/born-ml/icnn/optim"
//	)
//
//	func main() {
//	    optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 1e-4}, backend)
//
//	    grads := autodiff.Backward(loss, backend)
//	    optimizer.Step(grads)
//	    projector.Project(model) // keep z-path weights non-negative
//	}
//
// Optimizers never look at weight constraints; projecting after Step is
// the caller's job (see icnn.Projector and the train package).
package optim
