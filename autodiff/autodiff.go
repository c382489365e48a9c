// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// New wraps any backend in a decorator that records every operation on a
// gradient tape while recording is enabled. Backward walks the tape from a
// root tensor and returns gradients keyed by *tensor.RawTensor.
//
// Example:
//
//	import (
//	    "github.com/born-ml/icnn/autodiff"
//	    "github.com/born-ml/icnn/backend/cpu"
//	    "github.com/born-ml/icnn/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    x := tensor.Ones(tensor.Shape{2, 3}, backend)
//	    y := x.Mul(x).Sum()
//
//	    grads := autodiff.Backward(y, backend)
//	    _ = grads[x.Raw()] // 2x
//	}
//
// Code that mutates weights directly, such as a projection after an
// optimizer step, runs inside Backend.NoGrad so nothing is recorded.
package autodiff

import (
	"github.com/born-ml/icnn/internal/autodiff"
	"github.com/born-ml/icnn/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of t via backpropagation, seeding t with ones.
func Backward[B BackwardCapable](t *tensor.Tensor[B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
