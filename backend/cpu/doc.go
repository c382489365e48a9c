// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend.
//
// Kernels are written in pure Go on top of gonum: matrix products go
// through gonum/mat and same-shape element-wise work through gonum/floats.
// Broadcasting operands fall back to a strided loop.
//
// The CPU backend also implements the activation capabilities (ReLU,
// LeakyReLU, Softplus, Sigmoid, Heaviside) that nn layers discover by
// interface assertion.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Ones(tensor.Shape{4, 2}, backend)
//	y := x.MatMul(x.T()) // [4, 4]
package cpu
