// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/icnn/internal/tensor"
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the only device this module computes on.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{16, 1} is a batch of 16 scalars.
type Shape = tensor.Shape

// Tensor is a float64 tensor bound to backend B.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	y := tensor.Ones(tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
type Tensor[B Backend] = tensor.Tensor[B]

// New wraps raw as a Tensor on backend b.
func New[B Backend](raw *RawTensor, b B) *Tensor[B] {
	return tensor.New(raw, b)
}

// FromSlice creates a tensor from data (copied) with the given shape.
func FromSlice[B Backend](data []float64, shape Shape, b B) (*Tensor[B], error) {
	return tensor.FromSlice(data, shape, b)
}

// FromRows creates a [len(rows), len(rows[0])] tensor.
func FromRows[B Backend](rows [][]float64, b B) (*Tensor[B], error) {
	return tensor.FromRows(rows, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	return tensor.Zeros(shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[B] {
	return tensor.Ones(shape, b)
}

// Full creates a tensor filled with value.
func Full[B Backend](shape Shape, value float64, b B) *Tensor[B] {
	return tensor.Full(shape, value, b)
}

// Uniform creates a tensor with entries drawn uniformly from [lo, hi).
func Uniform[B Backend](shape Shape, lo, hi float64, rng *rand.Rand, b B) *Tensor[B] {
	return tensor.Uniform(shape, lo, hi, rng, b)
}

// Rand creates a tensor with entries drawn uniformly from [0, 1).
func Rand[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	return tensor.Rand(shape, rng, b)
}

// Randn creates a tensor with standard normal entries.
func Randn[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	return tensor.Randn(shape, rng, b)
}

// BroadcastShapes returns the broadcast of a and b, whether broadcasting
// is needed, and an error if the shapes are incompatible.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
