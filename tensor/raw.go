// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/icnn/internal/tensor"

// RawTensor is the low-level tensor representation: a shape, row-major
// strides, a device and a float64 buffer.
//
// Gradient maps returned by autodiff are keyed by *RawTensor.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.CPU)
//	raw.Fill(1)
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-filled RawTensor.
func NewRaw(shape Shape, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, device)
}

// RawFromSlice wraps data (copied) as a RawTensor of the given shape.
func RawFromSlice(data []float64, shape Shape, device Device) (*RawTensor, error) {
	return tensor.RawFromSlice(data, shape, device)
}
