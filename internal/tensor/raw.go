package tensor

import (
	"fmt"
	"math"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level tensor representation: a dense, row-major
// float64 buffer plus its shape.
//
// RawTensor pointers are the identity the autodiff tape keys gradients on,
// so operations always allocate a fresh RawTensor for their result.
type RawTensor struct {
	data   []float64
	shape  Shape
	stride []int
	device Device
}

// NewRaw creates a new zero-filled RawTensor with the given shape.
func NewRaw(shape Shape, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]float64, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		device: device,
	}, nil
}

// MustRaw is NewRaw for shapes that are known to be valid.
// Panics on an invalid shape.
func MustRaw(shape Shape, device Device) *RawTensor {
	r, err := NewRaw(shape, device)
	if err != nil {
		panic(err)
	}
	return r
}

// RawFromSlice wraps a copy of data as a RawTensor with the given shape.
func RawFromSlice(data []float64, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	r, err := NewRaw(shape, device)
	if err != nil {
		return nil, err
	}
	copy(r.data, data)
	return r, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the underlying buffer.
//
// WARNING: modifications to the returned slice modify the tensor. Parameter
// updates (optimizers, the feasibility projector) rely on this.
func (r *RawTensor) Data() []float64 {
	return r.data
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]float64, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		device: r.device,
	}
}

// Fill sets every element to value.
func (r *RawTensor) Fill(value float64) {
	for i := range r.data {
		r.data[i] = value
	}
}

// IsFinite reports whether no element is NaN or ±Inf.
func (r *RawTensor) IsFinite() bool {
	for _, v := range r.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
