// Package tensor provides the core tensor types for the ICNN runtime.
//
// Tensors are dense float64 arrays. Float64 keeps convexity checks and
// finite-difference gradient checks meaningful at small tolerances.
package tensor

import "fmt"

// Tensor is a tensor bound to a computation backend B.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	x := tensor.Zeros(tensor.Shape{16, 1}, backend)
//	y := x.Add(x) // recorded on the tape when recording is enabled
type Tensor[B Backend] struct {
	raw     *RawTensor
	backend B
}

// New creates a Tensor from a RawTensor and backend.
func New[B Backend](raw *RawTensor, b B) *Tensor[B] {
	return &Tensor[B]{
		raw:     raw,
		backend: b,
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[B Backend](data []float64, shape Shape, b B) (*Tensor[B], error) {
	raw, err := RawFromSlice(data, shape, b.Device())
	if err != nil {
		return nil, err
	}
	return New(raw, b), nil
}

// FromRows creates a 2D tensor of shape (len(rows), len(rows[0])).
// All rows must have the same length.
func FromRows[B Backend](rows [][]float64, b B) (*Tensor[B], error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("from rows: no rows")
	}
	width := len(rows[0])
	data := make([]float64, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("from rows: row %d has %d columns, want %d", i, len(row), width)
		}
		data = append(data, row...)
	}
	return FromSlice(data, Shape{len(rows), width}, b)
}

// Shape returns the tensor's shape.
func (t *Tensor[B]) Shape() Shape {
	return t.raw.Shape()
}

// NumElements returns the total number of elements.
func (t *Tensor[B]) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
// Used by backends, the autodiff tape and optimizers.
func (t *Tensor[B]) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor[B]) Backend() B {
	return t.backend
}

// Data returns the tensor's data (zero-copy).
//
// WARNING: modifications to the returned slice modify the tensor.
func (t *Tensor[B]) Data() []float64 {
	return t.raw.Data()
}

// Item returns the value of a single-element tensor.
// Panics if the tensor holds more than one element.
func (t *Tensor[B]) Item() float64 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[B]) At(indices ...int) float64 {
	return t.Data()[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[B]) Set(value float64, indices ...int) {
	t.Data()[t.offset(indices)] = value
}

func (t *Tensor[B]) offset(indices []int) int {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}
	offset := 0
	strides := t.raw.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// Row returns a copy of row i of a 2D tensor.
func (t *Tensor[B]) Row(i int) []float64 {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Row() only works for 2D tensors, got shape %v", shape))
	}
	if i < 0 || i >= shape[0] {
		panic(fmt.Sprintf("row %d out of bounds (rows %d)", i, shape[0]))
	}
	row := make([]float64, shape[1])
	copy(row, t.Data()[i*shape[1]:(i+1)*shape[1]])
	return row
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[B]) String() string {
	return fmt.Sprintf("Tensor[float64]%v on %s", t.Shape(), t.raw.Device())
}

// Clone creates a deep copy of the tensor.
// The copy is a fresh leaf: no recorded operation produced it.
func (t *Tensor[B]) Clone() *Tensor[B] {
	return New(t.raw.Clone(), t.backend)
}

// Detach returns a tensor sharing the same data under a new identity, so
// gradients recorded for t never reach it.
func (t *Tensor[B]) Detach() *Tensor[B] {
	return New(&RawTensor{
		data:   t.raw.data,
		shape:  t.raw.shape,
		stride: t.raw.stride,
		device: t.raw.device,
	}, t.backend)
}
