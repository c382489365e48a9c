package tensor

import "fmt"

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	a := tensor.Ones(Shape{16, 8}, backend)
//	b := tensor.Ones(Shape{1, 8}, backend)
//	c := a.Add(b) // Shape: [16, 8] (broadcasted)
func (t *Tensor[B]) Add(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[B]) Sub(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise (Hadamard) multiplication with broadcasting.
func (t *Tensor[B]) Mul(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Mul(t.raw, other.raw), t.backend)
}

// MatMul performs matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[B]) MatMul(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but a different shape.
// The new shape must have the same number of elements.
func (t *Tensor[B]) Reshape(newShape ...int) *Tensor[B] {
	return New(t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// T transposes a 2D tensor.
// Panics if the tensor is not 2D.
func (t *Tensor[B]) T() *Tensor[B] {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return New(t.backend.Transpose(t.raw), t.backend)
}

// Expand broadcasts the tensor to a larger shape.
func (t *Tensor[B]) Expand(shape ...int) *Tensor[B] {
	return New(t.backend.Expand(t.raw, Shape(shape)), t.backend)
}

// MulScalar multiplies every element by s.
func (t *Tensor[B]) MulScalar(s float64) *Tensor[B] {
	return New(t.backend.MulScalar(t.raw, s), t.backend)
}

// AddScalar adds s to every element.
func (t *Tensor[B]) AddScalar(s float64) *Tensor[B] {
	return New(t.backend.AddScalar(t.raw, s), t.backend)
}

// Neg returns -t.
func (t *Tensor[B]) Neg() *Tensor[B] {
	return t.MulScalar(-1)
}

// Abs returns the element-wise absolute value.
func (t *Tensor[B]) Abs() *Tensor[B] {
	return New(t.backend.Abs(t.raw), t.backend)
}

// Square returns the element-wise square.
func (t *Tensor[B]) Square() *Tensor[B] {
	return New(t.backend.Square(t.raw), t.backend)
}

// Sum reduces all elements to a scalar tensor (shape []).
func (t *Tensor[B]) Sum() *Tensor[B] {
	return New(t.backend.Sum(t.raw), t.backend)
}

// Mean reduces all elements to their mean (shape []).
func (t *Tensor[B]) Mean() *Tensor[B] {
	return t.Sum().MulScalar(1 / float64(t.NumElements()))
}

// SumDim sums along dim. With keepDim the reduced dimension stays as size 1.
func (t *Tensor[B]) SumDim(dim int, keepDim bool) *Tensor[B] {
	if dim < 0 || dim >= len(t.Shape()) {
		panic(fmt.Sprintf("SumDim: invalid dimension %d for shape %v", dim, t.Shape()))
	}
	return New(t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}
