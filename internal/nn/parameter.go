package nn

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/icnn/internal/tensor"
)

// Parameter is a named trainable tensor plus the gradient of the last
// backward pass.
//
// The tensor is shared, not copied: optimizers and the ICNN projector write
// through Tensor().Data() in place.
//
// Example:
//
//	w := nn.NewParameter("z.1.weight", weights)
//	optimizer.Step(grads)
//	w.ClampMin(1e-6) // keep the z-path non-negative
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[B]
	grad   *tensor.Tensor[B] // nil until SetGrad
}

// NewParameter wraps an initialized tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[B] { return p.tensor }

// NumElements returns the number of scalar entries.
func (p *Parameter[B]) NumElements() int { return p.tensor.NumElements() }

// Grad returns the gradient, or nil before the first backward pass and
// after ZeroGrad.
func (p *Parameter[B]) Grad() *tensor.Tensor[B] { return p.grad }

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[B]) { p.grad = grad }

// ZeroGrad clears the gradient tensor.
func (p *Parameter[B]) ZeroGrad() { p.grad = nil }

// ClampMin replaces every entry strictly below zero with floor and returns
// how many entries changed. Entries >= 0 are never touched, so repeated
// calls are no-ops.
//
// ClampMin writes the data directly; callers holding an autodiff backend
// run it inside NoGrad.
func (p *Parameter[B]) ClampMin(floor float64) int {
	data := p.tensor.Data()
	if len(data) == 0 || floats.Min(data) >= 0 {
		return 0
	}
	n := 0
	for i, v := range data {
		if v < 0 {
			data[i] = floor
			n++
		}
	}
	return n
}

// FirstNegative returns the flat index and value of the first entry below
// zero. ok is false when every entry is >= 0.
func (p *Parameter[B]) FirstNegative() (index int, value float64, ok bool) {
	for i, v := range p.tensor.Data() {
		if v < 0 {
			return i, v, true
		}
	}
	return 0, 0, false
}
