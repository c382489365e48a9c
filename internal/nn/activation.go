package nn

import (
	"fmt"

	"github.com/born-ml/icnn/internal/tensor"
)

// ReLUBackend is an interface for backends that support ReLU activation.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// LeakyReLUBackend is an interface for backends that support LeakyReLU activation.
type LeakyReLUBackend interface {
	LeakyReLU(x *tensor.RawTensor, slope float64) *tensor.RawTensor
}

// SoftplusBackend is an interface for backends that support Softplus activation.
type SoftplusBackend interface {
	Softplus(*tensor.RawTensor) *tensor.RawTensor
}

// SigmoidBackend is an interface for backends that support Sigmoid activation.
type SigmoidBackend interface {
	Sigmoid(*tensor.RawTensor) *tensor.RawTensor
}

// HeavisideBackend is an interface for backends that provide the unit step.
// The step is treated as a constant by the autodiff backend.
type HeavisideBackend interface {
	Heaviside(*tensor.RawTensor) *tensor.RawTensor
}

// Activation is an element-wise activation that is convex and
// non-decreasing, the two properties that keep input-convex networks convex.
//
// Derivative returns σ'(a) for pre-activation a. It is built from backend
// operations so that, when σ' is itself differentiable (Softplus), the
// returned tensor participates in the autodiff graph.
type Activation[B tensor.Backend] interface {
	Forward(x *tensor.Tensor[B]) *tensor.Tensor[B]
	Derivative(x *tensor.Tensor[B]) *tensor.Tensor[B]
	Name() string
}

// ActivationKind names an activation in configuration.
type ActivationKind string

// Supported activations. The zero value selects Softplus.
const (
	ActivationSoftplus  ActivationKind = "softplus"
	ActivationReLU      ActivationKind = "relu"
	ActivationLeakyReLU ActivationKind = "leaky_relu"
)

// DefaultLeakySlope is the negative slope used by ActivationLeakyReLU.
const DefaultLeakySlope = 0.01

// NewActivation returns the activation for kind.
func NewActivation[B tensor.Backend](kind ActivationKind) (Activation[B], error) {
	switch kind {
	case "", ActivationSoftplus:
		return NewSoftplus[B](), nil
	case ActivationReLU:
		return NewReLU[B](), nil
	case ActivationLeakyReLU:
		return NewLeakyReLU[B](DefaultLeakySlope), nil
	default:
		return nil, fmt.Errorf("unknown activation %q", kind)
	}
}

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	backend := input.Backend()
	if reluBackend, ok := any(backend).(ReLUBackend); ok {
		return tensor.New(reluBackend.ReLU(input.Raw()), backend)
	}
	panic("ReLU: backend must implement ReLU operation (use autodiff.AutodiffBackend)")
}

// Derivative returns the unit step of x. It carries no gradient.
func (r *ReLU[B]) Derivative(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return heaviside(input)
}

// Name returns "relu".
func (r *ReLU[B]) Name() string { return string(ActivationReLU) }

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// LeakyReLU applies x for x > 0 and slope·x otherwise. With 0 ≤ slope ≤ 1
// it is convex and non-decreasing.
type LeakyReLU[B tensor.Backend] struct {
	slope float64
}

// NewLeakyReLU creates a LeakyReLU with the given negative slope.
func NewLeakyReLU[B tensor.Backend](slope float64) *LeakyReLU[B] {
	return &LeakyReLU[B]{slope: slope}
}

// Forward applies LeakyReLU activation.
func (l *LeakyReLU[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	backend := input.Backend()
	if leakyBackend, ok := any(backend).(LeakyReLUBackend); ok {
		return tensor.New(leakyBackend.LeakyReLU(input.Raw(), l.slope), backend)
	}
	panic("LeakyReLU: backend must implement LeakyReLU operation (use autodiff.AutodiffBackend)")
}

// Derivative returns slope + (1-slope)·step(x). It carries no gradient.
func (l *LeakyReLU[B]) Derivative(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return heaviside(input).MulScalar(1 - l.slope).AddScalar(l.slope)
}

// Name returns "leaky_relu".
func (l *LeakyReLU[B]) Name() string { return string(ActivationLeakyReLU) }

// Slope returns the negative slope.
func (l *LeakyReLU[B]) Slope() float64 { return l.slope }

// Parameters returns an empty slice.
func (l *LeakyReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// Softplus is a smooth ReLU: f(x) = log(1 + exp(x)).
//
// Its derivative is the sigmoid, which is differentiable again, so second
// order quantities such as gradients of input gradients stay informative.
type Softplus[B tensor.Backend] struct{}

// NewSoftplus creates a new Softplus activation module.
func NewSoftplus[B tensor.Backend]() *Softplus[B] {
	return &Softplus[B]{}
}

// Forward applies Softplus activation.
func (s *Softplus[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	backend := input.Backend()
	if softplusBackend, ok := any(backend).(SoftplusBackend); ok {
		return tensor.New(softplusBackend.Softplus(input.Raw()), backend)
	}
	panic("Softplus: backend must implement Softplus operation (use autodiff.AutodiffBackend)")
}

// Derivative returns sigmoid(x), recorded on the tape.
func (s *Softplus[B]) Derivative(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	backend := input.Backend()
	if sigmoidBackend, ok := any(backend).(SigmoidBackend); ok {
		return tensor.New(sigmoidBackend.Sigmoid(input.Raw()), backend)
	}
	panic("Softplus: backend must implement Sigmoid operation (use autodiff.AutodiffBackend)")
}

// Name returns "softplus".
func (s *Softplus[B]) Name() string { return string(ActivationSoftplus) }

// Parameters returns an empty slice.
func (s *Softplus[B]) Parameters() []*Parameter[B] {
	return nil
}

func heaviside[B tensor.Backend](input *tensor.Tensor[B]) *tensor.Tensor[B] {
	backend := input.Backend()
	if stepBackend, ok := any(backend).(HeavisideBackend); ok {
		return tensor.New(stepBackend.Heaviside(input.Raw()), backend)
	}
	panic("Heaviside: backend must implement Heaviside operation (use autodiff.AutodiffBackend)")
}
