package cpu

import (
	"math"

	"github.com/born-ml/icnn/internal/tensor"
)

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// LeakyReLU computes x for x > 0 and slope·x otherwise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.RawTensor, slope float64) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return slope * v
	})
}

// Softplus computes log(1 + exp(x)) element-wise.
func (cpu *CPUBackend) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, Softplus)
}

// Sigmoid computes 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, Sigmoid)
}

// Heaviside computes the step function: 1 for x > 0, else 0.
func (cpu *CPUBackend) Heaviside(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, func(v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	})
}

// Softplus is the scalar softplus, stable for large |x|.
func Softplus(v float64) float64 {
	// log(1+exp(v)) = max(v,0) + log1p(exp(-|v|))
	return math.Max(v, 0) + math.Log1p(math.Exp(-math.Abs(v)))
}

// Sigmoid is the scalar logistic function, stable for large |x|.
func Sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}
