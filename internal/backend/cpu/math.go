package cpu

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/icnn/internal/parallel"
	"github.com/born-ml/icnn/internal/tensor"
)

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), cpu.device)
	floats.ScaleTo(result.Data(), scalar, x.Data())
	return result
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := x.Clone()
	floats.AddConst(scalar, result.Data())
	return result
}

// Abs computes |x| element-wise.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, math.Abs)
}

// Square computes x² element-wise.
func (cpu *CPUBackend) Square(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), cpu.device)
	floats.MulTo(result.Data(), x.Data(), x.Data())
	return result
}

// unary applies f to every element into a new tensor.
func (cpu *CPUBackend) unary(x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := tensor.MustRaw(x.Shape(), cpu.device)
	parallel.Map(result.Data(), x.Data(), cpu.parallel, f)
	return result
}
