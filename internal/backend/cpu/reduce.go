package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/icnn/internal/tensor"
)

// Sum reduces all elements to a scalar tensor of shape [].
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustRaw(tensor.Shape{}, cpu.device)
	result.Data()[0] = floats.Sum(x.Data())
	return result
}

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x := tensor.Ones(tensor.Shape{16, 3}, backend)
//	y := backend.SumDim(x.Raw(), 1, true)  // shape: [16, 1]
//	z := backend.SumDim(x.Raw(), 1, false) // shape: [16]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("sumdim: dimension %d out of range for %dD tensor", dim, ndim))
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, ndim-1)
		for i := 0; i < ndim; i++ {
			if i != dim {
				outShape = append(outShape, shape[i])
			}
		}
	}

	result, err := tensor.NewRaw(outShape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumdim: failed to create result: %v", err))
	}

	// View the input as (outer, size, inner) around dim.
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}
	size := shape[dim]

	src, dst := x.Data(), result.Data()
	for o := 0; o < outer; o++ {
		for s := 0; s < size; s++ {
			base := (o*size + s) * inner
			floats.Add(dst[o*inner:(o+1)*inner], src[base:base+inner])
		}
	}

	return result
}
