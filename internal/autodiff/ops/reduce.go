package ops

import "github.com/born-ml/icnn/internal/tensor"

// SumOp represents a total reduction to a scalar.
//
// Backward pass: every input element receives the scalar output gradient.
type SumOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{input: input, output: output}
}

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := tensor.MustRaw(op.input.Shape(), op.input.Device())
	grad.Fill(outputGrad.Data()[0])
	return []*tensor.RawTensor{grad}
}

// Inputs returns [x].
func (op *SumOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns sum(x).
func (op *SumOp) Output() *tensor.RawTensor { return op.output }

// SumDimOp represents a sum along one dimension.
//
// Backward pass: the gradient is re-inserted as a size-1 dimension and
// broadcast along dim.
type SumDimOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewSumDimOp creates a new SumDimOp. dim must already be normalized
// (non-negative).
func NewSumDimOp(input, output *tensor.RawTensor, dim int) *SumDimOp {
	return &SumDimOp{input: input, output: output, dim: dim}
}

// Backward expands the gradient along the reduced dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	keepShape := op.input.Shape().Clone()
	keepShape[op.dim] = 1
	grad := backend.Reshape(outputGrad, keepShape)
	return []*tensor.RawTensor{backend.Expand(grad, op.input.Shape())}
}

// Inputs returns [x].
func (op *SumDimOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the reduced tensor.
func (op *SumDimOp) Output() *tensor.RawTensor { return op.output }

// AbsOp represents output = |x|.
//
// Backward pass: grad_x = outputGrad * sign(x), with sign(0) = 0.
type AbsOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewAbsOp creates a new AbsOp.
func NewAbsOp(input, output *tensor.RawTensor) *AbsOp {
	return &AbsOp{input: input, output: output}
}

// Backward computes input gradient for |x|.
func (op *AbsOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(outputGrad, op.input, op.output, func(in, _ float64) float64 {
		switch {
		case in > 0:
			return 1
		case in < 0:
			return -1
		default:
			return 0
		}
	})}
}

// Inputs returns [x].
func (op *AbsOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns |x|.
func (op *AbsOp) Output() *tensor.RawTensor { return op.output }

// SquareOp represents output = x².
//
// Backward pass: grad_x = outputGrad * 2x.
type SquareOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSquareOp creates a new SquareOp.
func NewSquareOp(input, output *tensor.RawTensor) *SquareOp {
	return &SquareOp{input: input, output: output}
}

// Backward computes input gradient for x².
func (op *SquareOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(outputGrad, op.input, op.output, func(in, _ float64) float64 {
		return 2 * in
	})}
}

// Inputs returns [x].
func (op *SquareOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns x².
func (op *SquareOp) Output() *tensor.RawTensor { return op.output }
