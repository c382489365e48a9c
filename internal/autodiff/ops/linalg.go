package ops

import "github.com/born-ml/icnn/internal/tensor"

// MatMulOp represents a matrix multiplication operation: output = a @ b.
//
// Backward pass:
//   - d(A@B)/dA = outputGrad @ B^T
//   - d(A@B)/dB = A^T @ outputGrad
type MatMulOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{inputs: []*tensor.RawTensor{a, b}, output: output}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := backend.MatMul(outputGrad, backend.Transpose(b))
	gradB := backend.MatMul(backend.Transpose(a), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}

// Inputs returns [a, b].
func (op *MatMulOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns a @ b.
func (op *MatMulOp) Output() *tensor.RawTensor { return op.output }

// TransposeOp represents a 2D transpose.
//
// The CPU backend copies data on transpose, so the result is a new tensor
// and must be recorded: Linear computes x @ W.T, and without this op the
// gradient would stop at W.T and never reach the W parameter.
type TransposeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(input, output *tensor.RawTensor) *TransposeOp {
	return &TransposeOp{input: input, output: output}
}

// Backward transposes the gradient back.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(outputGrad)}
}

// Inputs returns [x].
func (op *TransposeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns x^T.
func (op *TransposeOp) Output() *tensor.RawTensor { return op.output }

// ReshapeOp represents a reshape; the gradient is reshaped back.
type ReshapeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{input: input, output: output}
}

// Backward reshapes the gradient to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// Inputs returns [x].
func (op *ReshapeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the reshaped tensor.
func (op *ReshapeOp) Output() *tensor.RawTensor { return op.output }

// ExpandOp represents a broadcast to a larger shape; the gradient is summed
// back over the broadcast dimensions.
type ExpandOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(input, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{input: input, output: output}
}

// Backward reduces the gradient to the input shape.
func (op *ExpandOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(outputGrad, op.input.Shape(), backend)}
}

// Inputs returns [x].
func (op *ExpandOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the expanded tensor.
func (op *ExpandOp) Output() *tensor.RawTensor { return op.output }
