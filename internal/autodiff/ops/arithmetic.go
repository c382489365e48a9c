package ops

import "github.com/born-ml/icnn/internal/tensor"

// AddOp represents element-wise addition: output = a + b.
//
// Backward pass: the output gradient flows unchanged to both inputs,
// reduced over any broadcast dimensions.
type AddOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{inputs: []*tensor.RawTensor{a, b}, output: output}
}

// Backward computes input gradients for addition.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape(), backend),
		reduceBroadcast(outputGrad, b.Shape(), backend),
	}
}

// Inputs returns [a, b].
func (op *AddOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns a + b.
func (op *AddOp) Output() *tensor.RawTensor { return op.output }

// SubOp represents element-wise subtraction: output = a - b.
//
// Backward pass: grad_a = outputGrad, grad_b = -outputGrad.
type SubOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{inputs: []*tensor.RawTensor{a, b}, output: output}
}

// Backward computes input gradients for subtraction.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape(), backend),
		reduceBroadcast(backend.MulScalar(outputGrad, -1), b.Shape(), backend),
	}
}

// Inputs returns [a, b].
func (op *SubOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns a - b.
func (op *SubOp) Output() *tensor.RawTensor { return op.output }

// MulOp represents element-wise multiplication: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
type MulOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{inputs: []*tensor.RawTensor{a, b}, output: output}
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := reduceBroadcast(backend.Mul(outputGrad, b), a.Shape(), backend)
	gradB := reduceBroadcast(backend.Mul(outputGrad, a), b.Shape(), backend)
	return []*tensor.RawTensor{gradA, gradB}
}

// Inputs returns [a, b].
func (op *MulOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns a * b.
func (op *MulOp) Output() *tensor.RawTensor { return op.output }

// MulScalarOp represents output = x * s for a constant s.
type MulScalarOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(input, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{input: input, output: output, scalar: scalar}
}

// Backward computes grad_x = outputGrad * s.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// Inputs returns [x].
func (op *MulScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns x * s.
func (op *MulScalarOp) Output() *tensor.RawTensor { return op.output }

// AddScalarOp represents output = x + s for a constant s.
type AddScalarOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(input, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{input: input, output: output}
}

// Backward passes the gradient through unchanged.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// Inputs returns [x].
func (op *AddScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns x + s.
func (op *AddScalarOp) Output() *tensor.RawTensor { return op.output }
