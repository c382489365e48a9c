// Package ops defines the differentiable operations recorded by the autodiff tape.
//
// Each operation implements the Operation interface, which provides:
//   - Inputs/Output: the RawTensors linked by the forward computation
//   - Backward: input gradients given the output gradient
//
// Supported operations:
//   - AddOp, SubOp, MulOp: element-wise with broadcasting
//   - MulScalarOp, AddScalarOp: element-wise with a constant
//   - MatMulOp: d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad
//   - TransposeOp, ReshapeOp, ExpandOp: shape plumbing
//   - AbsOp, SquareOp, SumOp, SumDimOp: losses and reductions
//   - ReLUOp, LeakyReLUOp, SoftplusOp, SigmoidOp: activations
package ops

import (
	"fmt"

	"github.com/born-ml/icnn/internal/tensor"
)

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns one gradient per input; a nil entry means no gradient flows
	// to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
//	Forward:  a[16,8] + b[1,8] -> c[16,8]  (b broadcast along dim 0)
//	Backward: grad_c[16,8] -> grad_b[1,8]   (sum along dim 0)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	// Leading dimensions the target does not have are summed away.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Dimensions where the target is 1 were broadcast.
	for i, dim := range targetShape {
		if dim == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		if result.NumElements() != targetShape.NumElements() {
			panic(fmt.Sprintf("reduceBroadcast: cannot reduce %v to %v", grad.Shape(), targetShape))
		}
		result = backend.Reshape(result, targetShape)
	}

	return result
}

// mapGrad returns outputGrad[i] * f(input[i], output[i]) element-wise.
func mapGrad(outputGrad, input, output *tensor.RawTensor, f func(in, out float64) float64) *tensor.RawTensor {
	result := tensor.MustRaw(input.Shape(), input.Device())
	dst, g, in, out := result.Data(), outputGrad.Data(), input.Data(), output.Data()
	for i := range dst {
		dst[i] = g[i] * f(in[i], out[i])
	}
	return result
}
