package ops

import (
	"math"

	"github.com/born-ml/icnn/internal/tensor"
)

// ReLUOp represents a ReLU activation: output = max(0, x).
//
// Backward pass: d(ReLU(x))/dx = 1 if x > 0, else 0.
type ReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input, output: output}
}

// Backward computes input gradient for ReLU.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(outputGrad, op.input, op.output, func(in, _ float64) float64 {
		if in > 0 {
			return 1
		}
		return 0
	})}
}

// Inputs returns [x].
func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns max(0, x).
func (op *ReLUOp) Output() *tensor.RawTensor { return op.output }

// LeakyReLUOp represents output = x for x > 0, slope·x otherwise.
type LeakyReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	slope  float64
}

// NewLeakyReLUOp creates a new LeakyReLUOp.
func NewLeakyReLUOp(input, output *tensor.RawTensor, slope float64) *LeakyReLUOp {
	return &LeakyReLUOp{input: input, output: output, slope: slope}
}

// Backward computes input gradient for LeakyReLU.
func (op *LeakyReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(outputGrad, op.input, op.output, func(in, _ float64) float64 {
		if in > 0 {
			return 1
		}
		return op.slope
	})}
}

// Inputs returns [x].
func (op *LeakyReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns LeakyReLU(x).
func (op *LeakyReLUOp) Output() *tensor.RawTensor { return op.output }

// SoftplusOp represents output = log(1 + exp(x)).
//
// Backward pass: d(softplus(x))/dx = sigmoid(x).
type SoftplusOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSoftplusOp creates a new SoftplusOp.
func NewSoftplusOp(input, output *tensor.RawTensor) *SoftplusOp {
	return &SoftplusOp{input: input, output: output}
}

// Backward computes input gradient for Softplus.
func (op *SoftplusOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(outputGrad, op.input, op.output, func(in, _ float64) float64 {
		return sigmoid(in)
	})}
}

// Inputs returns [x].
func (op *SoftplusOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns softplus(x).
func (op *SoftplusOp) Output() *tensor.RawTensor { return op.output }

// SigmoidOp represents output = 1 / (1 + exp(-x)).
//
// Backward pass: dσ/dx = σ(x)(1 - σ(x)), computed from the stored output.
type SigmoidOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{input: input, output: output}
}

// Backward computes input gradient for Sigmoid.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(outputGrad, op.input, op.output, func(_, out float64) float64 {
		return out * (1 - out)
	})}
}

// Inputs returns [x].
func (op *SigmoidOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns σ(x).
func (op *SigmoidOp) Output() *tensor.RawTensor { return op.output }

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}
