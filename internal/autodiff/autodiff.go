// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation and adds gradient
// tracking through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: records operations during the forward pass
//   - Operation interface: each op implements its own backward rule
//   - Reverse-mode AD: gradients of a scalar root via the chain rule
//
// Every forward operation returns a freshly allocated RawTensor, so the
// pointer identity of a result is its node identity on the tape.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//
//	x, _ := tensor.FromSlice([]float64{2}, tensor.Shape{1}, backend)
//	y := x.Mul(x) // y = x²
//
//	grads := autodiff.Backward(y, backend)
//	fmt.Println(grads[x.Raw()].Data()) // dy/dx = 2x = [4]
package autodiff

import (
	"fmt"

	"github.com/born-ml/icnn/internal/autodiff/ops"
	"github.com/born-ml/icnn/internal/tensor"
)

// activationBackend is the set of activation kernels an inner backend must
// provide for AutodiffBackend to expose them.
type activationBackend interface {
	ReLU(x *tensor.RawTensor) *tensor.RawTensor
	LeakyReLU(x *tensor.RawTensor, slope float64) *tensor.RawTensor
	Softplus(x *tensor.RawTensor) *tensor.RawTensor
	Sigmoid(x *tensor.RawTensor) *tensor.RawTensor
	Heaviside(x *tensor.RawTensor) *tensor.RawTensor
}

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
//
// Type parameter B must satisfy the tensor.Backend interface.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// NoGrad runs fn with recording disabled and restores the previous
// recording state afterwards, even if fn panics.
func (b *AutodiffBackend[B]) NoGrad(fn func()) {
	wasRecording := b.tape.IsRecording()
	b.tape.StopRecording()
	defer func() {
		if wasRecording {
			b.tape.StartRecording()
		}
	}()
	fn()
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(a, c)
	b.tape.Record(ops.NewAddOp(a, c, result))
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(a, c)
	b.tape.Record(ops.NewSubOp(a, c, result))
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(a, c)
	b.tape.Record(ops.NewMulOp(a, c, result))
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) MatMul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.MatMul(a, c)
	b.tape.Record(ops.NewMatMulOp(a, c, result))
	return result
}

// Reshape changes tensor shape and records the operation.
func (b *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(t, newShape)
	b.tape.Record(ops.NewReshapeOp(t, result))
	return result
}

// Transpose transposes a 2D tensor and records the operation.
func (b *AutodiffBackend[B]) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Transpose(t)
	b.tape.Record(ops.NewTransposeOp(t, result))
	return result
}

// Expand broadcasts a tensor to newShape and records the operation.
func (b *AutodiffBackend[B]) Expand(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Expand(t, newShape)
	b.tape.Record(ops.NewExpandOp(t, result))
	return result
}

// MulScalar multiplies by a constant and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, scalar)
	b.tape.Record(ops.NewMulScalarOp(x, result, scalar))
	return result
}

// AddScalar adds a constant and records the operation.
func (b *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := b.inner.AddScalar(x, scalar)
	b.tape.Record(ops.NewAddScalarOp(x, result))
	return result
}

// Abs computes |x| and records the operation.
func (b *AutodiffBackend[B]) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Abs(x)
	b.tape.Record(ops.NewAbsOp(x, result))
	return result
}

// Square computes x² and records the operation.
func (b *AutodiffBackend[B]) Square(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Square(x)
	b.tape.Record(ops.NewSquareOp(x, result))
	return result
}

// Sum reduces x to a scalar and records the operation.
func (b *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sum(x)
	b.tape.Record(ops.NewSumOp(x, result))
	return result
}

// SumDim sums along dim and records the operation.
func (b *AutodiffBackend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	result := b.inner.SumDim(x, dim, keepDim)
	if dim < 0 {
		dim += len(x.Shape())
	}
	b.tape.Record(ops.NewSumDimOp(x, result, dim))
	return result
}

// ReLU applies max(0, x) and records the operation.
func (b *AutodiffBackend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.activations("ReLU").ReLU(x)
	b.tape.Record(ops.NewReLUOp(x, result))
	return result
}

// LeakyReLU applies LeakyReLU with the given negative slope and records the operation.
func (b *AutodiffBackend[B]) LeakyReLU(x *tensor.RawTensor, slope float64) *tensor.RawTensor {
	result := b.activations("LeakyReLU").LeakyReLU(x, slope)
	b.tape.Record(ops.NewLeakyReLUOp(x, result, slope))
	return result
}

// Softplus applies log(1 + exp(x)) and records the operation.
func (b *AutodiffBackend[B]) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.activations("Softplus").Softplus(x)
	b.tape.Record(ops.NewSoftplusOp(x, result))
	return result
}

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) and records the operation.
func (b *AutodiffBackend[B]) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.activations("Sigmoid").Sigmoid(x)
	b.tape.Record(ops.NewSigmoidOp(x, result))
	return result
}

// Heaviside returns the unit step of x (1 where x > 0, else 0).
// The step is piecewise constant, so it is never recorded: its result
// behaves as a constant for every later operation.
func (b *AutodiffBackend[B]) Heaviside(x *tensor.RawTensor) *tensor.RawTensor {
	return b.activations("Heaviside").Heaviside(x)
}

func (b *AutodiffBackend[B]) activations(op string) activationBackend {
	act, ok := any(b.inner).(activationBackend)
	if !ok {
		panic(fmt.Sprintf("%s: backend %s does not implement activations", op, b.inner.Name()))
	}
	return act
}
