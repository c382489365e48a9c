package autodiff

import (
	"github.com/born-ml/icnn/internal/tensor"
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t with respect to every tensor recorded on
// the backend's tape, seeding t with ones.
//
// t is usually a scalar loss. Several roots recorded on the same tape can be
// differentiated one after another; the tape is not consumed.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones(tensor.Shape{2}, backend)
//	y := x.Mul(x) // y = x²
//	gradients := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()] // [2, 2]
func Backward[B BackwardCapable](t *tensor.Tensor[B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()

	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	seed := tensor.MustRaw(t.Shape(), backend.Device())
	seed.Fill(1)

	return tape.Backward(t.Raw(), seed, backend)
}
