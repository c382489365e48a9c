// Package nn implements the neural network building blocks used by the
// input-convex models.
//
// This package provides:
//   - Module interface: base interface for all NN components
//   - Parameter: trainable parameters with gradient slots
//   - Linear: fully connected layer, optionally without bias
//   - Activations: Softplus, ReLU, LeakyReLU (convex and non-decreasing)
//   - Loss functions: L1, MSE
//   - Checkpoint: model weights plus training metadata
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/born-ml/icnn/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: compute output from input
//   - Parameters: return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[B]) *tensor.Tensor[B]

	// Parameters returns all trainable parameters of this module.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]
}

// Stateful is implemented by modules whose weights can be exported and
// restored by name.
type Stateful interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
