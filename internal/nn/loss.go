package nn

import (
	"fmt"

	"github.com/born-ml/icnn/internal/tensor"
)

// Loss reduces predictions and targets to a scalar.
type Loss[B tensor.Backend] interface {
	Forward(predictions, targets *tensor.Tensor[B]) *tensor.Tensor[B]
}

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Example:
//
//	mse := nn.NewMSELoss[Backend]()
//	loss := mse.Forward(model.Forward(input), targets)
type MSELoss[B tensor.Backend] struct{}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss[B tensor.Backend]() *MSELoss[B] {
	return &MSELoss[B]{}
}

// Forward computes the MSE loss as a scalar tensor (shape []).
// The reduction is recorded, so the result can be differentiated.
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[B]) *tensor.Tensor[B] {
	checkLossShapes("MSELoss", predictions, targets)
	return predictions.Sub(targets).Square().Mean()
}

// Parameters returns an empty slice (loss functions have no trainable parameters).
func (m *MSELoss[B]) Parameters() []*Parameter[B] {
	return nil
}

// L1Loss computes Mean Absolute Error loss.
//
// Loss = mean(|predictions - targets|)
type L1Loss[B tensor.Backend] struct{}

// NewL1Loss creates a new L1 loss function.
func NewL1Loss[B tensor.Backend]() *L1Loss[B] {
	return &L1Loss[B]{}
}

// Forward computes the L1 loss as a scalar tensor (shape []).
func (l *L1Loss[B]) Forward(predictions, targets *tensor.Tensor[B]) *tensor.Tensor[B] {
	checkLossShapes("L1Loss", predictions, targets)
	return predictions.Sub(targets).Abs().Mean()
}

// Parameters returns an empty slice.
func (l *L1Loss[B]) Parameters() []*Parameter[B] {
	return nil
}

func checkLossShapes[B tensor.Backend](name string, predictions, targets *tensor.Tensor[B]) {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("%s: predictions %v and targets %v must have the same shape",
			name, predictions.Shape(), targets.Shape()))
	}
}
