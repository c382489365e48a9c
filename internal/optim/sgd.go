package optim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	}, backend)
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter[B]]*tensor.Tensor[B]
	backend    B
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]]*tensor.Tensor[B]),
		backend:    backend,
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient (not in computational graph) are skipped.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}
		param.SetGrad(tensor.New(grad, s.backend))

		if s.momentum == 0 {
			// param -= lr * grad
			floats.AddScaled(param.Tensor().Data(), -s.lr, grad.Data())
			continue
		}

		velocity, exists := s.velocities[param]
		if !exists {
			velocity = tensor.Zeros(param.Tensor().Shape(), s.backend)
			s.velocities[param] = velocity
		}

		// velocity = momentum * velocity + grad
		floats.Scale(s.momentum, velocity.Data())
		floats.Add(velocity.Data(), grad.Data())

		// param -= lr * velocity
		floats.AddScaled(param.Tensor().Data(), -s.lr, velocity.Data())
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[B]) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the optimizer state for serialization.
//
// For SGD with momentum, this exports velocity buffers for each parameter.
// Without momentum, returns an empty map.
//
// State keys: "velocity.{param_index}" -> velocity tensor.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return stateDict
	}

	for i, param := range s.params {
		velocity, exists := s.velocities[param]
		if !exists {
			continue
		}
		stateDict[fmt.Sprintf("velocity.%d", i)] = velocity.Raw()
	}

	return stateDict
}

// LoadStateDict loads optimizer state from serialization.
//
// Returns an error if velocity shapes don't match parameter shapes.
func (s *SGD[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}

	s.velocities = make(map[*nn.Parameter[B]]*tensor.Tensor[B])
	for i, param := range s.params {
		key := fmt.Sprintf("velocity.%d", i)
		velocityRaw, exists := stateDict[key]
		if !exists {
			continue
		}
		if !velocityRaw.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Tensor().Shape(), velocityRaw.Shape())
		}
		s.velocities[param] = tensor.New(velocityRaw.Clone(), s.backend)
	}

	return nil
}
