package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)   // Parameter update
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR:    1e-4,
//	    Betas: [2]float64{0.9, 0.999},
//	}, backend)
type Adam[B tensor.Backend] struct {
	params  []*nn.Parameter[B]
	lr      float64
	beta1   float64
	beta2   float64
	eps     float64
	t       int                                    // Timestep for bias correction
	m       map[*nn.Parameter[B]]*tensor.Tensor[B] // First moment estimates
	v       map[*nn.Parameter[B]]*tensor.Tensor[B] // Second moment estimates
	backend B
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Zero fields of config take their defaults:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig, backend B) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[B]{
		params:  params,
		lr:      config.LR,
		beta1:   config.Betas[0],
		beta2:   config.Betas[1],
		eps:     config.Eps,
		t:       0,
		m:       make(map[*nn.Parameter[B]]*tensor.Tensor[B]),
		v:       make(map[*nn.Parameter[B]]*tensor.Tensor[B]),
		backend: backend,
	}
}

// Step performs a single optimization step using Adam algorithm.
//
// Parameters with no gradient are skipped.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++

	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		m, ok := a.m[param]
		if !ok {
			m = tensor.Zeros(param.Tensor().Shape(), a.backend)
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = tensor.Zeros(param.Tensor().Shape(), a.backend)
			a.v[param] = v
		}

		param.SetGrad(tensor.New(grad, a.backend))
		a.updateParameter(param.Tensor().Data(), grad.Data(), m.Data(), v.Data(), biasCorrection1, biasCorrection2)
	}
}

// updateParameter performs Adam update for a single parameter.
func (a *Adam[B]) updateParameter(paramData, gradData, mData, vData []float64, biasCorrection1, biasCorrection2 float64) {
	for i := range paramData {
		g := gradData[i]

		mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
		vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

		mHat := mData[i] / biasCorrection1
		vHat := vData[i] / biasCorrection2

		paramData[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam[B]) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam[B]) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam[B]) GetTimestep() int {
	return a.t
}

// StateDict returns the moment buffers and the timestep.
//
// State keys: "m.{param_index}", "v.{param_index}" and "step" (shape [1]).
func (a *Adam[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, param := range a.params {
		if m, ok := a.m[param]; ok {
			stateDict[fmt.Sprintf("m.%d", i)] = m.Raw()
		}
		if v, ok := a.v[param]; ok {
			stateDict[fmt.Sprintf("v.%d", i)] = v.Raw()
		}
	}
	step := tensor.MustRaw(tensor.Shape{1}, a.backend.Device())
	step.Data()[0] = float64(a.t)
	stateDict["step"] = step
	return stateDict
}

// LoadStateDict restores moment buffers and the timestep.
func (a *Adam[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	a.m = make(map[*nn.Parameter[B]]*tensor.Tensor[B])
	a.v = make(map[*nn.Parameter[B]]*tensor.Tensor[B])

	for i, param := range a.params {
		for _, buf := range []struct {
			key   string
			store map[*nn.Parameter[B]]*tensor.Tensor[B]
		}{
			{fmt.Sprintf("m.%d", i), a.m},
			{fmt.Sprintf("v.%d", i), a.v},
		} {
			raw, ok := stateDict[buf.key]
			if !ok {
				continue
			}
			if !raw.Shape().Equal(param.Tensor().Shape()) {
				return fmt.Errorf("%s shape mismatch: expected %v, got %v",
					buf.key, param.Tensor().Shape(), raw.Shape())
			}
			buf.store[param] = tensor.New(raw.Clone(), a.backend)
		}
	}

	if step, ok := stateDict["step"]; ok && step.NumElements() == 1 {
		a.t = int(step.Data()[0])
	}
	return nil
}
