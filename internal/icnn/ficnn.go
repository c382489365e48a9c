package icnn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

// FICNNConfig configures a fully input-convex network.
type FICNNConfig struct {
	InputSize  int               // Width of x
	HiddenDim  int               // Width of every hidden stage
	NumLayers  int               // Number of hidden z-path stages; k = NumLayers + 1
	OutputSize int               // Width of the output
	Activation nn.ActivationKind // Convex, non-decreasing; empty selects softplus
}

// Validate checks that every size is positive and the activation is known.
func (c FICNNConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"InputSize", c.InputSize},
		{"HiddenDim", c.HiddenDim},
		{"NumLayers", c.NumLayers},
		{"OutputSize", c.OutputSize},
	} {
		if err := positive(f.name, f.v); err != nil {
			return err
		}
	}
	switch c.Activation {
	case "", nn.ActivationSoftplus, nn.ActivationReLU, nn.ActivationLeakyReLU:
		return nil
	default:
		return &ConfigError{Field: "Activation", Value: c.Activation, Reason: "unknown activation"}
	}
}

// FICNN is a fully input-convex neural network f: R^in -> R^out.
//
// With k = NumLayers + 1 the network computes
//
//	z_0 = σ(W_0 x + b_0)
//	z_i = σ(Wz_i z_{i-1} + Wy_i x + b_i)   for i = 1..k
//
// and returns z_k. Stages 1..k-1 are hidden (HiddenDim -> HiddenDim) and
// stage k maps to OutputSize. Each output is convex in x as long as every
// Wz_i is non-negative and σ is convex and non-decreasing; the Wz_i are the
// weights reported by ConstrainedWeights.
type FICNN[B tensor.Backend] struct {
	cfg FICNNConfig
	act nn.Activation[B]
	w0  *nn.Linear[B]   // in -> hidden
	wz  []*nn.Linear[B] // wz[i-1] is Wz_i, no bias
	wy  []*nn.Linear[B] // wy[i-1] is Wy_i, carries b_i
}

// NewFICNN builds a FICNN with Xavier-uniform weights drawn from rng.
//
// The constrained weights are not projected at construction; run a
// Projector before relying on convexity.
func NewFICNN[B tensor.Backend](cfg FICNNConfig, backend B, rng *rand.Rand) (*FICNN[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	act, err := nn.NewActivation[B](cfg.Activation)
	if err != nil {
		return nil, &ConfigError{Field: "Activation", Value: cfg.Activation, Reason: err.Error()}
	}

	m := &FICNN[B]{
		cfg: cfg,
		act: act,
		w0:  nn.NewLinear(cfg.InputSize, cfg.HiddenDim, backend, rng),
	}
	k := cfg.NumLayers + 1
	for i := 1; i <= k; i++ {
		width := cfg.HiddenDim
		if i == k {
			width = cfg.OutputSize
		}
		m.wz = append(m.wz, nn.NewLinear(cfg.HiddenDim, width, backend, rng, nn.WithoutBias()))
		m.wy = append(m.wy, nn.NewLinear(cfg.InputSize, width, backend, rng))
	}
	return m, nil
}

// Forward evaluates the network on x of shape [batch, InputSize] and
// returns [batch, OutputSize]. Rows are independent.
func (m *FICNN[B]) Forward(x *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	if err := checkBatch("FICNN.Forward", x.Shape(), m.cfg.InputSize); err != nil {
		return nil, err
	}
	pre := m.preActivations(x)
	return m.act.Forward(pre[len(pre)-1]), nil
}

// preActivations returns a_0..a_k for x.
func (m *FICNN[B]) preActivations(x *tensor.Tensor[B]) []*tensor.Tensor[B] {
	pre := make([]*tensor.Tensor[B], 0, len(m.wz)+1)
	a := m.w0.Forward(x)
	pre = append(pre, a)
	for i := range m.wz {
		z := m.act.Forward(a)
		a = m.wz[i].Forward(z).Add(m.wy[i].Forward(x))
		pre = append(pre, a)
	}
	return pre
}

// InputGradient returns ∇_x Σ_o f_o(x) for every row of x, shape
// [batch, InputSize]. For a scalar-output network this is the row-wise
// gradient of f.
//
// The gradient is assembled from recorded tensor operations, so on an
// autodiff backend it stays differentiable with respect to the weights.
func (m *FICNN[B]) InputGradient(x *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	if err := checkBatch("FICNN.InputGradient", x.Shape(), m.cfg.InputSize); err != nil {
		return nil, err
	}
	pre := m.preActivations(x)

	k := len(m.wz)
	delta := m.act.Derivative(pre[k])
	var grad *tensor.Tensor[B]
	for i := k; i >= 1; i-- {
		term := delta.MatMul(m.wy[i-1].Weight().Tensor())
		if grad == nil {
			grad = term
		} else {
			grad = grad.Add(term)
		}
		delta = delta.MatMul(m.wz[i-1].Weight().Tensor()).Mul(m.act.Derivative(pre[i-1]))
	}
	return grad.Add(delta.MatMul(m.w0.Weight().Tensor())), nil
}

// ConstrainedWeights returns Wz_1..Wz_k.
func (m *FICNN[B]) ConstrainedWeights() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], len(m.wz))
	for i, l := range m.wz {
		params[i] = l.Weight()
	}
	return params
}

// Parameters returns every trainable parameter.
func (m *FICNN[B]) Parameters() []*nn.Parameter[B] {
	return parameters(m.layers())
}

// StateDict returns the weights keyed as "w0.weight", "z.<i>.weight",
// "y.<i>.weight" and so on, with i counted from 1.
func (m *FICNN[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDict(m.layers())
}

// LoadStateDict copies weights from a state dict produced by StateDict on a
// network with the same configuration.
func (m *FICNN[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	if err := loadStateDict(m.layers(), state); err != nil {
		return fmt.Errorf("FICNN: %w", err)
	}
	return nil
}

func (m *FICNN[B]) layers() []namedLayer[B] {
	layers := []namedLayer[B]{{prefix: "w0", layer: m.w0}}
	for i := range m.wz {
		layers = append(layers,
			namedLayer[B]{prefix: fmt.Sprintf("z.%d", i+1), layer: m.wz[i]},
			namedLayer[B]{prefix: fmt.Sprintf("y.%d", i+1), layer: m.wy[i]},
		)
	}
	return layers
}

// Config returns the configuration the network was built with.
func (m *FICNN[B]) Config() FICNNConfig { return m.cfg }

// Activation returns the stage activation.
func (m *FICNN[B]) Activation() nn.Activation[B] { return m.act }

// InputSize returns the width of x.
func (m *FICNN[B]) InputSize() int { return m.cfg.InputSize }

// OutputSize returns the output width.
func (m *FICNN[B]) OutputSize() int { return m.cfg.OutputSize }
