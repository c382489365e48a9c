package icnn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

// PICNNConfig configures a partially input-convex network f(x, y), convex
// in y only.
type PICNNConfig struct {
	XSize      int // Width of the unconstrained input x
	YSize      int // Width of the convex input y
	XHidden    int // Width of the context path u_j
	HiddenDim  int // Width of the convex path z_i
	NumLayers  int // Number of hidden convex stages; k = NumLayers + 1
	OutputSize int
	Activation nn.ActivationKind // Empty selects softplus
}

// Validate checks that every size is positive and the activation is known.
func (c PICNNConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"XSize", c.XSize},
		{"YSize", c.YSize},
		{"XHidden", c.XHidden},
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

// picnnStage holds the layers of one convex stage.
type picnnStage[B tensor.Backend] struct {
	gateZ *nn.Linear[B] // c_i -> HiddenDim; nil at stage 0
	gateY *nn.Linear[B] // c_i -> YSize
	wz    *nn.Linear[B] // HiddenDim -> width, constrained; nil at stage 0
	wy    *nn.Linear[B] // YSize -> width
	wu    *nn.Linear[B] // c_i -> width, carries the stage bias
}

// PICNN is a partially input-convex neural network.
//
// A context path c_0 = x, c_{j+1} = σ(U_j c_j + b) runs over x alone. Each
// convex stage mixes the previous z, y and the context:
//
//	a_i = Wz_i (z_{i-1} ⊙ relu(Wzu_i c_i + b)) + Wy_i (y ⊙ (Wyu_i c_i + b)) + Wu_i c_i + b_i
//	z_i = σ(a_i)
//
// Stages run i = 0..k with k = NumLayers + 1; stage k maps to OutputSize.
// The z term is absent at stage 0. Gates multiply z by non-negative values,
// so every output is convex in y whenever the Wz_i are non-negative. No
// convexity in x is implied.
type PICNN[B tensor.Backend] struct {
	cfg     PICNNConfig
	act     nn.Activation[B]
	relu    *nn.ReLU[B]
	context []*nn.Linear[B] // U_0..U_{k-1}
	stages  []picnnStage[B] // stages 0..k
}

// NewPICNN builds a PICNN with Xavier-uniform weights drawn from rng.
func NewPICNN[B tensor.Backend](cfg PICNNConfig, backend B, rng *rand.Rand) (*PICNN[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	act, err := nn.NewActivation[B](cfg.Activation)
	if err != nil {
		return nil, &ConfigError{Field: "Activation", Value: cfg.Activation, Reason: err.Error()}
	}

	m := &PICNN[B]{cfg: cfg, act: act, relu: nn.NewReLU[B]()}

	ctxWidth := func(i int) int {
		if i == 0 {
			return cfg.XSize
		}
		return cfg.XHidden
	}
	k := cfg.NumLayers + 1
	for j := 0; j < k; j++ {
		m.context = append(m.context, nn.NewLinear(ctxWidth(j), cfg.XHidden, backend, rng))
	}

	for i := 0; i <= k; i++ {
		width := cfg.HiddenDim
		if i == k {
			width = cfg.OutputSize
		}
		s := picnnStage[B]{
			gateY: nn.NewLinear(ctxWidth(i), cfg.YSize, backend, rng),
			wy:    nn.NewLinear(cfg.YSize, width, backend, rng, nn.WithoutBias()),
			wu:    nn.NewLinear(ctxWidth(i), width, backend, rng),
		}
		if i > 0 {
			s.gateZ = nn.NewLinear(ctxWidth(i), cfg.HiddenDim, backend, rng)
			s.wz = nn.NewLinear(cfg.HiddenDim, width, backend, rng, nn.WithoutBias())
		}
		m.stages = append(m.stages, s)
	}
	return m, nil
}

// Forward evaluates f(x, y) for x of shape [batch, XSize] and y of shape
// [batch, YSize], returning [batch, OutputSize].
func (m *PICNN[B]) Forward(x, y *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	if err := checkBatch("PICNN.Forward", x.Shape(), m.cfg.XSize); err != nil {
		return nil, err
	}
	if err := checkBatch("PICNN.Forward", y.Shape(), m.cfg.YSize); err != nil {
		return nil, err
	}
	if x.Shape()[0] != y.Shape()[0] {
		return nil, &ShapeError{
			Op:   "PICNN.Forward",
			Want: []int{x.Shape()[0], m.cfg.YSize},
			Got:  append([]int(nil), y.Shape()...),
		}
	}

	c := x
	var z *tensor.Tensor[B]
	for i, s := range m.stages {
		a := s.wy.Forward(y.Mul(s.gateY.Forward(c))).Add(s.wu.Forward(c))
		if z != nil {
			gate := m.relu.Forward(s.gateZ.Forward(c))
			a = a.Add(s.wz.Forward(z.Mul(gate)))
		}
		z = m.act.Forward(a)
		if i < len(m.context) {
			c = m.act.Forward(m.context[i].Forward(c))
		}
	}
	return z, nil
}

// ConstrainedWeights returns Wz_1..Wz_k.
func (m *PICNN[B]) ConstrainedWeights() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, len(m.stages)-1)
	for _, s := range m.stages[1:] {
		params = append(params, s.wz.Weight())
	}
	return params
}

// Parameters returns every trainable parameter.
func (m *PICNN[B]) Parameters() []*nn.Parameter[B] {
	return parameters(m.layers())
}

// StateDict returns the weights keyed by path, e.g. "context.0.weight",
// "gate_y.2.bias" or "z.1.weight".
func (m *PICNN[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDict(m.layers())
}

// LoadStateDict copies weights from a state dict produced by StateDict on a
// network with the same configuration.
func (m *PICNN[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	if err := loadStateDict(m.layers(), state); err != nil {
		return fmt.Errorf("PICNN: %w", err)
	}
	return nil
}

func (m *PICNN[B]) layers() []namedLayer[B] {
	var layers []namedLayer[B]
	for j, l := range m.context {
		layers = append(layers, namedLayer[B]{prefix: fmt.Sprintf("context.%d", j), layer: l})
	}
	for i, s := range m.stages {
		if s.wz != nil {
			layers = append(layers,
				namedLayer[B]{prefix: fmt.Sprintf("gate_z.%d", i), layer: s.gateZ},
				namedLayer[B]{prefix: fmt.Sprintf("z.%d", i), layer: s.wz},
			)
		}
		layers = append(layers,
			namedLayer[B]{prefix: fmt.Sprintf("gate_y.%d", i), layer: s.gateY},
			namedLayer[B]{prefix: fmt.Sprintf("y.%d", i), layer: s.wy},
			namedLayer[B]{prefix: fmt.Sprintf("u.%d", i), layer: s.wu},
		)
	}
	return layers
}

// Config returns the configuration the network was built with.
func (m *PICNN[B]) Config() PICNNConfig { return m.cfg }
