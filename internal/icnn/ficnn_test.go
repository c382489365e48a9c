package icnn_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/icnn/internal/autodiff"
	"github.com/born-ml/icnn/internal/icnn"
	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

func TestNewFICNN_InvalidConfig(t *testing.T) {
	valid := icnn.FICNNConfig{InputSize: 1, HiddenDim: 8, NumLayers: 1, OutputSize: 1}

	tests := []struct {
		name  string
		mut   func(*icnn.FICNNConfig)
		field string
	}{
		{"zero input", func(c *icnn.FICNNConfig) { c.InputSize = 0 }, "InputSize"},
		{"negative hidden", func(c *icnn.FICNNConfig) { c.HiddenDim = -2 }, "HiddenDim"},
		{"zero layers", func(c *icnn.FICNNConfig) { c.NumLayers = 0 }, "NumLayers"},
		{"zero output", func(c *icnn.FICNNConfig) { c.OutputSize = 0 }, "OutputSize"},
		{"unknown activation", func(c *icnn.FICNNConfig) { c.Activation = "tanh" }, "Activation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mut(&cfg)
			_, err := icnn.NewFICNN(cfg, newBackend(), rand.New(rand.NewSource(0)))
			require.Error(t, err)
			assert.ErrorIs(t, err, icnn.ErrConfiguration)

			var ce *icnn.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestFICNN_ShapeContract(t *testing.T) {
	backend := newBackend()
	model := newFICNN(t, backend, icnn.FICNNConfig{InputSize: 1, HiddenDim: 8, NumLayers: 1, OutputSize: 1}, 0)

	x := tensor.Rand(tensor.Shape{16, 1}, rand.New(rand.NewSource(1)), backend)
	out, err := model.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{16, 1}, out.Shape())
}

func TestFICNN_ForwardRejectsBadShape(t *testing.T) {
	backend := newBackend()
	model := newFICNN(t, backend, icnn.FICNNConfig{InputSize: 3, HiddenDim: 4, NumLayers: 1, OutputSize: 1}, 0)

	for _, shape := range []tensor.Shape{{4, 2}, {3}, {2, 3, 1}} {
		_, err := model.Forward(tensor.Zeros(shape, backend))
		require.Error(t, err, "shape %v", shape)
		assert.ErrorIs(t, err, icnn.ErrShapeMismatch)

		var se *icnn.ShapeError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "FICNN.Forward", se.Op)
	}

	_, err := model.InputGradient(tensor.Zeros(tensor.Shape{4, 2}, backend))
	assert.ErrorIs(t, err, icnn.ErrShapeMismatch)
}

func TestFICNN_ParametersAndConstrainedWeights(t *testing.T) {
	backend := newBackend()
	model := newFICNN(t, backend, icnn.FICNNConfig{InputSize: 2, HiddenDim: 5, NumLayers: 3, OutputSize: 1}, 0)

	// w0 (weight+bias) + 4 × (z weight, y weight+bias)
	assert.Len(t, model.Parameters(), 2+4*3)

	constrained := model.ConstrainedWeights()
	require.Len(t, constrained, 4)
	assert.Equal(t, tensor.Shape{5, 5}, constrained[0].Tensor().Shape())
	assert.Equal(t, tensor.Shape{5, 5}, constrained[1].Tensor().Shape())
	assert.Equal(t, tensor.Shape{5, 5}, constrained[2].Tensor().Shape())
	assert.Equal(t, tensor.Shape{1, 5}, constrained[3].Tensor().Shape())
}

// NumLayers counts hidden stages; the output stage comes on top.
func TestFICNN_DepthIsNumLayersPlusOne(t *testing.T) {
	backend := newBackend()
	model := newFICNN(t, backend, icnn.FICNNConfig{InputSize: 1, HiddenDim: 8, NumLayers: 1, OutputSize: 1}, 0)

	require.Len(t, model.ConstrainedWeights(), 2)
	state := model.StateDict()
	require.Contains(t, state, "z.1.weight")
	require.Contains(t, state, "z.2.weight")
	assert.Equal(t, tensor.Shape{8, 8}, state["z.1.weight"].Shape())
	assert.Equal(t, tensor.Shape{1, 8}, state["z.2.weight"].Shape())
	assert.NotContains(t, state, "z.3.weight")
}

// Convexity along segments: f(λa + (1-λ)b) ≤ λf(a) + (1-λ)f(b).
func TestFICNN_NumericalConvexity(t *testing.T) {
	for _, act := range []nn.ActivationKind{nn.ActivationSoftplus, nn.ActivationReLU, nn.ActivationLeakyReLU} {
		t.Run(string(act), func(t *testing.T) {
			backend := newBackend()
			cfg := icnn.FICNNConfig{InputSize: 3, HiddenDim: 16, NumLayers: 3, OutputSize: 2, Activation: act}
			model := newFICNN(t, backend, cfg, 7)
			icnn.NewProjector[backendT](0).Project(model)

			rng := rand.New(rand.NewSource(8))
			eval := func(x []float64) []float64 {
				out, err := model.Forward(fromSlice(t, backend, x, 1, cfg.InputSize))
				require.NoError(t, err)
				return out.Data()
			}

			for pair := 0; pair < 5; pair++ {
				a := randomRows(rng, 1, cfg.InputSize)
				b := randomRows(rng, 1, cfg.InputSize)
				fa, fb := eval(a), eval(b)
				for _, lambda := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
					fm := eval(lerp(lambda, a, b))
					for o := range fm {
						chord := lambda*fa[o] + (1-lambda)*fb[o]
						assert.LessOrEqual(t, fm[o], chord+1e-9, "pair %d λ=%v output %d", pair, lambda, o)
					}
				}
			}
		})
	}
}

func TestFICNN_InputGradientMatchesFiniteDifference(t *testing.T) {
	backend := newBackend()
	cfg := icnn.FICNNConfig{InputSize: 3, HiddenDim: 6, NumLayers: 2, OutputSize: 1}
	model := newFICNN(t, backend, cfg, 11)
	icnn.NewProjector[backendT](0).Project(model)

	rng := rand.New(rand.NewSource(12))
	x := randomRows(rng, 1, cfg.InputSize)

	grad, err := model.InputGradient(fromSlice(t, backend, x, 1, cfg.InputSize))
	require.NoError(t, err)

	numeric := fd.Gradient(nil, func(v []float64) float64 {
		out, err := model.Forward(fromSlice(t, backend, v, 1, cfg.InputSize))
		require.NoError(t, err)
		return out.Item()
	}, x, &fd.Settings{Formula: fd.Central, Step: 1e-6})

	assert.InDeltaSlice(t, numeric, grad.Data(), 1e-6)
}

func TestFICNN_InputGradientNoCrossExampleLeakage(t *testing.T) {
	backend := newBackend()
	cfg := icnn.FICNNConfig{InputSize: 2, HiddenDim: 8, NumLayers: 2, OutputSize: 1, Activation: nn.ActivationLeakyReLU}
	model := newFICNN(t, backend, cfg, 13)
	icnn.NewProjector[backendT](0).Project(model)

	const batch = 6
	rng := rand.New(rand.NewSource(14))
	x := fromSlice(t, backend, randomRows(rng, batch, cfg.InputSize), batch, cfg.InputSize)

	full, err := model.InputGradient(x)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{batch, cfg.InputSize}, full.Shape())

	for b := 0; b < batch; b++ {
		row, err := model.InputGradient(fromSlice(t, backend, x.Row(b), 1, cfg.InputSize))
		require.NoError(t, err)
		assert.InDeltaSlice(t, row.Data(), full.Row(b), 1e-12, "row %d", b)
	}
}

// The input gradient is itself differentiable in the weights; compare the
// tape gradient of Σ ∇f(x) against finite differences in one weight.
func TestFICNN_InputGradientIsDifferentiable(t *testing.T) {
	backend := newBackend()
	cfg := icnn.FICNNConfig{InputSize: 2, HiddenDim: 4, NumLayers: 2, OutputSize: 1}
	model := newFICNN(t, backend, cfg, 15)
	icnn.NewProjector[backendT](0).Project(model)

	x := fromSlice(t, backend, []float64{0.3, -0.7, 1.2, 0.4}, 2, cfg.InputSize)
	objective := func() *tensor.Tensor[backendT] {
		g, err := model.InputGradient(x)
		require.NoError(t, err)
		return g.Square().Sum()
	}

	backend.Tape().StartRecording()
	grads := autodiff.Backward(objective(), backend)
	backend.Tape().StopRecording()

	w := model.ConstrainedWeights()[0].Tensor()
	require.Contains(t, grads, w.Raw())

	numeric := fd.Gradient(nil, func(v []float64) float64 {
		saved := append([]float64(nil), w.Data()...)
		copy(w.Data(), v)
		defer copy(w.Data(), saved)
		return objective().Item()
	}, append([]float64(nil), w.Data()...), &fd.Settings{Formula: fd.Central, Step: 1e-6})

	assert.InDeltaSlice(t, numeric, grads[w.Raw()].Data(), 1e-5)
}

func TestFICNN_StateDictRoundTrip(t *testing.T) {
	backend := newBackend()
	cfg := icnn.FICNNConfig{InputSize: 2, HiddenDim: 4, NumLayers: 2, OutputSize: 1}
	src := newFICNN(t, backend, cfg, 21)
	dst := newFICNN(t, backend, cfg, 22)

	state := src.StateDict()
	assert.Contains(t, state, "w0.weight")
	assert.Contains(t, state, "w0.bias")
	assert.Contains(t, state, "z.2.weight")
	assert.NotContains(t, state, "z.1.bias")
	assert.Contains(t, state, "y.1.bias")

	require.NoError(t, dst.LoadStateDict(state))

	x := fromSlice(t, backend, []float64{0.5, -1}, 1, 2)
	a, err := src.Forward(x)
	require.NoError(t, err)
	b, err := dst.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())

	other := newFICNN(t, backend, icnn.FICNNConfig{InputSize: 2, HiddenDim: 5, NumLayers: 2, OutputSize: 1}, 23)
	assert.Error(t, other.LoadStateDict(state))

	delete(state, "y.2.bias")
	assert.Error(t, dst.LoadStateDict(state))
}
