package icnn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/icnn/internal/icnn"
	"github.com/born-ml/icnn/internal/tensor"
)

func picnnConfig() icnn.PICNNConfig {
	return icnn.PICNNConfig{XSize: 2, YSize: 3, XHidden: 6, HiddenDim: 8, NumLayers: 2, OutputSize: 1}
}

func newPICNN(t *testing.T, b backendT, cfg icnn.PICNNConfig, seed int64) *icnn.PICNN[backendT] {
	t.Helper()
	m, err := icnn.NewPICNN(cfg, b, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return m
}

func TestNewPICNN_InvalidConfig(t *testing.T) {
	cfg := picnnConfig()
	cfg.XHidden = 0
	_, err := icnn.NewPICNN(cfg, newBackend(), rand.New(rand.NewSource(0)))
	assert.ErrorIs(t, err, icnn.ErrConfiguration)

	cfg = picnnConfig()
	cfg.Activation = "gelu"
	_, err = icnn.NewPICNN(cfg, newBackend(), rand.New(rand.NewSource(0)))
	assert.ErrorIs(t, err, icnn.ErrConfiguration)
}

func TestPICNN_ForwardShape(t *testing.T) {
	backend := newBackend()
	cfg := picnnConfig()
	model := newPICNN(t, backend, cfg, 1)

	rng := rand.New(rand.NewSource(2))
	x := tensor.Rand(tensor.Shape{16, cfg.XSize}, rng, backend)
	y := tensor.Rand(tensor.Shape{16, cfg.YSize}, rng, backend)

	out, err := model.Forward(x, y)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{16, 1}, out.Shape())
}

func TestPICNN_ForwardRejectsBadShape(t *testing.T) {
	backend := newBackend()
	cfg := picnnConfig()
	model := newPICNN(t, backend, cfg, 1)

	_, err := model.Forward(tensor.Zeros(tensor.Shape{4, 3}, backend), tensor.Zeros(tensor.Shape{4, 3}, backend))
	assert.ErrorIs(t, err, icnn.ErrShapeMismatch)

	_, err = model.Forward(tensor.Zeros(tensor.Shape{4, 2}, backend), tensor.Zeros(tensor.Shape{4, 2}, backend))
	assert.ErrorIs(t, err, icnn.ErrShapeMismatch)

	_, err = model.Forward(tensor.Zeros(tensor.Shape{4, 2}, backend), tensor.Zeros(tensor.Shape{5, 3}, backend))
	assert.ErrorIs(t, err, icnn.ErrShapeMismatch, "batch sizes must agree")
}

func TestPICNN_ConstrainedWeights(t *testing.T) {
	backend := newBackend()
	model := newPICNN(t, backend, picnnConfig(), 1)

	constrained := model.ConstrainedWeights()
	require.Len(t, constrained, 3)
	assert.Equal(t, tensor.Shape{8, 8}, constrained[0].Tensor().Shape())
	assert.Equal(t, tensor.Shape{8, 8}, constrained[1].Tensor().Shape())
	assert.Equal(t, tensor.Shape{1, 8}, constrained[2].Tensor().Shape())

	state := model.StateDict()
	assert.Contains(t, state, "u.3.bias", "stage k = NumLayers + 1")
	assert.Contains(t, state, "context.2.weight")
	assert.NotContains(t, state, "z.4.weight")
}

// For every fixed x the network must be convex in y.
func TestPICNN_NumericalConvexityInY(t *testing.T) {
	backend := newBackend()
	cfg := picnnConfig()
	model := newPICNN(t, backend, cfg, 3)
	icnn.NewProjector[backendT](0).Project(model)

	rng := rand.New(rand.NewSource(4))
	for trial := 0; trial < 5; trial++ {
		x := fromSlice(t, backend, randomRows(rng, 1, cfg.XSize), 1, cfg.XSize)
		eval := func(y []float64) float64 {
			out, err := model.Forward(x, fromSlice(t, backend, y, 1, cfg.YSize))
			require.NoError(t, err)
			return out.Item()
		}

		a := randomRows(rng, 1, cfg.YSize)
		b := randomRows(rng, 1, cfg.YSize)
		fa, fb := eval(a), eval(b)
		for _, lambda := range []float64{0.2, 0.5, 0.8} {
			fm := eval(lerp(lambda, a, b))
			assert.LessOrEqual(t, fm, lambda*fa+(1-lambda)*fb+1e-9, "trial %d λ=%v", trial, lambda)
		}
	}
}

func TestPICNN_StateDictRoundTrip(t *testing.T) {
	backend := newBackend()
	cfg := picnnConfig()
	src := newPICNN(t, backend, cfg, 5)
	dst := newPICNN(t, backend, cfg, 6)

	state := src.StateDict()
	for _, name := range []string{"context.0.weight", "context.1.bias", "gate_y.0.weight", "gate_z.1.bias", "z.2.weight", "u.2.bias"} {
		assert.Contains(t, state, name)
	}
	assert.NotContains(t, state, "gate_z.0.weight", "stage 0 has no z path")
	assert.Len(t, src.Parameters(), len(state))

	require.NoError(t, dst.LoadStateDict(state))

	rng := rand.New(rand.NewSource(7))
	x := tensor.Rand(tensor.Shape{3, cfg.XSize}, rng, backend)
	y := tensor.Rand(tensor.Shape{3, cfg.YSize}, rng, backend)
	a, err := src.Forward(x, y)
	require.NoError(t, err)
	b, err := dst.Forward(x, y)
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())
}
