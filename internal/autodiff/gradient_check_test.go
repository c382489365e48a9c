package autodiff_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/icnn/internal/autodiff"
	"github.com/born-ml/icnn/internal/backend/cpu"
	"github.com/born-ml/icnn/internal/tensor"
)

// checkGradient compares the tape gradient of f at x against a central
// finite difference.
func checkGradient(t *testing.T, x []float64, shape tensor.Shape,
	f func(b adBackend, x *tensor.Tensor[adBackend]) *tensor.Tensor[adBackend],
) {
	t.Helper()

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	xt := fromSlice(t, backend, x, shape...)
	grads := autodiff.Backward(f(backend, xt), backend)
	require.Contains(t, grads, xt.Raw())

	numeric := fd.Gradient(nil, func(v []float64) float64 {
		b := autodiff.New(cpu.New())
		vt, err := tensor.FromSlice(v, shape, b)
		require.NoError(t, err)
		return f(b, vt).Item()
	}, x, &fd.Settings{Formula: fd.Central, Step: 1e-6})

	assert.InDeltaSlice(t, numeric, grads[xt.Raw()].Data(), 1e-6)
}

func randomSlice(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func TestGradientCheck_SoftplusLayer(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	wData := randomSlice(rng, 12)
	bData := randomSlice(rng, 4)

	checkGradient(t, randomSlice(rng, 6), tensor.Shape{2, 3}, func(b adBackend, x *tensor.Tensor[adBackend]) *tensor.Tensor[adBackend] {
		w, _ := tensor.FromSlice(wData, tensor.Shape{4, 3}, b)
		bias, _ := tensor.FromSlice(bData, tensor.Shape{1, 4}, b)
		a := x.MatMul(w.T()).Add(bias)
		return tensor.New(b.Softplus(a.Raw()), b).Sum()
	})
}

func TestGradientCheck_SigmoidTimesInput(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	checkGradient(t, randomSlice(rng, 4), tensor.Shape{4}, func(b adBackend, x *tensor.Tensor[adBackend]) *tensor.Tensor[adBackend] {
		s := tensor.New(b.Sigmoid(x.Raw()), b)
		return s.Mul(x).Sum()
	})
}

func TestGradientCheck_LeakyReLU(t *testing.T) {
	x := []float64{-1.5, -0.3, 0.4, 2.0}

	checkGradient(t, x, tensor.Shape{2, 2}, func(b adBackend, x *tensor.Tensor[adBackend]) *tensor.Tensor[adBackend] {
		return tensor.New(b.LeakyReLU(x.Raw(), 0.1), b).Square().Sum()
	})
}

func TestGradientCheck_ReLUExpandMean(t *testing.T) {
	x := []float64{-1, 0.5, 2}

	checkGradient(t, x, tensor.Shape{1, 3}, func(b adBackend, x *tensor.Tensor[adBackend]) *tensor.Tensor[adBackend] {
		r := tensor.New(b.ReLU(x.Raw()), b)
		return r.Expand(4, 3).AddScalar(1).Square().Mean()
	})
}

func TestGradientCheck_ReshapeSumDim(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	checkGradient(t, randomSlice(rng, 6), tensor.Shape{6}, func(_ adBackend, x *tensor.Tensor[adBackend]) *tensor.Tensor[adBackend] {
		return x.Reshape(2, 3).SumDim(0, true).Square().Sum()
	})
}
