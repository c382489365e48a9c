package icnn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/icnn/internal/autodiff"
	"github.com/born-ml/icnn/internal/backend/cpu"
	"github.com/born-ml/icnn/internal/icnn"
	"github.com/born-ml/icnn/internal/tensor"
)

type backendT = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newBackend() backendT {
	return autodiff.New(cpu.New())
}

func fromSlice(t *testing.T, b backendT, data []float64, shape ...int) *tensor.Tensor[backendT] {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape), b)
	require.NoError(t, err)
	return x
}

func randomRows(rng *rand.Rand, n, width int) []float64 {
	out := make([]float64, n*width)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func newFICNN(t *testing.T, b backendT, cfg icnn.FICNNConfig, seed int64) *icnn.FICNN[backendT] {
	t.Helper()
	m, err := icnn.NewFICNN(cfg, b, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return m
}

// lerp returns lambda*a + (1-lambda)*b.
func lerp(lambda float64, a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = lambda*a[i] + (1-lambda)*b[i]
	}
	return out
}
