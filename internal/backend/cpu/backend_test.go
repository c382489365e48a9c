package cpu_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/icnn/internal/backend/cpu"
	"github.com/born-ml/icnn/internal/parallel"
	"github.com/born-ml/icnn/internal/tensor"
)

func raw(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.RawFromSlice(data, tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	return r
}

func TestAdd_SameShape(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4}, 2, 2)
	b := raw(t, []float64{10, 20, 30, 40}, 2, 2)

	out := backend.Add(a, b)

	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float64{11, 22, 33, 44}, out.Data())
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data(), "inputs must not be modified")
}

func TestAdd_BroadcastRowVector(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 3, 2)
	bias := raw(t, []float64{10, 100}, 1, 2)

	out := backend.Add(a, bias)

	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float64{11, 102, 13, 104, 15, 106}, out.Data())
}

func TestMul_BroadcastColumnVector(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	col := raw(t, []float64{2, -1}, 2, 1)

	out := backend.Mul(a, col)

	assert.Equal(t, []float64{2, 4, 6, -4, -5, -6}, out.Data())
}

func TestSub_ScalarBroadcast(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3}, 3)
	s := raw(t, []float64{1}, 1)

	out := backend.Sub(a, s)

	assert.Equal(t, []float64{0, 1, 2}, out.Data())
}

func TestAdd_IncompatiblePanics(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := raw(t, []float64{1, 2}, 2)

	assert.Panics(t, func() { backend.Add(a, b) })
}

func TestMatMul(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := raw(t, []float64{7, 8, 9, 10, 11, 12}, 3, 2)

	out := backend.MatMul(a, b)

	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, out.Data())
}

func TestMatMul_ShapeMismatchPanics(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	assert.Panics(t, func() { backend.MatMul(a, a) })
}

func TestTranspose(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	out := backend.Transpose(a)

	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, out.Data())
}

func TestExpand(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2}, 1, 2)

	out := backend.Expand(a, tensor.Shape{3, 2})

	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2}, out.Data())
}

func TestReshape(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	out := backend.Reshape(a, tensor.Shape{3, 2})
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, a.Data(), out.Data())

	assert.Panics(t, func() { backend.Reshape(a, tensor.Shape{4, 2}) })
}

func TestSumAndSumDim(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	assert.Equal(t, 21.0, backend.Sum(a).Data()[0])
	assert.Empty(t, backend.Sum(a).Shape())

	rows := backend.SumDim(a, 1, true)
	assert.Equal(t, tensor.Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.Data())

	cols := backend.SumDim(a, 0, false)
	assert.Equal(t, tensor.Shape{3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.Data())

	last := backend.SumDim(a, -1, false)
	assert.Equal(t, []float64{6, 15}, last.Data())
}

func TestScalarAndMath(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{-2, 0, 3}, 3)

	assert.Equal(t, []float64{-4, 0, 6}, backend.MulScalar(a, 2).Data())
	assert.Equal(t, []float64{-1, 1, 4}, backend.AddScalar(a, 1).Data())
	assert.Equal(t, []float64{2, 0, 3}, backend.Abs(a).Data())
	assert.Equal(t, []float64{4, 0, 9}, backend.Square(a).Data())
	assert.Equal(t, []float64{-2, 0, 3}, a.Data())
}

func TestActivations(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{-2, 0, 3}, 3)

	assert.Equal(t, []float64{0, 0, 3}, backend.ReLU(a).Data())
	assert.Equal(t, []float64{-0.2, 0, 3}, backend.LeakyReLU(a, 0.1).Data())
	assert.Equal(t, []float64{0, 0, 1}, backend.Heaviside(a).Data())

	sp := backend.Softplus(a).Data()
	sg := backend.Sigmoid(a).Data()
	for i, v := range a.Data() {
		assert.InDelta(t, math.Log(1+math.Exp(v)), sp[i], 1e-12)
		assert.InDelta(t, 1/(1+math.Exp(-v)), sg[i], 1e-12)
	}
}

func TestSoftplus_Stable(t *testing.T) {
	assert.InDelta(t, 1000.0, cpu.Softplus(1000), 1e-9)
	assert.InDelta(t, 0.0, cpu.Softplus(-1000), 1e-12)
	assert.InDelta(t, 1.0, cpu.Sigmoid(1000), 1e-12)
	assert.InDelta(t, 0.0, cpu.Sigmoid(-1000), 1e-12)
}

func TestActivations_ParallelMatchesSequential(t *testing.T) {
	n := 10000
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i-n/2) / 100
	}
	x := raw(t, data, 100, 100)

	seq := cpu.NewWithConfig(parallel.Sequential())
	par := cpu.NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 128})

	assert.Equal(t, seq.Softplus(x).Data(), par.Softplus(x).Data())
	assert.Equal(t, seq.LeakyReLU(x, 0.01).Data(), par.LeakyReLU(x, 0.01).Data())
	assert.Equal(t, seq.Abs(x).Data(), par.Abs(x).Data())
}
