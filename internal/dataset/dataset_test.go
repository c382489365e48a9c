package dataset_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/icnn/internal/backend/cpu"
	"github.com/born-ml/icnn/internal/dataset"
	"github.com/born-ml/icnn/internal/tensor"
)

func TestUniformSquare(t *testing.T) {
	backend := cpu.New()
	batches, err := dataset.UniformSquare(rand.New(rand.NewSource(1)), 4, 16, 1, backend)
	require.NoError(t, err)
	require.Len(t, batches, 4)

	for _, b := range batches {
		assert.Equal(t, tensor.Shape{16, 1}, b.Input.Shape())
		assert.Equal(t, tensor.Shape{16, 1}, b.Target.Shape())
		for i, x := range b.Input.Data() {
			assert.GreaterOrEqual(t, x, 0.0)
			assert.Less(t, x, 1.0)
			assert.InDelta(t, x*x, b.Target.Data()[i], 1e-15)
		}
	}
}

func TestUniformSquare_Deterministic(t *testing.T) {
	backend := cpu.New()
	a, err := dataset.UniformSquare(rand.New(rand.NewSource(7)), 2, 8, 2, backend)
	require.NoError(t, err)
	b, err := dataset.UniformSquare(rand.New(rand.NewSource(7)), 2, 8, 2, backend)
	require.NoError(t, err)
	for i := range a {
		assert.Equal(t, a[i].Input.Data(), b[i].Input.Data())
	}
}

func TestPaddedTarget(t *testing.T) {
	// (1+4)² + (2+5)² + (0+6)²
	assert.Equal(t, 25.0+49+36, dataset.PaddedTarget([]float64{1, 2}, []float64{4, 5, 6}))
	assert.Equal(t, 25.0+49+36, dataset.PaddedTarget([]float64{4, 5, 6}, []float64{1, 2}))
	assert.Equal(t, 4.0, dataset.PaddedTarget([]float64{1}, []float64{1}))
}

func TestPaddedQuadratic_XNarrowerThanY(t *testing.T) {
	backend := cpu.New()
	const xDim, yDim, batch = 2, 3, 32
	batches, err := dataset.PaddedQuadratic(rand.New(rand.NewSource(3)), 2, batch, xDim, yDim, 0.01, backend)
	require.NoError(t, err)

	for _, b := range batches {
		require.Equal(t, tensor.Shape{batch, xDim}, b.X.Shape())
		require.Equal(t, tensor.Shape{batch, yDim}, b.Y.Shape())
		require.Equal(t, tensor.Shape{batch, 1}, b.Target.Shape())

		for r := 0; r < batch; r++ {
			x, y := b.X.Data()[r*xDim:(r+1)*xDim], b.Y.Data()[r*yDim:(r+1)*yDim]
			want := (x[0]+y[0])*(x[0]+y[0]) + (x[1]+y[1])*(x[1]+y[1]) + y[2]*y[2]
			assert.InDelta(t, want, b.Target.Data()[r], 0.05, "row %d", r)
		}
	}
}

func TestGenerators_RejectBadSizes(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(0))

	_, err := dataset.UniformSquare(rng, 0, 16, 1, backend)
	assert.Error(t, err)
	_, err = dataset.PaddedQuadratic(rng, 1, 16, 2, 0, 0, backend)
	assert.Error(t, err)
	_, err = dataset.PaddedQuadratic(rng, 1, 16, 2, 3, -1, backend)
	assert.Error(t, err)
	_, err = dataset.Conjugate(rng, 1, -1, 2, backend)
	assert.Error(t, err)
}

func TestConjugate(t *testing.T) {
	backend := cpu.New()
	batches, err := dataset.Conjugate(rand.New(rand.NewSource(5)), 3, 64, 2, backend)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	for _, b := range batches {
		assert.Equal(t, tensor.Shape{64, 2}, b.X.Shape())
		assert.Equal(t, tensor.Shape{64, 2}, b.Y.Shape())
	}
}
