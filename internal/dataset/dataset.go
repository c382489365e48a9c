// Package dataset generates the synthetic batches used to train and
// exercise input-convex networks.
//
// All generators draw from the supplied *rand.Rand, so a fixed seed gives a
// fixed dataset.
package dataset

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/icnn/internal/tensor"
	"github.com/born-ml/icnn/internal/train"
)

// UniformSquare returns numBatches batches of batchSize rows drawn uniformly
// from [0,1)^dim, with target x² taken element-wise.
func UniformSquare[B tensor.Backend](rng *rand.Rand, numBatches, batchSize, dim int, backend B) ([]train.Batch[B], error) {
	if err := checkSizes(numBatches, batchSize, dim); err != nil {
		return nil, err
	}

	batches := make([]train.Batch[B], numBatches)
	for i := range batches {
		x := uniform(rng, batchSize*dim)
		y := make([]float64, len(x))
		floats.MulTo(y, x, x)

		batches[i] = train.Batch[B]{
			Input:  mustTensor(x, tensor.Shape{batchSize, dim}, backend),
			Target: mustTensor(y, tensor.Shape{batchSize, dim}, backend),
		}
	}
	return batches, nil
}

// PaddedQuadratic returns batches for a PICNN with x in [0,1)^xDim and y in
// [0,1)^yDim. The target of a row is PaddedTarget(x, y) plus Gaussian noise
// with standard deviation noise.
func PaddedQuadratic[B tensor.Backend](
	rng *rand.Rand,
	numBatches, batchSize, xDim, yDim int,
	noise float64,
	backend B,
) ([]train.PartialBatch[B], error) {
	if err := checkSizes(numBatches, batchSize, xDim); err != nil {
		return nil, err
	}
	if yDim <= 0 {
		return nil, fmt.Errorf("dataset: yDim must be > 0, got %d", yDim)
	}
	if noise < 0 {
		return nil, fmt.Errorf("dataset: noise must be >= 0, got %g", noise)
	}

	batches := make([]train.PartialBatch[B], numBatches)
	for i := range batches {
		x := uniform(rng, batchSize*xDim)
		y := uniform(rng, batchSize*yDim)
		target := make([]float64, batchSize)
		for r := range target {
			target[r] = PaddedTarget(x[r*xDim:(r+1)*xDim], y[r*yDim:(r+1)*yDim]) + noise*rng.NormFloat64()
		}

		batches[i] = train.PartialBatch[B]{
			X:      mustTensor(x, tensor.Shape{batchSize, xDim}, backend),
			Y:      mustTensor(y, tensor.Shape{batchSize, yDim}, backend),
			Target: mustTensor(target, tensor.Shape{batchSize, 1}, backend),
		}
	}
	return batches, nil
}

// PaddedTarget returns Σ_j (x̃_j + ỹ_j)² where x̃ and ỹ are x and y padded
// with trailing zeros to the longer of the two lengths.
//
// Padding only shapes the synthetic target; models always see x and y at
// their own widths.
func PaddedTarget(x, y []float64) float64 {
	n := max(len(x), len(y))
	sum := make([]float64, n)
	copy(sum, x)
	floats.Add(sum[:len(y)], y)
	return floats.Dot(sum, sum)
}

// Conjugate returns batches for a ConjugatePair: X uniform in [0,1)^dim and
// Y standard normal.
func Conjugate[B tensor.Backend](rng *rand.Rand, numBatches, batchSize, dim int, backend B) ([]train.ConjugateBatch[B], error) {
	if err := checkSizes(numBatches, batchSize, dim); err != nil {
		return nil, err
	}

	batches := make([]train.ConjugateBatch[B], numBatches)
	for i := range batches {
		x := uniform(rng, batchSize*dim)
		y := make([]float64, batchSize*dim)
		for j := range y {
			y[j] = rng.NormFloat64()
		}
		batches[i] = train.ConjugateBatch[B]{
			X: mustTensor(x, tensor.Shape{batchSize, dim}, backend),
			Y: mustTensor(y, tensor.Shape{batchSize, dim}, backend),
		}
	}
	return batches, nil
}

func checkSizes(numBatches, batchSize, dim int) error {
	switch {
	case numBatches <= 0:
		return fmt.Errorf("dataset: numBatches must be > 0, got %d", numBatches)
	case batchSize <= 0:
		return fmt.Errorf("dataset: batchSize must be > 0, got %d", batchSize)
	case dim <= 0:
		return fmt.Errorf("dataset: dim must be > 0, got %d", dim)
	}
	return nil
}

func uniform(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()
	}
	return out
}

func mustTensor[B tensor.Backend](data []float64, shape tensor.Shape, backend B) *tensor.Tensor[B] {
	t, err := tensor.FromSlice(data, shape, backend)
	if err != nil {
		panic(fmt.Sprintf("dataset: %v", err))
	}
	return t
}
