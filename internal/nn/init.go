package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/icnn/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// The generator is supplied by the caller so that model construction is
// reproducible from a seed.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform(shape, -bound, bound, rng, backend)
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[B] {
	return tensor.Zeros(shape, backend)
}
