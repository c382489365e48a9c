package tensor

import "math/rand"

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{3, 4}, backend)
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	raw, err := NewRaw(shape, b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return New(raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[B Backend](shape Shape, b B) *Tensor[B] {
	return Full(shape, 1, b)
}

// Full creates a tensor filled with a specific value.
func Full[B Backend](shape Shape, value float64, b B) *Tensor[B] {
	t := Zeros(shape, b)
	t.raw.Fill(value)
	return t
}

// Uniform creates a tensor with values drawn uniformly from [lo, hi).
// Uses math/rand (not crypto/rand), which is what reproducible training wants.
func Uniform[B Backend](shape Shape, lo, hi float64, rng *rand.Rand, b B) *Tensor[B] {
	t := Zeros(shape, b)
	data := t.Data()
	for i := range data {
		data[i] = lo + (hi-lo)*rng.Float64()
	}
	return t
}

// Rand creates a tensor with values uniformly distributed in [0, 1).
func Rand[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	return Uniform(shape, 0, 1, rng, b)
}

// Randn creates a tensor with values from the standard normal distribution.
func Randn[B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[B] {
	t := Zeros(shape, b)
	data := t.Data()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return t
}
