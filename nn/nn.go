// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/tensor"
)

// Layers

// Linear represents a fully connected (dense) layer: y = x @ W.T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// LinearOption configures a Linear layer at construction.
type LinearOption = nn.LinearOption

// WithoutBias builds a Linear layer without a bias term.
func WithoutBias() LinearOption {
	return nn.WithoutBias()
}

// NewLinear creates a new linear layer with Xavier-uniform weights drawn
// from rng and a zero bias.
//
// Example:
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(0))
//	layer := nn.NewLinear(4, 8, backend, rng)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, rng *rand.Rand, opts ...LinearOption) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend, rng, opts...)
}

// Initialization

// Xavier returns a tensor with Xavier/Glorot-uniform entries.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[B] {
	return nn.Xavier(fanIn, fanOut, shape, rng, backend)
}

// Zeros returns a zero tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[B] {
	return nn.Zeros(shape, backend)
}

// Activations

// Activation is a convex, non-decreasing element-wise activation.
type Activation[B tensor.Backend] = nn.Activation[B]

// ActivationKind names an activation in configuration.
type ActivationKind = nn.ActivationKind

// Supported activations. The zero value selects Softplus.
const (
	ActivationSoftplus  = nn.ActivationSoftplus
	ActivationReLU      = nn.ActivationReLU
	ActivationLeakyReLU = nn.ActivationLeakyReLU
)

// DefaultLeakySlope is the negative slope used by ActivationLeakyReLU.
const DefaultLeakySlope = nn.DefaultLeakySlope

// NewActivation returns the activation for kind.
func NewActivation[B tensor.Backend](kind ActivationKind) (Activation[B], error) {
	return nn.NewActivation[B](kind)
}

// ReLU applies max(0, x).
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// LeakyReLU applies x for x > 0 and slope·x otherwise.
type LeakyReLU[B tensor.Backend] = nn.LeakyReLU[B]

// NewLeakyReLU creates a LeakyReLU with the given negative slope.
func NewLeakyReLU[B tensor.Backend](slope float64) *LeakyReLU[B] {
	return nn.NewLeakyReLU[B](slope)
}

// Softplus applies log(1 + exp(x)).
type Softplus[B tensor.Backend] = nn.Softplus[B]

// NewSoftplus creates a new Softplus activation.
func NewSoftplus[B tensor.Backend]() *Softplus[B] {
	return nn.NewSoftplus[B]()
}

// Loss Functions

// Loss maps predictions and targets to a scalar.
type Loss[B tensor.Backend] = nn.Loss[B]

// MSELoss computes mean squared error.
type MSELoss[B tensor.Backend] = nn.MSELoss[B]

// NewMSELoss creates a new MSE loss.
func NewMSELoss[B tensor.Backend]() *MSELoss[B] {
	return nn.NewMSELoss[B]()
}

// L1Loss computes mean absolute error.
type L1Loss[B tensor.Backend] = nn.L1Loss[B]

// NewL1Loss creates a new L1 loss.
func NewL1Loss[B tensor.Backend]() *L1Loss[B] {
	return nn.NewL1Loss[B]()
}

// Checkpoints

// Checkpoint bundles model and optimizer state with training metadata.
type Checkpoint = nn.Checkpoint

// OptimizerState is implemented by optimizers that can be checkpointed.
type OptimizerState = nn.OptimizerState

// LoadCheckpoint restores model and optimizer state from path.
func LoadCheckpoint(path string, model Stateful, optimizer OptimizerState) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path, model, optimizer)
}
