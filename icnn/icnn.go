// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package icnn provides input-convex neural networks.
//
// A FICNN is convex in its whole input; a PICNN is convex in y for every
// fixed x. Convexity holds while the z-path weights returned by
// ConstrainedWeights stay non-negative, which a Projector restores after
// every optimizer step.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	model, err := icnn.NewFICNN(icnn.FICNNConfig{
//	    InputSize:  1,
//	    HiddenDim:  8,
//	    NumLayers:  1,
//	    OutputSize: 1,
//	}, backend, rand.New(rand.NewSource(0)))
//	if err != nil {
//	    return err
//	}
//	projector := icnn.NewProjector[*autodiff.Backend[*cpu.Backend]](icnn.DefaultEpsilon)
//	projector.Project(model)
package icnn

import (
	"math/rand"

	"github.com/born-ml/icnn/internal/icnn"
	"github.com/born-ml/icnn/tensor"
)

// Errors returned by model construction and evaluation.
var (
	ErrConfiguration = icnn.ErrConfiguration
	ErrShapeMismatch = icnn.ErrShapeMismatch
	ErrInfeasible    = icnn.ErrInfeasible
)

// ConfigError describes an invalid configuration value.
type ConfigError = icnn.ConfigError

// ShapeError describes an input tensor with the wrong shape.
type ShapeError = icnn.ShapeError

// FeasibilityError locates a negative constrained weight.
type FeasibilityError = icnn.FeasibilityError

// Models

// FICNNConfig configures a fully input-convex network.
type FICNNConfig = icnn.FICNNConfig

// FICNN is a fully input-convex neural network.
type FICNN[B tensor.Backend] = icnn.FICNN[B]

// NewFICNN builds a FICNN with Xavier-uniform weights drawn from rng.
func NewFICNN[B tensor.Backend](cfg FICNNConfig, backend B, rng *rand.Rand) (*FICNN[B], error) {
	return icnn.NewFICNN(cfg, backend, rng)
}

// PICNNConfig configures a partially input-convex network.
type PICNNConfig = icnn.PICNNConfig

// PICNN is a partially input-convex neural network.
type PICNN[B tensor.Backend] = icnn.PICNN[B]

// NewPICNN builds a PICNN with Xavier-uniform weights drawn from rng.
func NewPICNN[B tensor.Backend](cfg PICNNConfig, backend B, rng *rand.Rand) (*PICNN[B], error) {
	return icnn.NewPICNN(cfg, backend, rng)
}

// Conjugate pair

// ConjugateConfig tunes the conjugate-pair objective.
type ConjugateConfig = icnn.ConjugateConfig

// ConjugatePair trains a convex potential u against a conjugate network g.
type ConjugatePair[B tensor.Backend] = icnn.ConjugatePair[B]

// NewConjugatePair pairs u and g.
func NewConjugatePair[B tensor.Backend](u, g *FICNN[B], cfg ConjugateConfig) (*ConjugatePair[B], error) {
	return icnn.NewConjugatePair(u, g, cfg)
}

// Feasibility

// DefaultEpsilon is the value written over negative constrained entries.
const DefaultEpsilon = icnn.DefaultEpsilon

// Constrained is implemented by models with non-negative weight constraints.
type Constrained[B tensor.Backend] = icnn.Constrained[B]

// Projector restores feasibility of constrained weights.
type Projector[B tensor.Backend] = icnn.Projector[B]

// NewProjector creates a projector. A non-positive eps selects DefaultEpsilon.
func NewProjector[B tensor.Backend](eps float64) *Projector[B] {
	return icnn.NewProjector[B](eps)
}

// Feasible reports the first negative constrained entry of models, or nil.
func Feasible[B tensor.Backend](models ...Constrained[B]) error {
	return icnn.Feasible[B](models...)
}
