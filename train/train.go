// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train runs the constrained training loop for input-convex
// networks.
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 1e-4}, backend)
//	step := train.NewSupervisedStep(backend, model, nn.NewL1Loss[Backend](), optimizer, projector)
//	history, err := train.Run(train.Config{Epochs: 2}, batches, step)
//	if errors.Is(err, train.ErrNumericInstability) {
//	    // loss or gradient went NaN/Inf
//	}
package train

import (
	"github.com/born-ml/icnn/icnn"
	"github.com/born-ml/icnn/internal/train"
	"github.com/born-ml/icnn/nn"
	"github.com/born-ml/icnn/optim"
	"github.com/born-ml/icnn/tensor"
)

// ErrNumericInstability reports a loss or gradient that is NaN or infinite.
var ErrNumericInstability = train.ErrNumericInstability

// NumericError locates the first non-finite value seen by the loop.
type NumericError = train.NumericError

// Config controls the training loop.
type Config = train.Config

// History records the losses of a run.
type History = train.History

// StepFunc performs one optimization step and returns its loss.
type StepFunc[T any] = train.StepFunc[T]

// Backend is a backend that records operations for Backward.
type Backend = train.Backend

// Model is a single-input network trained by NewSupervisedStep.
type Model[B tensor.Backend] = train.Model[B]

// PartialModel is a two-input network trained by NewPartialStep.
type PartialModel[B tensor.Backend] = train.PartialModel[B]

// Batch is a supervised batch for a FICNN.
type Batch[B tensor.Backend] = train.Batch[B]

// PartialBatch is a supervised batch for a PICNN.
type PartialBatch[B tensor.Backend] = train.PartialBatch[B]

// ConjugateBatch holds samples for the two sides of a ConjugatePair.
type ConjugateBatch[B tensor.Backend] = train.ConjugateBatch[B]

// StepOption configures a step builder.
type StepOption = train.StepOption

// WithFeasibilityCheck makes every step verify feasibility after projecting.
func WithFeasibilityCheck() StepOption {
	return train.WithFeasibilityCheck()
}

// Run calls step for every batch, cfg.Epochs times.
func Run[T any](cfg Config, batches []T, step StepFunc[T]) (*History, error) {
	return train.Run(cfg, batches, step)
}

// NewSupervisedStep returns a step that fits model to Batch targets.
func NewSupervisedStep[B Backend](
	backend B,
	model Model[B],
	lossFn nn.Loss[B],
	optimizer optim.Optimizer,
	projector *icnn.Projector[B],
	opts ...StepOption,
) StepFunc[Batch[B]] {
	return train.NewSupervisedStep(backend, model, lossFn, optimizer, projector, opts...)
}

// NewPartialStep returns a step that fits a PICNN to PartialBatch targets.
func NewPartialStep[B Backend](
	backend B,
	model PartialModel[B],
	lossFn nn.Loss[B],
	optimizer optim.Optimizer,
	projector *icnn.Projector[B],
	opts ...StepOption,
) StepFunc[PartialBatch[B]] {
	return train.NewPartialStep(backend, model, lossFn, optimizer, projector, opts...)
}

// NewConjugateStep returns a step for a ConjugatePair.
func NewConjugateStep[B Backend](
	backend B,
	pair *icnn.ConjugatePair[B],
	optU, optG optim.Optimizer,
	projector *icnn.Projector[B],
	opts ...StepOption,
) StepFunc[ConjugateBatch[B]] {
	return train.NewConjugateStep(backend, pair, optU, optG, projector, opts...)
}
