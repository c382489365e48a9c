package icnn

import (
	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

// DefaultEpsilon is the value written over negative constrained entries.
const DefaultEpsilon = 1e-6

// Constrained is implemented by models whose convexity depends on a subset
// of weights staying non-negative.
type Constrained[B tensor.Backend] interface {
	// ConstrainedWeights returns the weights that must stay >= 0. Biases and
	// unconstrained paths are never included.
	ConstrainedWeights() []*nn.Parameter[B]
}

// noGradBackend is implemented by backends that can suspend recording.
type noGradBackend interface {
	NoGrad(fn func())
}

// Projector restores weight feasibility after an optimizer step by
// replacing every negative constrained entry with Epsilon.
//
// Example:
//
//	projector := icnn.NewProjector[Backend](icnn.DefaultEpsilon)
//	optimizer.Step(grads)
//	projector.Project(model)
type Projector[B tensor.Backend] struct {
	Epsilon float64
}

// NewProjector creates a projector. A non-positive eps selects DefaultEpsilon.
func NewProjector[B tensor.Backend](eps float64) *Projector[B] {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	return &Projector[B]{Epsilon: eps}
}

// Project clamps the constrained weights of every model in place. Entries
// that are already non-negative are left untouched, so Project is
// idempotent. Nothing is recorded on an autodiff tape.
func (p *Projector[B]) Project(models ...Constrained[B]) {
	eps := p.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	for _, model := range models {
		for _, w := range model.ConstrainedWeights() {
			clamp := func() { w.ClampMin(eps) }
			if ng, ok := any(w.Tensor().Backend()).(noGradBackend); ok {
				ng.NoGrad(clamp)
			} else {
				clamp()
			}
		}
	}
}

// Feasible returns a *FeasibilityError for the first negative entry among
// the constrained weights of models, or nil.
func Feasible[B tensor.Backend](models ...Constrained[B]) error {
	for m, model := range models {
		for w, param := range model.ConstrainedWeights() {
			if i, v, ok := param.FirstNegative(); ok {
				return &FeasibilityError{Model: m, Weight: w, Index: i, Value: v}
			}
		}
	}
	return nil
}
