package icnn

import (
	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

// ConjugateConfig tunes the conjugate-pair objective.
type ConjugateConfig struct {
	// AverageValue divides the conjugate value term by the batch size.
	// Off by default, in which case the term is summed over the batch.
	AverageValue bool
}

// ConjugatePair trains a convex potential u against a second network g
// whose input gradient approximates the conjugate map.
//
// For a batch (X, Y) the objective is
//
//	G     = ∇_Y g(Y)                      (row-wise)
//	value = Σ_b ⟨G_b, Y_b⟩ - u(G_b)
//	loss  = mean(u(X)) + mean(value)
//
// u minimizes loss and g maximizes it.
type ConjugatePair[B tensor.Backend] struct {
	u, g *FICNN[B]
	cfg  ConjugateConfig
}

// NewConjugatePair pairs u and g. They must share an input width and g must
// be scalar-valued.
func NewConjugatePair[B tensor.Backend](u, g *FICNN[B], cfg ConjugateConfig) (*ConjugatePair[B], error) {
	if u == nil || g == nil {
		return nil, &ConfigError{Field: "ConjugatePair", Value: nil, Reason: "u and g are required"}
	}
	if u.InputSize() != g.InputSize() {
		return nil, &ConfigError{
			Field:  "InputSize",
			Value:  g.InputSize(),
			Reason: "g must have the same input width as u",
		}
	}
	if g.OutputSize() != 1 {
		return nil, &ConfigError{Field: "OutputSize", Value: g.OutputSize(), Reason: "g must be scalar-valued"}
	}
	return &ConjugatePair[B]{u: u, g: g, cfg: cfg}, nil
}

// Loss returns the scalar objective for X and Y, both [batch, InputSize].
// The batches of X and Y need not have the same length.
func (p *ConjugatePair[B]) Loss(x, y *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	ux, err := p.u.Forward(x)
	if err != nil {
		return nil, err
	}
	grad, err := p.g.InputGradient(y)
	if err != nil {
		return nil, err
	}
	ug, err := p.u.Forward(grad)
	if err != nil {
		return nil, err
	}

	// [batch, 1] - [batch, out] broadcasts to [batch, out].
	inner := grad.Mul(y).SumDim(1, true)
	value := inner.Sub(ug).SumDim(0, false)
	if p.cfg.AverageValue {
		value = value.MulScalar(1 / float64(y.Shape()[0]))
	}
	return ux.Mean().Add(value.Mean()), nil
}

// U returns the convex potential.
func (p *ConjugatePair[B]) U() *FICNN[B] { return p.u }

// G returns the conjugate network.
func (p *ConjugatePair[B]) G() *FICNN[B] { return p.g }

// ConstrainedWeights returns the constrained weights of u followed by g.
func (p *ConjugatePair[B]) ConstrainedWeights() []*nn.Parameter[B] {
	return append(p.u.ConstrainedWeights(), p.g.ConstrainedWeights()...)
}
