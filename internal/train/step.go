package train

import (
	"math"

	"github.com/born-ml/icnn/internal/autodiff"
	"github.com/born-ml/icnn/internal/icnn"
	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/optim"
	"github.com/born-ml/icnn/internal/tensor"
)

// Backend is a backend that records operations for Backward.
type Backend = autodiff.BackwardCapable

// Model is a single-input network trained by NewSupervisedStep.
type Model[B tensor.Backend] interface {
	Forward(x *tensor.Tensor[B]) (*tensor.Tensor[B], error)
	Parameters() []*nn.Parameter[B]
	icnn.Constrained[B]
}

// PartialModel is a two-input network trained by NewPartialStep.
type PartialModel[B tensor.Backend] interface {
	Forward(x, y *tensor.Tensor[B]) (*tensor.Tensor[B], error)
	Parameters() []*nn.Parameter[B]
	icnn.Constrained[B]
}

// Batch is a supervised batch for a FICNN.
type Batch[B tensor.Backend] struct {
	Input  *tensor.Tensor[B] // [batch, in]
	Target *tensor.Tensor[B] // [batch, out]
}

// PartialBatch is a supervised batch for a PICNN.
type PartialBatch[B tensor.Backend] struct {
	X      *tensor.Tensor[B] // [batch, XSize]
	Y      *tensor.Tensor[B] // [batch, YSize]
	Target *tensor.Tensor[B] // [batch, out]
}

// ConjugateBatch holds samples for the two sides of a ConjugatePair.
type ConjugateBatch[B tensor.Backend] struct {
	X *tensor.Tensor[B] // Samples fed to u
	Y *tensor.Tensor[B] // Samples fed to g
}

// StepOption configures a step builder.
type StepOption func(*stepOptions)

type stepOptions struct {
	checkFeasible bool
}

// WithFeasibilityCheck makes the step verify icnn.Feasible after every
// projection and fail with the returned error otherwise.
func WithFeasibilityCheck() StepOption {
	return func(o *stepOptions) { o.checkFeasible = true }
}

func buildOptions(opts []StepOption) stepOptions {
	var o stepOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewSupervisedStep returns a step that fits model to Batch targets under
// lossFn, then projects the model.
func NewSupervisedStep[B Backend](
	backend B,
	model Model[B],
	lossFn nn.Loss[B],
	optimizer optim.Optimizer,
	projector *icnn.Projector[B],
	opts ...StepOption,
) StepFunc[Batch[B]] {
	o := buildOptions(opts)
	return func(batch Batch[B]) (float64, error) {
		return runStep(backend, o, projector, []icnn.Constrained[B]{model}, func() (float64, error) {
			pred, err := model.Forward(batch.Input)
			if err != nil {
				return 0, err
			}
			if err := checkTarget(pred, batch.Target); err != nil {
				return 0, err
			}
			loss := lossFn.Forward(pred, batch.Target)
			return backwardAndStep(backend, loss, optimizer, model.Parameters())
		})
	}
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
	o := buildOptions(opts)
	return func(batch PartialBatch[B]) (float64, error) {
		return runStep(backend, o, projector, []icnn.Constrained[B]{model}, func() (float64, error) {
			pred, err := model.Forward(batch.X, batch.Y)
			if err != nil {
				return 0, err
			}
			if err := checkTarget(pred, batch.Target); err != nil {
				return 0, err
			}
			loss := lossFn.Forward(pred, batch.Target)
			return backwardAndStep(backend, loss, optimizer, model.Parameters())
		})
	}
}

// NewConjugateStep returns a step for a ConjugatePair. optU minimizes the
// pair's loss over u's parameters and optG minimizes the negated loss over
// g's parameters; both networks are projected afterwards.
func NewConjugateStep[B Backend](
	backend B,
	pair *icnn.ConjugatePair[B],
	optU, optG optim.Optimizer,
	projector *icnn.Projector[B],
	opts ...StepOption,
) StepFunc[ConjugateBatch[B]] {
	o := buildOptions(opts)
	models := []icnn.Constrained[B]{pair.U(), pair.G()}
	return func(batch ConjugateBatch[B]) (float64, error) {
		return runStep(backend, o, projector, models, func() (float64, error) {
			loss, err := pair.Loss(batch.X, batch.Y)
			if err != nil {
				return 0, err
			}
			value := loss.Item()
			if !finite(value) {
				return value, &NumericError{Value: value, What: "loss"}
			}

			gradsU := autodiff.Backward(loss, backend)
			negLoss := loss.MulScalar(-1)
			gradsG := autodiff.Backward(negLoss, backend)

			if err := checkGrads(pair.U().Parameters(), gradsU); err != nil {
				return value, err
			}
			if err := checkGrads(pair.G().Parameters(), gradsG); err != nil {
				return value, err
			}

			optU.ZeroGrad()
			optG.ZeroGrad()
			optU.Step(gradsU)
			optG.Step(gradsG)
			return value, nil
		})
	}
}

// runStep brackets body with tape management and projects models once body
// has stepped the optimizers.
func runStep[B Backend](
	backend B,
	o stepOptions,
	projector *icnn.Projector[B],
	models []icnn.Constrained[B],
	body func() (float64, error),
) (float64, error) {
	tape := backend.GetTape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	loss, err := body()
	if err != nil {
		return loss, err
	}

	projector.Project(models...)
	if o.checkFeasible {
		if err := icnn.Feasible[B](models...); err != nil {
			return loss, err
		}
	}
	return loss, nil
}

func backwardAndStep[B Backend](
	backend B,
	loss *tensor.Tensor[B],
	optimizer optim.Optimizer,
	params []*nn.Parameter[B],
) (float64, error) {
	value := loss.Item()
	if !finite(value) {
		return value, &NumericError{Value: value, What: "loss"}
	}

	grads := autodiff.Backward(loss, backend)
	if err := checkGrads(params, grads); err != nil {
		return value, err
	}

	optimizer.ZeroGrad()
	optimizer.Step(grads)
	return value, nil
}

// checkTarget rejects a target whose shape differs from the prediction.
func checkTarget[B tensor.Backend](pred, target *tensor.Tensor[B]) error {
	if target == nil {
		return &icnn.ShapeError{Op: "train.step", Want: pred.Shape().Clone()}
	}
	if !pred.Shape().Equal(target.Shape()) {
		return &icnn.ShapeError{Op: "train.step", Want: pred.Shape().Clone(), Got: target.Shape().Clone()}
	}
	return nil
}

// checkGrads rejects any non-finite gradient of params.
func checkGrads[B tensor.Backend](params []*nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) error {
	for _, p := range params {
		g, ok := grads[p.Tensor().Raw()]
		if !ok {
			continue
		}
		for _, v := range g.Data() {
			if !finite(v) {
				return &NumericError{Value: v, What: p.Name() + " gradient"}
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nan() float64 { return math.NaN() }
