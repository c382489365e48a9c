package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"

	"github.com/born-ml/icnn/internal/autodiff"
	"github.com/born-ml/icnn/internal/backend/cpu"
	"github.com/born-ml/icnn/internal/dataset"
	"github.com/born-ml/icnn/internal/icnn"
	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/optim"
	"github.com/born-ml/icnn/internal/report"
	"github.com/born-ml/icnn/internal/runlog"
	"github.com/born-ml/icnn/internal/train"
)

type backendT = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// common holds the flags shared by every training command.
type common struct {
	epochs     int
	batches    int
	batchSize  int
	hidden     int
	layers     int
	lr         float64
	seed       int64
	activation string
	verbose    bool
	weightsOut string
	resumeFrom string
	reportOut  string
	dbPath     string
}

func (c *common) register(fs *flag.FlagSet, defaultLR float64) {
	fs.IntVar(&c.epochs, "epochs", 2, "Number of training epochs")
	fs.IntVar(&c.batches, "batches", 2048, "Batches per epoch")
	fs.IntVar(&c.batchSize, "batch", 16, "Batch size")
	fs.IntVar(&c.hidden, "hidden", 8, "Hidden width")
	fs.IntVar(&c.layers, "layers", 1, "Number of hidden z-path stages (depth is layers+1)")
	fs.Float64Var(&c.lr, "lr", defaultLR, "Adam learning rate")
	fs.Int64Var(&c.seed, "seed", 1, "Random seed")
	fs.StringVar(&c.activation, "activation", string(nn.ActivationSoftplus), "Activation: softplus, relu or leaky_relu")
	fs.BoolVar(&c.verbose, "v", false, "Log every batch")
	fs.StringVar(&c.weightsOut, "out", "", "Write a checkpoint (weights, Adam state, epoch and loss) to this .safetensors file")
	fs.StringVar(&c.resumeFrom, "resume", "", "Continue training from a checkpoint written by -out")
	fs.StringVar(&c.reportOut, "report", "", "Write a JSON report to this file")
	fs.StringVar(&c.dbPath, "db", "", "Record the run in this SQLite run log")
}

// params flattens the flags worth keeping in the run log.
func (c *common) params(extra map[string]string) map[string]string {
	p := map[string]string{
		"epochs":     strconv.Itoa(c.epochs),
		"batches":    strconv.Itoa(c.batches),
		"batch":      strconv.Itoa(c.batchSize),
		"hidden":     strconv.Itoa(c.hidden),
		"layers":     strconv.Itoa(c.layers),
		"lr":         strconv.FormatFloat(c.lr, 'g', -1, 64),
		"seed":       strconv.FormatInt(c.seed, 10),
		"activation": c.activation,
	}
	if c.resumeFrom != "" {
		p["resume"] = c.resumeFrom
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func (c *common) setup() (backendT, *rand.Rand, train.Config) {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return autodiff.New(cpu.New()), rand.New(rand.NewSource(c.seed)), train.Config{Epochs: c.epochs, Logger: logger}
}

// restore loads -resume into sess. It returns nil when no checkpoint was
// requested.
func (c *common) restore(sess *session, name string) (*nn.Checkpoint, error) {
	if c.resumeFrom == "" {
		return nil, nil
	}
	ckpt, err := sess.resume(c.resumeFrom, name)
	if err != nil {
		return nil, err
	}
	slog.Info("resumed", "path", c.resumeFrom, "epoch", ckpt.Epoch, "step", ckpt.Step, "loss", ckpt.Loss)
	return ckpt, nil
}

// finish prints the outcome and writes the optional outputs. prior is the
// checkpoint the run resumed from, if any.
func (c *common) finish(name string, params map[string]string, history *train.History, sess *session, prior *nn.Checkpoint) error {
	fmt.Printf("Batches run:     %d\n", len(history.Losses))
	fmt.Printf("First loss:      %.6f\n", history.Losses[0])
	for i, m := range history.EpochMeans {
		fmt.Printf("Epoch %d mean:    %.6f\n", i+1, m)
	}

	models := make([]report.Model, len(sess.models))
	for i, m := range sess.models {
		models[i] = report.Model{Name: m.name, Weights: m.state}
	}

	if c.weightsOut != "" {
		epoch, step := len(history.EpochMeans), int64(len(history.Losses))
		if prior != nil {
			epoch += prior.Epoch
			step += prior.Step
		}
		meta := map[string]string{"activation": c.activation}
		if c.resumeFrom != "" {
			meta["resumed_from"] = c.resumeFrom
		}
		if err := sess.save(c.weightsOut, name, epoch, step, history.Last(), meta); err != nil {
			return err
		}
		fmt.Printf("Checkpoint:      %s (epoch %d)\n", c.weightsOut, epoch)
	}

	if c.reportOut != "" {
		r, err := report.New(history, models...)
		if err != nil {
			return err
		}
		data, err := r.MarshalJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.reportOut, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Report written:  %s\n", c.reportOut)
	}

	if c.dbPath != "" {
		store, err := runlog.Open(c.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Record(context.Background(), name, params, history)
		if err != nil {
			return err
		}
		fmt.Printf("Run recorded:    %s #%d\n", c.dbPath, id)
	}
	return nil
}

func runFICNN(args []string) error {
	fs := flag.NewFlagSet("ficnn", flag.ExitOnError)
	var c common
	c.register(fs, 1e-4)
	dim := fs.Int("dim", 1, "Input width")
	_ = fs.Parse(args)

	backend, rng, cfg := c.setup()
	model, err := icnn.NewFICNN(icnn.FICNNConfig{
		InputSize:  *dim,
		HiddenDim:  c.hidden,
		NumLayers:  c.layers,
		OutputSize: *dim,
		Activation: nn.ActivationKind(c.activation),
	}, backend, rng)
	if err != nil {
		return err
	}
	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: c.lr}, backend)
	sess := &session{
		models:     bundle{{"ficnn", model}},
		optimizers: optimizerBundle{bundle{{"ficnn", optimizer}}, c.lr},
	}
	prior, err := c.restore(sess, "ficnn")
	if err != nil {
		return err
	}
	projector := icnn.NewProjector[backendT](icnn.DefaultEpsilon)
	projector.Project(model)

	batches, err := dataset.UniformSquare(rng, c.batches, c.batchSize, *dim, backend)
	if err != nil {
		return err
	}

	step := train.NewSupervisedStep(backend, model, nn.NewL1Loss[backendT](), optimizer, projector)

	history, err := train.Run(cfg, batches, step)
	if err != nil {
		return err
	}
	return c.finish("ficnn", c.params(map[string]string{"dim": strconv.Itoa(*dim)}), history, sess, prior)
}

func runPICNN(args []string) error {
	fs := flag.NewFlagSet("picnn", flag.ExitOnError)
	var c common
	c.register(fs, 1e-3)
	xDim := fs.Int("x", 2, "Width of the unconstrained input x")
	yDim := fs.Int("y", 3, "Width of the convex input y")
	xHidden := fs.Int("xhidden", 8, "Width of the context path")
	noise := fs.Float64("noise", 0.01, "Target noise standard deviation")
	_ = fs.Parse(args)

	backend, rng, cfg := c.setup()
	model, err := icnn.NewPICNN(icnn.PICNNConfig{
		XSize:      *xDim,
		YSize:      *yDim,
		XHidden:    *xHidden,
		HiddenDim:  c.hidden,
		NumLayers:  c.layers,
		OutputSize: 1,
		Activation: nn.ActivationKind(c.activation),
	}, backend, rng)
	if err != nil {
		return err
	}
	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: c.lr}, backend)
	sess := &session{
		models:     bundle{{"picnn", model}},
		optimizers: optimizerBundle{bundle{{"picnn", optimizer}}, c.lr},
	}
	prior, err := c.restore(sess, "picnn")
	if err != nil {
		return err
	}
	projector := icnn.NewProjector[backendT](icnn.DefaultEpsilon)
	projector.Project(model)

	batches, err := dataset.PaddedQuadratic(rng, c.batches, c.batchSize, *xDim, *yDim, *noise, backend)
	if err != nil {
		return err
	}

	step := train.NewPartialStep(backend, model, nn.NewMSELoss[backendT](), optimizer, projector)

	history, err := train.Run(cfg, batches, step)
	if err != nil {
		return err
	}
	return c.finish("picnn", c.params(map[string]string{
		"x":       strconv.Itoa(*xDim),
		"y":       strconv.Itoa(*yDim),
		"xhidden": strconv.Itoa(*xHidden),
		"noise":   strconv.FormatFloat(*noise, 'g', -1, 64),
	}), history, sess, prior)
}

func runConjugate(args []string) error {
	fs := flag.NewFlagSet("conjugate", flag.ExitOnError)
	var c common
	c.register(fs, 1e-3)
	dim := fs.Int("dim", 2, "Input width of u and g")
	average := fs.Bool("average", false, "Average the conjugate value over the batch")
	_ = fs.Parse(args)

	backend, rng, cfg := c.setup()
	ficnn := icnn.FICNNConfig{
		InputSize:  *dim,
		HiddenDim:  c.hidden,
		NumLayers:  c.layers,
		OutputSize: 1,
		Activation: nn.ActivationKind(c.activation),
	}
	u, err := icnn.NewFICNN(ficnn, backend, rng)
	if err != nil {
		return err
	}
	g, err := icnn.NewFICNN(ficnn, backend, rng)
	if err != nil {
		return err
	}
	pair, err := icnn.NewConjugatePair(u, g, icnn.ConjugateConfig{AverageValue: *average})
	if err != nil {
		return err
	}
	optU := optim.NewAdam(u.Parameters(), optim.AdamConfig{LR: c.lr}, backend)
	optG := optim.NewAdam(g.Parameters(), optim.AdamConfig{LR: c.lr}, backend)
	sess := &session{
		models:     bundle{{"u", u}, {"g", g}},
		optimizers: optimizerBundle{bundle{{"u", optU}, {"g", optG}}, c.lr},
	}
	prior, err := c.restore(sess, "conjugate")
	if err != nil {
		return err
	}
	projector := icnn.NewProjector[backendT](icnn.DefaultEpsilon)
	projector.Project(u, g)

	batches, err := dataset.Conjugate(rng, c.batches, c.batchSize, *dim, backend)
	if err != nil {
		return err
	}

	step := train.NewConjugateStep(backend, pair, optU, optG, projector)

	history, err := train.Run(cfg, batches, step)
	if err != nil {
		return err
	}
	params := c.params(map[string]string{
		"dim":     strconv.Itoa(*dim),
		"average": strconv.FormatBool(*average),
	})
	return c.finish("conjugate", params, history, sess, prior)
}
