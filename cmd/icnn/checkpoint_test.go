package main

import (
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/icnn/internal/autodiff"
	"github.com/born-ml/icnn/internal/backend/cpu"
	"github.com/born-ml/icnn/internal/dataset"
	"github.com/born-ml/icnn/internal/icnn"
	"github.com/born-ml/icnn/internal/optim"
	"github.com/born-ml/icnn/internal/tensor"
	"github.com/born-ml/icnn/internal/train"
)

// conjugateSession builds an untrained conjugate pair with one Adam per
// network.
func conjugateSession(t *testing.T, backend backendT, seed int64) (*session, *icnn.ConjugatePair[backendT], *optim.Adam[backendT], *optim.Adam[backendT]) {
	t.Helper()
	cfg := icnn.FICNNConfig{InputSize: 2, HiddenDim: 4, NumLayers: 1, OutputSize: 1}
	rng := rand.New(rand.NewSource(seed))
	u, err := icnn.NewFICNN(cfg, backend, rng)
	require.NoError(t, err)
	g, err := icnn.NewFICNN(cfg, backend, rng)
	require.NoError(t, err)
	pair, err := icnn.NewConjugatePair(u, g, icnn.ConjugateConfig{})
	require.NoError(t, err)

	optU := optim.NewAdam(u.Parameters(), optim.AdamConfig{LR: 1e-3}, backend)
	optG := optim.NewAdam(g.Parameters(), optim.AdamConfig{LR: 1e-3}, backend)
	return &session{
		models:     bundle{{"u", u}, {"g", g}},
		optimizers: optimizerBundle{bundle{{"u", optU}, {"g", optG}}, 1e-3},
	}, pair, optU, optG
}

func TestSession_SaveResume(t *testing.T) {
	backend := autodiff.New(cpu.New())
	path := filepath.Join(t.TempDir(), "conjugate.safetensors")

	src, pair, optU, optG := conjugateSession(t, backend, 1)
	projector := icnn.NewProjector[backendT](icnn.DefaultEpsilon)
	projector.Project(pair.U(), pair.G())
	batches, err := dataset.Conjugate(rand.New(rand.NewSource(2)), 3, 8, 2, backend)
	require.NoError(t, err)
	step := train.NewConjugateStep(backend, pair, optU, optG, projector)
	history, err := train.Run(train.Config{Epochs: 1, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, batches, step)
	require.NoError(t, err)

	require.NoError(t, src.save(path, "conjugate", 1, int64(len(history.Losses)), history.Last(), map[string]string{"activation": "softplus"}))

	dst, dstPair, dstOptU, dstOptG := conjugateSession(t, backend, 9)
	ckpt, err := dst.resume(path, "conjugate")
	require.NoError(t, err)

	assert.Equal(t, 1, ckpt.Epoch)
	assert.Equal(t, int64(3), ckpt.Step)
	assert.InDelta(t, history.Last(), ckpt.Loss, 0)
	assert.Equal(t, "softplus", ckpt.Metadata["activation"])
	assert.Equal(t, 3, dstOptU.GetTimestep())
	assert.Equal(t, 3, dstOptG.GetTimestep())

	for name, want := range pair.U().StateDict() {
		assert.Equal(t, want.Data(), dstPair.U().StateDict()[name].Data(), "u.%s", name)
	}
	for name, want := range pair.G().StateDict() {
		assert.Equal(t, want.Data(), dstPair.G().StateDict()[name].Data(), "g.%s", name)
	}
}

func TestSession_ResumeRejectsOtherCommand(t *testing.T) {
	backend := autodiff.New(cpu.New())
	path := filepath.Join(t.TempDir(), "ckpt.safetensors")

	src, _, _, _ := conjugateSession(t, backend, 1)
	require.NoError(t, src.save(path, "conjugate", 0, 0, 0, nil))

	dst, _, _, _ := conjugateSession(t, backend, 2)
	_, err := dst.resume(path, "ficnn")
	assert.ErrorContains(t, err, "conjugate")
}

func TestBundle_RejectsUnknownPrefix(t *testing.T) {
	backend := autodiff.New(cpu.New())
	sess, _, _, _ := conjugateSession(t, backend, 1)

	state := sess.models.StateDict()
	assert.Contains(t, state, "u.w0.weight")
	assert.Contains(t, state, "g.z.2.weight")

	state["h.w0.weight"] = tensor.MustRaw(tensor.Shape{1}, tensor.CPU)
	assert.Error(t, sess.models.LoadStateDict(state))
}
