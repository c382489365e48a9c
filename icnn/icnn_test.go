// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package icnn_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/born-ml/icnn/autodiff"
	"github.com/born-ml/icnn/backend/cpu"
	"github.com/born-ml/icnn/icnn"
	"github.com/born-ml/icnn/tensor"
)

type backend = *autodiff.Backend[*cpu.Backend]

func TestFICNNFacade(t *testing.T) {
	b := autodiff.New(cpu.New())
	model, err := icnn.NewFICNN(icnn.FICNNConfig{
		InputSize:  2,
		HiddenDim:  4,
		NumLayers:  2,
		OutputSize: 1,
	}, b, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewFICNN failed: %v", err)
	}

	x := tensor.Randn(tensor.Shape{5, 2}, rand.New(rand.NewSource(2)), b)
	out, err := model.Forward(x)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if !out.Shape().Equal(tensor.Shape{5, 1}) {
		t.Errorf("Forward shape = %v, want [5 1]", out.Shape())
	}

	model.ConstrainedWeights()[0].Tensor().Data()[0] = -1
	if err := icnn.Feasible[backend](model); !errors.Is(err, icnn.ErrInfeasible) {
		t.Errorf("Feasible() = %v, want ErrInfeasible", err)
	}

	icnn.NewProjector[backend](0).Project(model)
	if err := icnn.Feasible[backend](model); err != nil {
		t.Errorf("Feasible() after Project = %v", err)
	}
	if v := model.ConstrainedWeights()[0].Tensor().Data()[0]; v != icnn.DefaultEpsilon {
		t.Errorf("projected entry = %g, want %g", v, icnn.DefaultEpsilon)
	}
}

func TestConfigErrorFacade(t *testing.T) {
	_, err := icnn.NewPICNN(icnn.PICNNConfig{XSize: 1}, autodiff.New(cpu.New()), rand.New(rand.NewSource(1)))
	if !errors.Is(err, icnn.ErrConfiguration) {
		t.Fatalf("NewPICNN() error = %v, want ErrConfiguration", err)
	}
	var cfgErr *icnn.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error %T is not a *ConfigError", err)
	}
}

func TestConjugatePairFacade(t *testing.T) {
	b := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(3))
	cfg := icnn.FICNNConfig{InputSize: 2, HiddenDim: 4, NumLayers: 1, OutputSize: 1}
	u, err := icnn.NewFICNN(cfg, b, rng)
	if err != nil {
		t.Fatal(err)
	}
	g, err := icnn.NewFICNN(cfg, b, rng)
	if err != nil {
		t.Fatal(err)
	}
	pair, err := icnn.NewConjugatePair(u, g, icnn.ConjugateConfig{})
	if err != nil {
		t.Fatalf("NewConjugatePair failed: %v", err)
	}
	if n := len(pair.ConstrainedWeights()); n != 4 {
		t.Errorf("len(ConstrainedWeights()) = %d, want 4", n)
	}
}
