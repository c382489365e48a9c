// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/icnn/autodiff"
	"github.com/born-ml/icnn/backend/cpu"
	"github.com/born-ml/icnn/nn"
	"github.com/born-ml/icnn/tensor"
)

type backendT = *autodiff.Backend[*cpu.Backend]

// TestModuleInterface verifies that Linear implements Module and Stateful.
func TestModuleInterface(t *testing.T) {
	backend := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(0))

	var module nn.Module[backendT] = nn.NewLinear(10, 5, backend, rng)
	var _ nn.Stateful = nn.NewLinear(10, 5, backend, rng)

	out := module.Forward(tensor.Randn(tensor.Shape{2, 10}, rng, backend))
	if !out.Shape().Equal(tensor.Shape{2, 5}) {
		t.Errorf("Forward() shape = %v, want [2 5]", out.Shape())
	}
	if got := len(module.Parameters()); got != 2 {
		t.Errorf("Parameters() len = %d, want 2", got)
	}

	noBias := nn.NewLinear(10, 5, backend, rng, nn.WithoutBias())
	if noBias.HasBias() || len(noBias.Parameters()) != 1 {
		t.Errorf("WithoutBias() layer still has a bias")
	}
}

func TestActivationsAreConvexAndMonotone(t *testing.T) {
	backend := autodiff.New(cpu.New())
	xs := []float64{-3, -1, -0.5, 0, 0.5, 1, 3}

	for _, kind := range []nn.ActivationKind{"", nn.ActivationSoftplus, nn.ActivationReLU, nn.ActivationLeakyReLU} {
		act, err := nn.NewActivation[backendT](kind)
		if err != nil {
			t.Fatalf("NewActivation(%q) error: %v", kind, err)
		}
		x, err := tensor.FromSlice(xs, tensor.Shape{len(xs)}, backend)
		if err != nil {
			t.Fatal(err)
		}
		y := act.Forward(x).Data()
		for i := 1; i < len(y); i++ {
			if y[i] < y[i-1] {
				t.Errorf("%s is decreasing between %v and %v", act.Name(), xs[i-1], xs[i])
			}
		}
		// Equally spaced interior points: second difference must be >= 0.
		if y[5]-2*y[4]+y[3] < -1e-12 {
			t.Errorf("%s is not convex around 0.5", act.Name())
		}
	}

	if _, err := nn.NewActivation[backendT]("tanh"); err == nil {
		t.Error("NewActivation(tanh) expected error")
	}
}

// TestParameterInterface verifies that Parameter exposes its tensor and gradient.
func TestParameterInterface(t *testing.T) {
	backend := cpu.New()
	data := tensor.Ones(tensor.Shape{3, 3}, backend)
	param := nn.NewParameter("weight", data)

	if param.Name() != "weight" {
		t.Errorf("Name() = %q, want %q", param.Name(), "weight")
	}
	if param.Tensor() != data {
		t.Error("Tensor() did not return the wrapped tensor")
	}
	if param.Grad() != nil {
		t.Error("Grad() should be nil before any step")
	}

	param.SetGrad(tensor.Ones(tensor.Shape{3, 3}, backend))
	param.ZeroGrad()
	if g := param.Grad(); g != nil {
		for _, v := range g.Data() {
			if v != 0 {
				t.Fatalf("ZeroGrad() left %v", v)
			}
		}
	}
}
