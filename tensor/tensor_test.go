// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/icnn/backend/cpu"
	"github.com/born-ml/icnn/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if n := raw.NumElements(); n != 6 {
		t.Errorf("NumElements() = %d, want 6", n)
	}

	raw.Fill(2)
	clone := raw.Clone()
	clone.Data()[0] = 5
	if raw.Data()[0] != 2 {
		t.Errorf("Clone() shares data with the original")
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      tensor.Shape
		want      tensor.Shape
		broadcast bool
		wantErr   bool
	}{
		{tensor.Shape{16, 8}, tensor.Shape{16, 8}, tensor.Shape{16, 8}, false, false},
		{tensor.Shape{16, 8}, tensor.Shape{1, 8}, tensor.Shape{16, 8}, true, false},
		{tensor.Shape{16, 1}, tensor.Shape{16, 3}, tensor.Shape{16, 3}, true, false},
		{tensor.Shape{8}, tensor.Shape{4, 8}, tensor.Shape{4, 8}, true, false},
		{tensor.Shape{}, tensor.Shape{2, 2}, tensor.Shape{2, 2}, true, false},
		{tensor.Shape{3, 2}, tensor.Shape{2, 3}, nil, false, true},
	}

	for _, tt := range tests {
		got, broadcast, err := tensor.BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			if err == nil {
				t.Errorf("BroadcastShapes(%v, %v) expected error", tt.a, tt.b)
			}
			continue
		}
		if err != nil {
			t.Errorf("BroadcastShapes(%v, %v) error: %v", tt.a, tt.b, err)
			continue
		}
		if !got.Equal(tt.want) || broadcast != tt.broadcast {
			t.Errorf("BroadcastShapes(%v, %v) = %v, %v; want %v, %v", tt.a, tt.b, got, broadcast, tt.want, tt.broadcast)
		}
	}
}

func TestTensorArithmetic(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromRows([][]float64{{1, 2}, {3, 4}}, backend)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	bias, err := tensor.FromSlice([]float64{10, 20}, tensor.Shape{1, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	sum := x.Add(bias)
	want := []float64{11, 22, 13, 24}
	for i, v := range sum.Data() {
		if v != want[i] {
			t.Errorf("Add()[%d] = %v, want %v", i, v, want[i])
		}
	}

	prod := x.MatMul(x.T())
	// [[1,2],[3,4]] @ [[1,3],[2,4]]
	want = []float64{5, 11, 11, 25}
	for i, v := range prod.Data() {
		if v != want[i] {
			t.Errorf("MatMul()[%d] = %v, want %v", i, v, want[i])
		}
	}

	if got := x.Mean().Item(); got != 2.5 {
		t.Errorf("Mean() = %v, want 2.5", got)
	}
	rows := x.SumDim(1, true)
	if !rows.Shape().Equal(tensor.Shape{2, 1}) || rows.At(1, 0) != 7 {
		t.Errorf("SumDim(1, true) = %v %v, want [2 1] with row 1 = 7", rows.Shape(), rows.Data())
	}
}

func TestRandomCreationIsSeeded(t *testing.T) {
	backend := cpu.New()
	a := tensor.Uniform(tensor.Shape{4, 4}, -1, 1, rand.New(rand.NewSource(3)), backend)
	b := tensor.Uniform(tensor.Shape{4, 4}, -1, 1, rand.New(rand.NewSource(3)), backend)
	for i, v := range a.Data() {
		if v != b.Data()[i] {
			t.Fatalf("same seed produced different data at %d", i)
		}
		if v < -1 || v >= 1 {
			t.Errorf("value %v out of [-1, 1)", v)
		}
	}
}
