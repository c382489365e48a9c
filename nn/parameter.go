// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that receive gradients during training; optimizers
// update them in place.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad() // nil until an optimizer step stores it
//
// Parameter is a type alias so that models built on the internal packages
// satisfy interfaces declared here.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}
