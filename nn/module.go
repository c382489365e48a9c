// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/tensor"
)

// Module is the base interface for single-input neural network components.
//
// Every module implements:
//   - Forward: compute output from input
//   - Parameters: return all trainable parameters
type Module[B tensor.Backend] = nn.Module[B]

// Stateful is implemented by modules whose weights can be exported and
// restored as a map of named raw tensors.
type Stateful = nn.Stateful
