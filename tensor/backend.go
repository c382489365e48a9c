// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/icnn/internal/tensor"

// Backend defines the interface that all compute backends implement.
//
// Implementations:
//   - backend/cpu: pure Go kernels on top of gonum
//
// Decorator backends:
//   - autodiff: records operations for reverse-mode differentiation
type Backend = tensor.Backend
