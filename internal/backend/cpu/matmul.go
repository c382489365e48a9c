package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/icnn/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N), delegated to gonum's Dense.Mul.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result, err := tensor.NewRaw(tensor.Shape{m, n}, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	// mat.NewDense wraps the slices without copying, so the product lands
	// directly in the result buffer.
	out := mat.NewDense(m, n, result.Data())
	out.Mul(mat.NewDense(m, k, a.Data()), mat.NewDense(k, n, b.Data()))

	return result
}

// Transpose swaps rows and columns of a 2D tensor into a new buffer.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: only 2D tensors supported, got shape %v", shape))
	}
	rows, cols := shape[0], shape[1]

	result, err := tensor.NewRaw(tensor.Shape{cols, rows}, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	out := mat.NewDense(cols, rows, result.Data())
	out.Copy(mat.NewDense(rows, cols, t.Data()).T())

	return result
}
