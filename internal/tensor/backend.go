package tensor

// Backend defines the interface that compute backends implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - cpu.CPUBackend: pure Go kernels on top of gonum
//   - autodiff.AutodiffBackend: decorator that records operations for
//     reverse-mode differentiation and forwards to an inner backend
//
// Activations are optional capabilities discovered by interface assertion
// (see nn.ReLUBackend and friends), mirroring how layers find them.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor) *RawTensor // 2D only
	Expand(t *RawTensor, newShape Shape) *RawTensor

	// Scalar operations (element-wise with scalar).
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	AddScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math.
	Abs(x *RawTensor) *RawTensor
	Square(x *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor                           // total sum (scalar result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along dimension

	// Metadata.
	Name() string
	Device() Device
}
