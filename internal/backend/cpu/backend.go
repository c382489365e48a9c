// Package cpu implements the CPU backend on top of gonum kernels.
package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/icnn/internal/parallel"
	"github.com/born-ml/icnn/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend. Large element-wise kernels are split
// across goroutines using parallel.DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallel settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b,
		func(dst, x, y []float64) { floats.AddTo(dst, x, y) },
		func(x, y float64) float64 { return x + y },
	)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b,
		func(dst, x, y []float64) { floats.SubTo(dst, x, y) },
		func(x, y float64) float64 { return x - y },
	)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b,
		func(dst, x, y []float64) { floats.MulTo(dst, x, y) },
		func(x, y float64) float64 { return x * y },
	)
}

// binary dispatches to the vectorized kernel when shapes match and to the
// strided broadcast loop otherwise.
func (cpu *CPUBackend) binary(
	name string,
	a, b *tensor.RawTensor,
	vectorized func(dst, x, y []float64),
	scalar func(x, y float64) float64,
) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	if !needsBroadcast {
		vectorized(result.Data(), a.Data(), b.Data())
		return result
	}

	broadcastBinary(result, a, b, scalar)
	return result
}

// broadcastBinary applies f over the broadcast of a and b into result.
// Broadcast dimensions get stride 0 so the same source element is reused.
func broadcastBinary(result, a, b *tensor.RawTensor, f func(x, y float64) float64) {
	outShape := result.Shape()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)

	aData, bData, dst := a.Data(), b.Data(), result.Data()
	index := make([]int, len(outShape))
	aOff, bOff := 0, 0

	for i := range dst {
		dst[i] = f(aData[aOff], bData[bOff])

		// Increment the multi-index (row-major) and the two source offsets.
		for d := len(outShape) - 1; d >= 0; d-- {
			index[d]++
			aOff += aStrides[d]
			bOff += bStrides[d]
			if index[d] < outShape[d] {
				break
			}
			aOff -= aStrides[d] * outShape[d]
			bOff -= bStrides[d] * outShape[d]
			index[d] = 0
		}
	}
}

// broadcastStrides returns the strides of shape aligned to outShape, with 0
// for every dimension that is broadcast (missing or size 1).
func broadcastStrides(shape, outShape tensor.Shape) []int {
	strides := make([]int, len(outShape))
	src := shape.ComputeStrides()
	offset := len(outShape) - len(shape)
	for i := range shape {
		if shape[i] != 1 {
			strides[offset+i] = src[i]
		}
	}
	return strides
}
