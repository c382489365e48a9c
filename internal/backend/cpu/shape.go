package cpu

import (
	"fmt"

	"github.com/born-ml/icnn/internal/tensor"
)

// Reshape returns a copy of t with a new shape of the same element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}

	result, err := tensor.RawFromSlice(t.Data(), newShape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Expand broadcasts the tensor to a new shape.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	xShape := x.Shape()
	if len(newShape) < len(xShape) {
		panic(fmt.Sprintf("expand: new shape %v has fewer dimensions than input shape %v",
			newShape, xShape))
	}

	// Align from the right: each dimension must match or be 1.
	offset := len(newShape) - len(xShape)
	for i, xDim := range xShape {
		if xDim != 1 && xDim != newShape[offset+i] {
			panic(fmt.Sprintf("expand: cannot expand dimension %d from %d to %d",
				i, xDim, newShape[offset+i]))
		}
	}

	result, err := tensor.NewRaw(newShape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}

	zeros, err := tensor.NewRaw(newShape, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}
	broadcastBinary(result, zeros, x, func(_, v float64) float64 { return v })

	return result
}
