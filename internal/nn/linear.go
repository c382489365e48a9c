package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/icnn/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	rng := rand.New(rand.NewSource(0))
//	layer := nn.NewLinear(8, 8, backend, rng, nn.WithoutBias())
//	output := layer.Forward(input) // [batch, 8]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features], nil when built WithoutBias
	backend     B
}

// LinearOption configures a Linear layer at construction.
type LinearOption func(*linearOptions)

type linearOptions struct {
	bias bool
}

// WithoutBias builds the layer without a bias term.
func WithoutBias() LinearOption {
	return func(o *linearOptions) { o.bias = false }
}

// NewLinear creates a new Linear layer.
//
// Weights are drawn from rng using Xavier/Glorot uniform.
// Biases are initialized to zeros.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, rng *rand.Rand, opts ...LinearOption) *Linear[B] {
	o := linearOptions{bias: true}
	for _, opt := range opts {
		opt(&o)
	}

	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape, rng, backend))

	var bias *Parameter[B]
	if o.bias {
		bias = NewParameter("bias", Zeros(tensor.Shape{outFeatures}, backend))
	}

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes the output of the linear layer.
//
// Performs: y = x @ W.T + b
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	// [batch, in] @ [in, out] = [batch, out]
	output := input.MatMul(l.weight.Tensor().T())

	if l.bias != nil {
		// [out] -> [1, out] so it broadcasts over the batch
		output = output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
	}

	return output
}

// Parameters returns the trainable parameters of this layer.
//
// Returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil for a layer built WithoutBias.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// HasBias reports whether the layer carries a bias term.
func (l *Linear[B]) HasBias() bool {
	return l.bias != nil
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	stateDict["weight"] = l.weight.Tensor().Raw()
	if l.bias != nil {
		stateDict["bias"] = l.bias.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
// Data is copied into the existing parameter tensors.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	weightRaw, ok := stateDict["weight"]
	if !ok {
		return fmt.Errorf("missing weight in state dict")
	}
	expectedWeightShape := tensor.Shape{l.outFeatures, l.inFeatures}
	if !weightRaw.Shape().Equal(expectedWeightShape) {
		return fmt.Errorf("weight shape mismatch: expected %v, got %v",
			expectedWeightShape, weightRaw.Shape())
	}
	copy(l.weight.Tensor().Data(), weightRaw.Data())

	if l.bias == nil {
		if _, ok := stateDict["bias"]; ok {
			return fmt.Errorf("unexpected bias in state dict for layer without bias")
		}
		return nil
	}

	biasRaw, ok := stateDict["bias"]
	if !ok {
		return fmt.Errorf("missing bias in state dict")
	}
	expectedBiasShape := tensor.Shape{l.outFeatures}
	if !biasRaw.Shape().Equal(expectedBiasShape) {
		return fmt.Errorf("bias shape mismatch: expected %v, got %v",
			expectedBiasShape, biasRaw.Shape())
	}
	copy(l.bias.Tensor().Data(), biasRaw.Data())

	return nil
}
