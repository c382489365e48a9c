package icnn

import (
	"fmt"
	"strings"

	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

// namedLayer pairs a Linear layer with its state-dict prefix.
type namedLayer[B tensor.Backend] struct {
	prefix string
	layer  *nn.Linear[B]
}

func stateDict[B tensor.Backend](layers []namedLayer[B]) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for _, l := range layers {
		for name, raw := range l.layer.StateDict() {
			out[l.prefix+"."+name] = raw
		}
	}
	return out
}

func loadStateDict[B tensor.Backend](layers []namedLayer[B], state map[string]*tensor.RawTensor) error {
	used := 0
	for _, l := range layers {
		sub := make(map[string]*tensor.RawTensor, 2)
		for name, raw := range state {
			if rest, ok := strings.CutPrefix(name, l.prefix+"."); ok {
				sub[rest] = raw
			}
		}
		if err := l.layer.LoadStateDict(sub); err != nil {
			return fmt.Errorf("%s: %w", l.prefix, err)
		}
		used += len(sub)
	}
	if used != len(state) {
		return fmt.Errorf("state dict has %d tensors, model uses %d", len(state), used)
	}
	return nil
}

func parameters[B tensor.Backend](layers []namedLayer[B]) []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, l := range layers {
		params = append(params, l.layer.Parameters()...)
	}
	return params
}
