package main

import (
	"fmt"
	"strings"

	"github.com/born-ml/icnn/internal/nn"
	"github.com/born-ml/icnn/internal/tensor"
)

// component is one named piece of training state.
type component struct {
	name  string
	state nn.Stateful
}

// bundle stores several components in one state dict under "<name>." keys,
// so a conjugate pair and both of its optimizers fit in a single checkpoint.
type bundle []component

// StateDict implements nn.Stateful.
func (b bundle) StateDict() map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for _, c := range b {
		for key, raw := range c.state.StateDict() {
			out[c.name+"."+key] = raw
		}
	}
	return out
}

// LoadStateDict implements nn.Stateful. Keys without a known component
// prefix are rejected.
func (b bundle) LoadStateDict(state map[string]*tensor.RawTensor) error {
	parts := make(map[string]map[string]*tensor.RawTensor, len(b))
	for _, c := range b {
		parts[c.name] = make(map[string]*tensor.RawTensor)
	}
	for key, raw := range state {
		name, rest, ok := strings.Cut(key, ".")
		part, known := parts[name]
		if !ok || !known {
			return fmt.Errorf("unexpected state key %q", key)
		}
		part[rest] = raw
	}
	for _, c := range b {
		if err := c.state.LoadStateDict(parts[c.name]); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

// optimizerBundle is a bundle of optimizers sharing one learning rate.
type optimizerBundle struct {
	bundle
	lr float64
}

// GetLR implements nn.OptimizerState.
func (o optimizerBundle) GetLR() float64 { return o.lr }

// session is the model and optimizer state of one training command.
type session struct {
	models     bundle
	optimizers optimizerBundle
}

// resume loads path into the session and returns the checkpoint metadata.
// A checkpoint written by a different command is rejected.
func (s *session) resume(path, command string) (*nn.Checkpoint, error) {
	ckpt, err := nn.LoadCheckpoint(path, s.models, s.optimizers)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", path, err)
	}
	if got := ckpt.Metadata["command"]; got != command {
		return nil, fmt.Errorf("resume %s: checkpoint is from %q, not %q", path, got, command)
	}
	return ckpt, nil
}

// save writes the session to path. epoch and step count the whole training
// so far, including any resumed run.
func (s *session) save(path, command string, epoch int, step int64, loss float64, meta map[string]string) error {
	m := map[string]string{"command": command}
	for k, v := range meta {
		m[k] = v
	}
	ckpt := &nn.Checkpoint{
		Model:     s.models,
		Optimizer: s.optimizers,
		Epoch:     epoch,
		Step:      step,
		Loss:      loss,
		Metadata:  m,
	}
	return ckpt.Save(path)
}
