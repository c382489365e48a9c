package nn

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/born-ml/icnn/internal/serialization"
	"github.com/born-ml/icnn/internal/tensor"
)

// OptimizerState represents an optimizer that can save/load its state.
//
// This interface is used by checkpoints to serialize optimizer state
// without creating import cycles. Optimizers from the optim package
// implement this interface.
type OptimizerState interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
	GetLR() float64
}

// Metadata keys written by Checkpoint.Save.
const (
	MetaEpoch     = "epoch"
	MetaStep      = "step"
	MetaLoss      = "loss"
	MetaLR        = "optimizer_lr"
	MetaCreatedAt = "created_at"

	optimizerPrefix = "optimizer."
)

// Checkpoint represents a training state snapshot: model weights, optional
// optimizer buffers and training metadata, stored as one SafeTensors file.
//
// Example:
//
//	ckpt := &nn.Checkpoint{
//	    Model:     model,
//	    Optimizer: optimizer,
//	    Epoch:     2,
//	    Loss:      history.EpochMeans[1],
//	    Metadata:  map[string]string{"model": "ficnn"},
//	}
//	err := ckpt.Save("ficnn.safetensors")
type Checkpoint struct {
	Model     Stateful          // Model weights
	Optimizer OptimizerState    // Optional optimizer state
	Epoch     int               // Training epoch number
	Step      int64             // Training step number
	Loss      float64           // Loss value at this checkpoint
	Metadata  map[string]string // Additional metadata
	CreatedAt time.Time         // When the checkpoint was created
}

// Save writes the checkpoint to path.
//
// Optimizer tensors are stored under the "optimizer." prefix.
func (c *Checkpoint) Save(path string) error {
	combined := make(map[string]*tensor.RawTensor)
	for name, raw := range c.Model.StateDict() {
		combined[name] = raw
	}

	meta := make(map[string]string, len(c.Metadata)+5)
	for k, v := range c.Metadata {
		meta[k] = v
	}

	if c.Optimizer != nil {
		for name, raw := range c.Optimizer.StateDict() {
			combined[optimizerPrefix+name] = raw
		}
		meta[MetaLR] = strconv.FormatFloat(c.Optimizer.GetLR(), 'g', -1, 64)
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	meta[MetaEpoch] = strconv.Itoa(c.Epoch)
	meta[MetaStep] = strconv.FormatInt(c.Step, 10)
	meta[MetaLoss] = strconv.FormatFloat(c.Loss, 'g', -1, 64)
	meta[MetaCreatedAt] = createdAt.Format(time.RFC3339Nano)

	if err := serialization.WriteSafeTensors(path, combined, meta); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint restores model (and optimizer, if non-nil) from path.
//
// The model and optimizer must be pre-constructed with the same
// architecture and configuration as when the checkpoint was saved.
func LoadCheckpoint(path string, model Stateful, optimizer OptimizerState) (*Checkpoint, error) {
	stateDict, meta, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	modelState := make(map[string]*tensor.RawTensor)
	optimizerState := make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		if rest, ok := strings.CutPrefix(name, optimizerPrefix); ok {
			optimizerState[rest] = raw
		} else {
			modelState[name] = raw
		}
	}

	if err := model.LoadStateDict(modelState); err != nil {
		return nil, fmt.Errorf("failed to load model state: %w", err)
	}
	if optimizer != nil {
		if err := optimizer.LoadStateDict(optimizerState); err != nil {
			return nil, fmt.Errorf("failed to load optimizer state: %w", err)
		}
	}

	ckpt := &Checkpoint{
		Model:     model,
		Optimizer: optimizer,
		Metadata:  make(map[string]string),
	}
	for k, v := range meta {
		switch k {
		case MetaEpoch:
			ckpt.Epoch, err = strconv.Atoi(v)
		case MetaStep:
			ckpt.Step, err = strconv.ParseInt(v, 10, 64)
		case MetaLoss:
			ckpt.Loss, err = strconv.ParseFloat(v, 64)
		case MetaCreatedAt:
			ckpt.CreatedAt, err = time.Parse(time.RFC3339Nano, v)
		case MetaLR, serialization.MetadataChecksum:
		default:
			ckpt.Metadata[k] = v
		}
		if err != nil {
			return nil, fmt.Errorf("checkpoint metadata %s=%q: %w", k, v, err)
		}
	}

	return ckpt, nil
}
