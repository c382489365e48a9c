// Package train drives the constrained training loop for input-convex
// networks.
//
// Run iterates epochs and batches and delegates the per-batch work to a
// StepFunc. The step builders in this package all follow the same order:
// forward, loss, backward, optimizer step, projection.
package train

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Config controls the training loop.
type Config struct {
	Epochs int          // Number of passes over the batches (must be > 0)
	Logger *slog.Logger // Defaults to slog.Default()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("train: epochs must be > 0, got %d", c.Epochs)
	}
	return nil
}

// StepFunc performs one optimization step on batch and returns its loss.
type StepFunc[T any] func(batch T) (float64, error)

// History records the losses of a run.
type History struct {
	Losses          []float64 // One entry per batch, in the order the batches ran
	EpochMeans      []float64 // Mean loss of each completed epoch
	BatchesPerEpoch int       // Batches in one full epoch; Losses may end mid-epoch
}

// Last returns the final recorded loss, or NaN if nothing ran.
func (h *History) Last() float64 {
	if len(h.Losses) == 0 {
		return nan()
	}
	return h.Losses[len(h.Losses)-1]
}

// Run calls step for every batch, Epochs times. It stops at the first error
// and returns the history recorded so far together with the error. Numeric
// failures are reported as *NumericError with the epoch and batch filled in.
func Run[T any](cfg Config, batches []T, step StepFunc[T]) (*History, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, errors.New("train: no batches")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	history := &History{
		Losses:          make([]float64, 0, cfg.Epochs*len(batches)),
		EpochMeans:      make([]float64, 0, cfg.Epochs),
		BatchesPerEpoch: len(batches),
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		start := time.Now()
		epochLosses := make([]float64, 0, len(batches))

		for i, batch := range batches {
			loss, err := step(batch)
			if err != nil {
				var ne *NumericError
				if errors.As(err, &ne) {
					ne.Epoch, ne.Batch = epoch, i
					return history, err
				}
				return history, fmt.Errorf("train: epoch %d batch %d: %w", epoch, i, err)
			}
			if !finite(loss) {
				return history, &NumericError{Epoch: epoch, Batch: i, Value: loss, What: "loss"}
			}

			history.Losses = append(history.Losses, loss)
			epochLosses = append(epochLosses, loss)
			logger.Debug("batch", "epoch", epoch, "batch", i, "loss", loss)
		}

		mean := stat.Mean(epochLosses, nil)
		history.EpochMeans = append(history.EpochMeans, mean)
		logger.Info("epoch complete",
			"epoch", epoch+1,
			"epochs", cfg.Epochs,
			"mean_loss", mean,
			"elapsed", time.Since(start),
		)
	}

	return history, nil
}
