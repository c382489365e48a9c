// Package report packages the outcome of a training run for an external
// consumer: per-batch losses in batch order, a loss summary, and the final
// weight tensors.
//
// Reports are encoded as a protobuf Struct, either in binary wire format
// (MarshalProto / Unmarshal) or as protobuf JSON (MarshalJSON / UnmarshalJSON).
package report

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/icnn/internal/tensor"
	"github.com/born-ml/icnn/internal/train"
)

// StateDicter is implemented by every model in this module.
type StateDicter interface {
	StateDict() map[string]*tensor.RawTensor
}

// Model names a model whose weights go into a report. Weight names are
// prefixed with Name and a dot unless Name is empty.
type Model struct {
	Name    string
	Weights StateDicter
}

// Weight is a named weight tensor.
type Weight struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// Summary describes the per-batch loss series.
type Summary struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	First float64 `json:"first"`
	Last  float64 `json:"last"`
}

// Report is the hand-off record of a training run.
type Report struct {
	Losses     []float64 // Per-batch losses in batch order
	EpochMeans []float64
	Summary    Summary
	Weights    []Weight // Sorted by name
	CreatedAt  time.Time
}

// New builds a report from history and the final weights of models. The
// weight data is copied.
func New(history *train.History, models ...Model) (*Report, error) {
	if history == nil {
		return nil, fmt.Errorf("report: nil history")
	}

	r := &Report{
		Losses:     append([]float64(nil), history.Losses...),
		EpochMeans: append([]float64(nil), history.EpochMeans...),
		Summary:    summarize(history.Losses),
		CreatedAt:  time.Now().UTC(),
	}

	seen := make(map[string]bool)
	for _, m := range models {
		if m.Weights == nil {
			return nil, fmt.Errorf("report: model %q has no weights", m.Name)
		}
		for key, raw := range m.Weights.StateDict() {
			name := key
			if m.Name != "" {
				name = m.Name + "." + key
			}
			if seen[name] {
				return nil, fmt.Errorf("report: duplicate weight name %q", name)
			}
			seen[name] = true
			r.Weights = append(r.Weights, Weight{
				Name:  name,
				Shape: append([]int(nil), raw.Shape()...),
				Data:  append([]float64(nil), raw.Data()...),
			})
		}
	}
	sort.Slice(r.Weights, func(i, j int) bool { return r.Weights[i].Name < r.Weights[j].Name })

	return r, nil
}

// Weight returns the weight with the given name.
func (r *Report) Weight(name string) (Weight, bool) {
	i := sort.Search(len(r.Weights), func(i int) bool { return r.Weights[i].Name >= name })
	if i < len(r.Weights) && r.Weights[i].Name == name {
		return r.Weights[i], true
	}
	return Weight{}, false
}

func summarize(losses []float64) Summary {
	if len(losses) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(losses, nil)
	if len(losses) == 1 {
		std = 0
	}
	return Summary{
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(losses),
		Max:   floats.Max(losses),
		First: losses[0],
		Last:  losses[len(losses)-1],
	}
}
