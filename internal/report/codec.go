package report

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names of the encoded Struct.
const (
	fieldLosses     = "losses"
	fieldEpochMeans = "epoch_means"
	fieldSummary    = "summary"
	fieldWeights    = "weights"
	fieldCreatedAt  = "created_at"
)

var errMalformed = errors.New("report: malformed struct")

// ToStruct encodes the report as a protobuf Struct.
func (r *Report) ToStruct() *structpb.Struct {
	weights := make([]*structpb.Value, len(r.Weights))
	for i, w := range r.Weights {
		shape := make([]float64, len(w.Shape))
		for j, d := range w.Shape {
			shape[j] = float64(d)
		}
		weights[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"name":  structpb.NewStringValue(w.Name),
			"shape": numberList(shape),
			"data":  numberList(w.Data),
		}})
	}

	s := r.Summary
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldLosses:     numberList(r.Losses),
		fieldEpochMeans: numberList(r.EpochMeans),
		fieldSummary: structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"mean":  structpb.NewNumberValue(s.Mean),
			"std":   structpb.NewNumberValue(s.Std),
			"min":   structpb.NewNumberValue(s.Min),
			"max":   structpb.NewNumberValue(s.Max),
			"first": structpb.NewNumberValue(s.First),
			"last":  structpb.NewNumberValue(s.Last),
		}}),
		fieldWeights:   structpb.NewListValue(&structpb.ListValue{Values: weights}),
		fieldCreatedAt: structpb.NewStringValue(r.CreatedAt.Format(time.RFC3339Nano)),
	}}
}

// MarshalProto encodes the report in protobuf wire format.
func (r *Report) MarshalProto() ([]byte, error) {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(r.ToStruct())
	if err != nil {
		return nil, fmt.Errorf("report: marshal proto: %w", err)
	}
	return data, nil
}

// MarshalJSON encodes the report as protobuf JSON.
func (r *Report) MarshalJSON() ([]byte, error) {
	data, err := protojson.Marshal(r.ToStruct())
	if err != nil {
		return nil, fmt.Errorf("report: marshal json: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes a report produced by MarshalJSON.
func (r *Report) UnmarshalJSON(data []byte) error {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("report: unmarshal json: %w", err)
	}
	decoded, err := FromStruct(&s)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}

// Unmarshal decodes a report produced by MarshalProto.
func Unmarshal(data []byte) (*Report, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("report: unmarshal proto: %w", err)
	}
	return FromStruct(&s)
}

// FromStruct decodes a report from a Struct built by ToStruct.
func FromStruct(s *structpb.Struct) (*Report, error) {
	f := s.GetFields()
	r := &Report{}

	var err error
	if r.Losses, err = listNumbers(f[fieldLosses]); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errMalformed, fieldLosses, err)
	}
	if r.EpochMeans, err = listNumbers(f[fieldEpochMeans]); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errMalformed, fieldEpochMeans, err)
	}

	summary := f[fieldSummary].GetStructValue().GetFields()
	r.Summary = Summary{
		Mean:  summary["mean"].GetNumberValue(),
		Std:   summary["std"].GetNumberValue(),
		Min:   summary["min"].GetNumberValue(),
		Max:   summary["max"].GetNumberValue(),
		First: summary["first"].GetNumberValue(),
		Last:  summary["last"].GetNumberValue(),
	}

	for i, v := range f[fieldWeights].GetListValue().GetValues() {
		wf := v.GetStructValue().GetFields()
		if wf == nil {
			return nil, fmt.Errorf("%w: weight %d is not a struct", errMalformed, i)
		}
		w := Weight{Name: wf["name"].GetStringValue()}
		shape, err := listNumbers(wf["shape"])
		if err != nil {
			return nil, fmt.Errorf("%w: weight %q shape: %v", errMalformed, w.Name, err)
		}
		w.Shape = make([]int, len(shape))
		for j, d := range shape {
			w.Shape[j] = int(d)
		}
		if w.Data, err = listNumbers(wf["data"]); err != nil {
			return nil, fmt.Errorf("%w: weight %q data: %v", errMalformed, w.Name, err)
		}
		r.Weights = append(r.Weights, w)
	}

	if ts := f[fieldCreatedAt].GetStringValue(); ts != "" {
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errMalformed, fieldCreatedAt, err)
		}
	}
	return r, nil
}

func numberList(xs []float64) *structpb.Value {
	values := make([]*structpb.Value, len(xs))
	for i, x := range xs {
		values[i] = structpb.NewNumberValue(x)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func listNumbers(v *structpb.Value) ([]float64, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, errors.New("not a list")
	}
	out := make([]float64, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		n, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("element %d is not a number", i)
		}
		out[i] = n.NumberValue
	}
	return out, nil
}
