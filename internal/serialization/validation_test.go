package serialization

import (
	"errors"
	"testing"
)

// TestValidateTensorOffsets_Overlap detects overlapping tensor regions.
func TestValidateTensorOffsets_Overlap(t *testing.T) {
	tests := []struct {
		name     string
		tensors  map[string]SafeTensorInfo
		dataSize int64
		wantType string
	}{
		{
			name: "partial overlap",
			tensors: map[string]SafeTensorInfo{
				"a": {DataOffsets: [2]int64{0, 16}},
				"b": {DataOffsets: [2]int64{8, 24}},
			},
			dataSize: 24,
			wantType: "offset_overlap",
		},
		{
			name: "exact boundary",
			tensors: map[string]SafeTensorInfo{
				"a": {DataOffsets: [2]int64{0, 16}},
				"b": {DataOffsets: [2]int64{16, 24}},
			},
			dataSize: 24,
		},
		{
			name: "out of bounds",
			tensors: map[string]SafeTensorInfo{
				"a": {DataOffsets: [2]int64{0, 32}},
			},
			dataSize: 24,
			wantType: "out_of_bounds",
		},
		{
			name: "inverted offsets",
			tensors: map[string]SafeTensorInfo{
				"a": {DataOffsets: [2]int64{16, 8}},
			},
			dataSize: 24,
			wantType: "negative_offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.wantType == "" {
				if err != nil {
					t.Errorf("ValidateTensorOffsets() unexpected error: %v", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %T (%v)", err, err)
			}
			if validationErr.Type != tt.wantType {
				t.Errorf("Expected %s error, got %s", tt.wantType, validationErr.Type)
			}
		})
	}
}

// TestValidateTensorName rejects path traversal and control bytes.
func TestValidateTensorName(t *testing.T) {
	valid := []string{"z.0.weight", "y.2.bias", "context.1.weight"}
	for _, name := range valid {
		if err := ValidateTensorName(name); err != nil {
			t.Errorf("ValidateTensorName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "../etc/passwd", "a/b", "a\\b", "bad\x00name"}
	for _, name := range invalid {
		err := ValidateTensorName(name)
		if !errors.Is(err, ErrInvalidTensorName) {
			t.Errorf("ValidateTensorName(%q) = %v, want ErrInvalidTensorName", name, err)
		}
	}
}
