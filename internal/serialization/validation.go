package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
// Malformed files could otherwise read past the data section or alias tensors.
func ValidateTensorOffsets(tensors map[string]SafeTensorInfo, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	type span struct {
		name       string
		start, end int64
	}
	sorted := make([]span, 0, len(tensors))
	for name, info := range tensors {
		sorted = append(sorted, span{name: name, start: info.DataOffsets[0], end: info.DataOffsets[1]})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].name < sorted[j].name
	})

	for i, t := range sorted {
		if t.start < 0 || t.end < t.start {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.name,
				Details: fmt.Sprintf("data_offsets=[%d, %d]", t.start, t.end),
			}
		}

		if t.end > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.name,
				Details: fmt.Sprintf("end %d > data_size %d", t.end, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.end > next.start {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.name,
					Tensor2: next.name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.start, t.end, next.start, next.end),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName checks tensor names for path traversal and malicious patterns.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}

	if name == "" {
		return &ValidationError{
			Type:    "invalid_name",
			Details: "empty tensor name",
		}
	}

	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..' (path traversal attempt)",
		}
	}

	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator (/ or \\)",
		}
	}

	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
		}
	}

	return nil
}

// validateHeader checks names, dtypes, element counts and offsets.
func validateHeader(h *SafeTensorsHeader, dataSize int64) error {
	for name, info := range h.Tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		if info.DType != DTypeF64 {
			return fmt.Errorf("tensor %q: %w %q (want %s)", name, ErrUnsupportedDType, info.DType, DTypeF64)
		}
		elems := int64(1)
		for _, dim := range info.Shape {
			if dim <= 0 {
				return fmt.Errorf("tensor %q: invalid shape %v", name, info.Shape)
			}
			elems *= int64(dim)
		}
		if got := info.DataOffsets[1] - info.DataOffsets[0]; got != elems*bytesPerElem {
			return fmt.Errorf("tensor %q: shape %v needs %d bytes, offsets span %d",
				name, info.Shape, elems*bytesPerElem, got)
		}
	}
	return ValidateTensorOffsets(h.Tensors, dataSize)
}
