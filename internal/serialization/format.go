package serialization

import (
	"encoding/json"
	"fmt"
)

// SafeTensors constants.
const (
	// DTypeF64 is the SafeTensors dtype string for float64.
	DTypeF64 = "F64"

	// MetadataChecksum is the metadata key holding the hex SHA-256 of the
	// data section.
	MetadataChecksum = "sha256"

	metadataKey  = "__metadata__"
	bytesPerElem = 8
)

// SafeTensorInfo describes a tensor in the SafeTensors header.
type SafeTensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end) relative to the data section
}

// SafeTensorsHeader is the JSON header of a SafeTensors file.
type SafeTensorsHeader struct {
	Metadata map[string]string
	Tensors  map[string]SafeTensorInfo
}

// MarshalJSON flattens metadata and tensors into one object.
func (h SafeTensorsHeader) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(h.Tensors)+1)
	if len(h.Metadata) > 0 {
		flat[metadataKey] = h.Metadata
	}
	for name, info := range h.Tensors {
		flat[name] = info
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits "__metadata__" from the tensor entries.
func (h *SafeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap[metadataKey]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]SafeTensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == metadataKey {
			continue
		}
		var info SafeTensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}

	return nil
}
