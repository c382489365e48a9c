package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/born-ml/icnn/internal/tensor"
)

// SafeTensorsWriter writes models in SafeTensors format.
type SafeTensorsWriter struct {
	file   *os.File
	closed bool
}

// NewSafeTensorsWriter creates a new SafeTensors file writer.
func NewSafeTensorsWriter(path string) (*SafeTensorsWriter, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &SafeTensorsWriter{
		file:   file,
		closed: false,
	}, nil
}

// WriteSafeTensors writes tensors to a SafeTensors file.
//
// Tensors are written in alphabetical order by name.
func WriteSafeTensors(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) (err error) {
	writer, err := NewSafeTensorsWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return writer.WriteStateDict(tensors, metadata)
}

// WriteStateDict writes a state dictionary to the SafeTensors file.
//
// The state dictionary is a map from parameter names to tensors.
// Tensors are written in alphabetical order by name.
func (w *SafeTensorsWriter) WriteStateDict(stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	tensorNames := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		tensorNames = append(tensorNames, name)
	}
	sort.Strings(tensorNames)

	header := SafeTensorsHeader{
		Metadata: make(map[string]string, len(metadata)+1),
		Tensors:  make(map[string]SafeTensorInfo, len(tensorNames)),
	}
	for k, v := range metadata {
		header.Metadata[k] = v
	}

	var data bytes.Buffer
	for _, name := range tensorNames {
		raw := stateDict[name]
		start := int64(data.Len())
		for _, v := range raw.Data() {
			var buf [bytesPerElem]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			data.Write(buf[:])
		}

		header.Tensors[name] = SafeTensorInfo{
			DType:       DTypeF64,
			Shape:       append([]int(nil), raw.Shape()...),
			DataOffsets: [2]int64{start, int64(data.Len())},
		}
	}

	sum := ComputeChecksum(data.Bytes())
	header.Metadata[MetadataChecksum] = hex.EncodeToString(sum[:])

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	headerSize := uint64(len(headerJSON))
	if err := binary.Write(w.file, binary.LittleEndian, headerSize); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.file.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return nil
}

// Close closes the writer and the underlying file.
func (w *SafeTensorsWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
