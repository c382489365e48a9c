package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/icnn/internal/tensor"
)

// ReadSafeTensors reads every tensor of a SafeTensors file written by
// WriteSafeTensors. It returns the state dictionary and the metadata map,
// with the checksum entry verified and kept.
func ReadSafeTensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // read-only, nothing to flush
	}()

	return DecodeSafeTensors(file)
}

// DecodeSafeTensors decodes a SafeTensors stream.
func DecodeSafeTensors(r io.Reader) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header SafeTensorsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if err := validateHeader(&header, int64(len(data))); err != nil {
		return nil, nil, err
	}
	if stored, ok := header.Metadata[MetadataChecksum]; ok {
		if err := ValidateChecksum(data, stored); err != nil {
			return nil, nil, err
		}
	}

	names := make([]string, 0, len(header.Tensors))
	for name := range header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	stateDict := make(map[string]*tensor.RawTensor, len(names))
	for _, name := range names {
		info := header.Tensors[name]
		chunk := data[info.DataOffsets[0]:info.DataOffsets[1]]
		values := make([]float64, len(chunk)/bytesPerElem)
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*bytesPerElem:]))
		}
		raw, err := tensor.RawFromSlice(values, tensor.Shape(info.Shape), tensor.CPU)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %s: %w", name, err)
		}
		stateDict[name] = raw
	}

	return stateDict, header.Metadata, nil
}
