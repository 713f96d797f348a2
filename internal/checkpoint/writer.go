package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/percept-ml/percept/internal/tensor"
)

// Writer writes checkpoints in .pct format.
//
// A Writer owns its file handle for the duration of the call sequence and
// must be closed on all exit paths.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a .pct file writer, creating or truncating path.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: file path comes from the caller, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &Writer{file: file}, nil
}

// WriteStateDict writes a state dictionary and header to the file.
//
// The header's tensor index and checksum are computed here; any values
// already present in those fields are replaced. Tensors are laid out in
// sorted-name order so that identical state produces identical bytes.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.RawTensor, header Header) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	tensorOrder := make([]string, 0, len(stateDict))
	for name := range stateDict {
		tensorOrder = append(tensorOrder, name)
	}
	sort.Strings(tensorOrder)

	// Build the tensor index and concatenate the data section.
	header.FormatVersion = FormatVersion
	header.Tensors = make([]TensorMeta, 0, len(stateDict))

	var currentOffset int64
	var dataBuf []byte
	for _, name := range tensorOrder {
		raw := stateDict[name]
		size := int64(raw.ByteSize())

		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: currentOffset,
			Size:   size,
		})

		dataBuf = append(dataBuf, raw.Data()...)
		currentOffset += size
	}

	header.Checksum = ComputeChecksum(dataBuf)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if _, err := w.file.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}

	if err := binary.Write(w.file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}

	flags := uint32(0)
	if header.Train != nil {
		flags |= FlagHasTrainMeta
	}
	for _, name := range tensorOrder {
		if isOptimizerKey(name) {
			flags |= FlagHasOptimizer
			break
		}
	}
	if err := binary.Write(w.file, binary.LittleEndian, flags); err != nil {
		return fmt.Errorf("failed to write flags: %w", err)
	}

	headerSize := uint64(len(headerJSON))
	if err := binary.Write(w.file, binary.LittleEndian, headerSize); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}

	if _, err := w.file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Pad so tensor data starts on a HeaderAlignment boundary.
	currentPos := int64(4+4+4+8) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := w.file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.file.Write(dataBuf); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return nil
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
