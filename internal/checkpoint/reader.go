package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/percept-ml/percept/internal/tensor"
)

// Reader reads checkpoints from .pct format.
//
// NewReader parses and validates the header and verifies the data-section
// checksum before returning; a Reader in hand is a structurally sound file.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	dataOffset int64 // Offset where tensor data starts
	dataSize   int64 // Size of the data section
	closed     bool
}

// NewReader opens a .pct file.
//
// A missing file surfaces the underlying not-found error, so callers can
// test with errors.Is(err, os.ErrNotExist).
func NewReader(path string) (*Reader, error) {
	//nolint:gosec // G304: file path comes from the caller, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader := &Reader{file: file}

	if err := reader.parseHeader(); err != nil {
		_ = file.Close() // Best effort close on error
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	reader.dataSize = fileInfo.Size() - reader.dataOffset
	if reader.dataSize < 0 {
		_ = file.Close()
		return nil, fmt.Errorf("file truncated: data section missing %d bytes", -reader.dataSize)
	}

	if err := ValidateHeader(&reader.header, reader.dataSize); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := reader.validateFlags(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := reader.verifyChecksum(); err != nil {
		_ = file.Close()
		return nil, err
	}

	return reader, nil
}

// parseHeader reads and parses the .pct file header.
func (r *Reader) parseHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	if err := binary.Read(r.file, binary.LittleEndian, &r.flags); err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerBytes); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	// Data starts after alignment padding.
	currentPos := int64(4+4+4+8) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	r.dataOffset = currentPos + padding

	return nil
}

// validateFlags cross-checks the flag bits against the parsed header.
// The writer derives the flags from the header, so any disagreement means
// the file was tampered with or corrupted.
func (r *Reader) validateFlags() error {
	hasTrain := r.header.Train != nil
	if (r.flags&FlagHasTrainMeta != 0) != hasTrain {
		return fmt.Errorf("flags disagree with header: train metadata flag is %v, header has train metadata: %v",
			r.flags&FlagHasTrainMeta != 0, hasTrain)
	}

	hasOptimizer := false
	for _, meta := range r.header.Tensors {
		if isOptimizerKey(meta.Name) {
			hasOptimizer = true
			break
		}
	}
	if (r.flags&FlagHasOptimizer != 0) != hasOptimizer {
		return fmt.Errorf("flags disagree with header: optimizer flag is %v, header has optimizer tensors: %v",
			r.flags&FlagHasOptimizer != 0, hasOptimizer)
	}

	return nil
}

// verifyChecksum reads the data section and compares its SHA-256 against
// the header.
func (r *Reader) verifyChecksum() error {
	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to tensor data: %w", err)
	}

	data := make([]byte, r.dataSize)
	if _, err := io.ReadFull(r.file, data); err != nil {
		return fmt.Errorf("failed to read tensor data for checksum: %w", err)
	}

	return ValidateChecksum(ComputeChecksum(data), r.header.Checksum)
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// TensorNames returns a list of all tensor names in the file.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for _, meta := range r.header.Tensors {
		if meta.Name == name {
			return &meta, nil
		}
	}
	return nil, fmt.Errorf("tensor %s not found", name)
}

// ReadTensorData reads raw tensor data for a given tensor name.
func (r *Reader) ReadTensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	if _, err := r.file.Seek(r.dataOffset+meta.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to tensor data: %w", err)
	}

	data := make([]byte, meta.Size)
	if _, err := io.ReadFull(r.file, data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	return data, nil
}

// LoadTensor loads a single tensor from the file.
func (r *Reader) LoadTensor(name string) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("unsupported dtype: %s", meta.DType)
	}

	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for tensor %s: %w", name, err)
	}
	if int64(shape.NumElements()*dtype.Size()) != meta.Size {
		return nil, fmt.Errorf("tensor %s: shape %v does not match stored size %d", name, shape, meta.Size)
	}

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}

	raw, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}
	copy(raw.Data(), data)

	return raw, nil
}

// ReadStateDict reads all tensors into a state dictionary.
func (r *Reader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	stateDict := make(map[string]*tensor.RawTensor)
	for _, meta := range r.header.Tensors {
		raw, err := r.LoadTensor(meta.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		stateDict[meta.Name] = raw
	}

	return stateDict, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
