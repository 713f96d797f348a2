package checkpoint

import (
	"github.com/percept-ml/percept/internal/nn"
	"github.com/percept-ml/percept/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "PCPT"
	FormatVersion   = 1
	HeaderAlignment = 64 // Tensor data starts on a 64-byte boundary
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeInt32   = "int32"
	DTypeUint8   = "uint8"
)

// Flags for the .pct format.
const (
	FlagHasOptimizer uint32 = 1 << 0 // bit 0: optimizer state included
	FlagHasTrainMeta uint32 = 1 << 1 // bit 1: training metadata included
)

// Header is the JSON header of a .pct file.
//
// Field order is fixed and no timestamps are recorded: together with the
// sorted tensor index this keeps serialization deterministic.
type Header struct {
	FormatVersion int          `json:"format_version"` // Version of the .pct format
	Model         nn.Config    `json:"model"`          // Model descriptor
	Tensors       []TensorMeta `json:"tensors"`        // Tensor index, sorted by name
	Checksum      string       `json:"checksum"`       // SHA-256 of the data section, hex
	Train         *TrainMeta   `json:"train,omitempty"`
}

// TrainMeta carries training state for checkpoints taken mid-run.
type TrainMeta struct {
	Epoch int     `json:"epoch"` // Training epoch number
	Step  int64   `json:"step"`  // Training step number
	Loss  float64 `json:"loss"`  // Loss value at this checkpoint
}

// TensorMeta describes a tensor in the .pct file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "0.weight")
	DType  string `json:"dtype"`  // Data type (e.g., "float32")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// dtypeToString converts tensor.DataType to its string representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Int32:
		return DTypeInt32
	case tensor.Uint8:
		return DTypeUint8
	default:
		return "unknown"
	}
}

// stringToDtype converts a string representation to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeUint8:
		return tensor.Uint8, true
	default:
		return 0, false
	}
}
