// Package checkpoint persists Percept classifiers in the native .pct format.
//
// A checkpoint stores the model descriptor (layer widths) next to the
// learned parameter tensors, so loading reconstructs an equivalent model
// without the caller restating the architecture:
//
//	Format Structure:
//	  [4 bytes: Magic "PCPT"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata with model descriptor, tensor index, checksum]
//	  [Tensor data: raw bytes, 64-byte aligned]
//
// Tensors are written in sorted-name order and the header carries no
// timestamps, so saving the same model twice produces byte-identical
// files. The header records a SHA-256 checksum of the data section, which
// is verified on open.
//
// Example usage:
//
//	// Save a trained model
//	if err := checkpoint.Save(model, "model.pct"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Reconstruct it later
//	model, err := checkpoint.Load("model.pct")
//	if err != nil {
//	    log.Fatal(err)
//	}
package checkpoint
