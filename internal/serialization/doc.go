// Package serialization saves and loads model weights in the SafeTensors
// format.
//
//	Format Structure:
//	  [8 bytes: header size (uint64 LE)]
//	  [header: JSON, tensor name -> {dtype, shape, data_offsets}]
//	  [tensor data: raw little-endian bytes, tensors in name order]
//
// Tensors are float64 and written with dtype "F64". The writer stores a
// SHA-256 checksum of the data section in the "__metadata__" map under
// MetadataChecksum; the reader verifies it when present.
//
// Example usage:
//
//	// Save a model
//	err := serialization.WriteSafeTensors("model.safetensors", model.StateDict(), map[string]string{
//	    "model": "ficnn",
//	})
//
//	// Load a model
//	stateDict, metadata, err := serialization.ReadSafeTensors("model.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = model.LoadStateDict(stateDict)
package serialization
