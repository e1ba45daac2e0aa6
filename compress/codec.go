// Package compress provides the general-purpose block compressors geomio
// layers under its predictive vertex/index encoding. The container format
// pins LZMA2 as its default (see LZMA2Codec), but the Codec interface and
// CreateCodec factory mirror mebo's own pluggable-backend pattern for its
// payload compressors, so callers who are willing to break LZMA2
// wire-compatibility can swap in a faster backend.
package compress

import (
	"fmt"

	"github.com/nullptr-labs/geomio/format"
)

// Codec compresses and decompresses whole buffers. Every implementation in
// this package is stateless and safe for concurrent use by distinct
// RecordCodec/StreamContainer instances; the only cross-instance coupling is
// the pooled encoder/decoder state the LZ4 and Zstd backends keep internally.
type Codec interface {
	// Compress returns the property block (PropSize bytes) followed by the
	// compressed payload.
	Compress(data []byte) ([]byte, error)

	// Decompress restores data previously produced by Compress, given the
	// exact uncompressed size (taken from the record's size word) so
	// implementations can size their output buffer without guessing.
	Decompress(data []byte, destLen int) ([]byte, error)

	// PropSize is the width, in bytes, of the property block Compress
	// prepends to its output. LZMA2 uses 1 byte; prop-less backends use 0.
	PropSize() int
}

// CreateCodec is a factory function that creates a Codec for the given
// compression type.
func CreateCodec(t format.CompressionType) (Codec, error) {
	switch t {
	case format.CompressionLZMA2:
		return NewLZMA2Codec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	default:
		return nil, fmt.Errorf("compress: unknown compression type %s", t)
	}
}
