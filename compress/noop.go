package compress

// NoOpCodec bypasses compression entirely, copying data through unchanged.
// It is useful for tests and for measuring the codec pipeline's overhead
// independent of the general-purpose compressor.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

// NewNoOpCodec creates a new no-op codec.
func NewNoOpCodec() NoOpCodec { return NoOpCodec{} }

// PropSize is 0: there is no property block to carry.
func (c NoOpCodec) PropSize() int { return 0 }

// Compress returns data unchanged.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns data unchanged.
func (c NoOpCodec) Decompress(data []byte, destLen int) ([]byte, error) { return data, nil }
