package compress

import "github.com/klauspost/compress/s2"

// S2Codec offers klauspost/compress's S2 format as a drop-in alternative to
// LZMA2 for callers who value encode/decode speed over ratio. It carries no
// property block of its own: S2 frames are self-describing.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec { return S2Codec{} }

// PropSize is 0: S2 needs no out-of-band properties.
func (c S2Codec) PropSize() int { return 0 }

// Compress compresses data using S2.
func (c S2Codec) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

// Decompress decompresses data previously produced by Compress. destLen is
// unused: S2 frames carry their own length.
func (c S2Codec) Decompress(data []byte, destLen int) ([]byte, error) {
	return s2.Decode(nil, data)
}
