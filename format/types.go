// Package format holds the small, dependency-free constants and enums shared
// across geomio's codec and container layers.
package format

// VertexMode identifies which precision the vertex predictive codec used for
// a record's vertex stream.
type VertexMode uint8

const (
	VertexModeFloat64 VertexMode = 0x1 // VertexModeFloat64 stores vertices at full double precision.
	VertexModeFloat32 VertexMode = 0x2 // VertexModeFloat32 stores vertices narrowed to float32.
)

func (m VertexMode) String() string {
	switch m {
	case VertexModeFloat64:
		return "Float64"
	case VertexModeFloat32:
		return "Float32"
	default:
		return "Unknown"
	}
}

// CompressionType selects the general-purpose block compressor applied to a
// packed record payload (and to the trailing directory block). geomio pins
// LZMA2 as the container default, matching the format's single property byte,
// but exposes the other members of the family for callers who want to trade
// ratio for speed.
type CompressionType uint8

const (
	CompressionLZMA2 CompressionType = 0x1 // CompressionLZMA2 is the container's default, spec-mandated compressor.
	CompressionZstd  CompressionType = 0x2 // CompressionZstd trades ratio for much faster decode.
	CompressionS2    CompressionType = 0x3 // CompressionS2 favors encode/decode speed over ratio.
	CompressionLZ4   CompressionType = 0x4 // CompressionLZ4 is the fastest, lowest-ratio option.
	CompressionNone  CompressionType = 0x5 // CompressionNone bypasses compression entirely.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionLZMA2:
		return "LZMA2"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Sizes of the fixed-width fields making up a PackedPayload header, in bytes.
// See internal/record for the layout these add up to.
const (
	ScaleSize    = 3 * 8
	RotationSize = 4 * 8
	PositionSize = 3 * 8
	CountSize    = 4
	PackLenSize  = 8

	HeaderSize = ScaleSize + RotationSize + PositionSize + CountSize + CountSize + PackLenSize + PackLenSize
)

// FloatModeBit is the top bit of PackedVertLen marking that the vertex blob
// was encoded in float32 mode.
const FloatModeBit = uint64(1) << 63

// BypassBit is the top bit of an EncodedRecord's size word marking that
// general-purpose compression was bypassed and the raw payload follows.
const BypassBit = uint64(1) << 63

// DirCompressedBit is the top bit of the container HeaderSlot marking that the
// trailing directory block is itself compressed.
const DirCompressedBit = uint64(1) << 63

// SentinelAllOnes is the initial value written into the HeaderSlot before
// EndWrite back-patches it, and the directory-count value that flags a
// corrupted or unfinished container on read.
const SentinelAllOnes = ^uint64(0)

// EncodeOffset is the default bias applied by the compression-bypass rule:
// a record's compressed form is kept unless it is at least (uncompressed
// size + EncodeOffset) bytes long, in which case the encoder stores the
// payload verbatim.
const EncodeOffset = uint32(1) << 20
