// Package fpcodec is geomio's lossless predictive codec for 1-D arrays of
// IEEE-754 floats or doubles. It plays the role the specification assigns to
// an external FPZIP-style collaborator, configured with dimensions (n,1,1,1)
// and an element type of FLOAT or DOUBLE.
//
// No Go binding of FPZIP (or an equivalent predictive floating-point
// compressor) exists in the reference corpus, so this package is grounded
// instead on the XOR/leading-trailing-zero scheme from mebo's Gorilla float
// encoder (internal/encoding/numeric_gorilla.go): consecutive samples are
// XORed against the previous one, and the surviving meaningful bits are
// written either inside the previous block's leading/trailing-zero window
// (when they fit there) or with an explicit new leading-zero count and
// block length. That scheme is float-width agnostic, so the
// same bit writer serves both the float32 and float64 vertex modes
// RecordCodec selects between.
package fpcodec

import (
	"errors"
	"math"
	"math/bits"
)

// ErrTruncated is returned by Decode when the input ends before the
// declared number of values has been read.
var ErrTruncated = errors.New("fpcodec: truncated stream")

// Encode64 compresses a flat array of float64 scalars.
func Encode64(values []float64) []byte {
	w := newBitWriter()
	encode(w, uint(64), len(values), func(i int) uint64 { return math.Float64bits(values[i]) })
	return w.bytes()
}

// Decode64 reconstructs count float64 scalars previously produced by
// Encode64.
func Decode64(blob []byte, count int) ([]float64, error) {
	out := make([]float64, count)
	r := newBitReader(blob)
	err := decode(r, uint(64), count, func(i int, bits uint64) { out[i] = math.Float64frombits(bits) })
	return out, err
}

// Encode32 compresses a flat array of float64 scalars narrowed to float32.
// Narrowing happens as part of encoding, mirroring the source's in-place
// forward-scan narrow immediately before handing the buffer to its
// predictive codec.
func Encode32(values []float64) []byte {
	w := newBitWriter()
	encode(w, uint(32), len(values), func(i int) uint64 { return uint64(math.Float32bits(float32(values[i]))) })
	return w.bytes()
}

// Decode32 reconstructs count float64 values from a float32 stream
// previously produced by Encode32, widening each value back to float64.
func Decode32(blob []byte, count int) ([]float64, error) {
	out := make([]float64, count)
	r := newBitReader(blob)
	err := decode(r, uint(32), count, func(i int, bits uint64) {
		out[i] = float64(math.Float32frombits(uint32(bits)))
	})
	return out, err
}

func encode(w *bitWriter, width uint, count int, bitsAt func(int) uint64) {
	if count == 0 {
		return
	}

	prev := bitsAt(0)
	w.writeBits(prev, width)

	prevLeading, prevTrailing := width, uint(0)
	for i := 1; i < count; i++ {
		cur := bitsAt(i)
		xor := cur ^ prev
		prev = cur

		if xor == 0 {
			w.writeBits(0, 1)
			continue
		}
		w.writeBits(1, 1)

		leading, trailing := leadingTrailingZeros(xor, width)
		if leading >= prevLeading && trailing >= prevTrailing {
			w.writeBits(0, 1)
			blockSize := width - prevLeading - prevTrailing
			w.writeBits(xor>>prevTrailing, blockSize)
			continue
		}

		w.writeBits(1, 1)
		leadBits := leadingFieldWidth(width)
		w.writeBits(uint64(leading), leadBits)

		blockSize := width - leading - trailing
		lenBits := blockLenFieldWidth(width)
		w.writeBits(uint64(blockSize-1), lenBits)
		w.writeBits(xor>>trailing, blockSize)

		prevLeading, prevTrailing = leading, trailing
	}
}

func decode(r *bitReader, width uint, count int, set func(int, uint64)) error {
	if count == 0 {
		return nil
	}

	prev, err := r.readBits(width)
	if err != nil {
		return err
	}
	set(0, prev)

	prevLeading, prevTrailing := width, uint(0)
	leadBits := leadingFieldWidth(width)
	lenBits := blockLenFieldWidth(width)

	for i := 1; i < count; i++ {
		control, err := r.readBits(1)
		if err != nil {
			return err
		}
		if control == 0 {
			set(i, prev)
			continue
		}

		sameBlock, err := r.readBits(1)
		if err != nil {
			return err
		}

		var leading, blockSize uint
		if sameBlock == 0 {
			leading = prevLeading
			blockSize = width - prevLeading - prevTrailing
		} else {
			l, err := r.readBits(leadBits)
			if err != nil {
				return err
			}
			bs, err := r.readBits(lenBits)
			if err != nil {
				return err
			}
			leading = uint(l)
			blockSize = uint(bs) + 1
		}

		meaningful, err := r.readBits(blockSize)
		if err != nil {
			return err
		}

		trailing := width - leading - blockSize
		xor := meaningful << trailing
		cur := prev ^ xor
		set(i, cur)

		prev = cur
		prevLeading, prevTrailing = leading, trailing
	}

	return nil
}

func leadingTrailingZeros(xor uint64, width uint) (leading, trailing uint) {
	switch width {
	case 64:
		return uint(bits.LeadingZeros64(xor)), uint(bits.TrailingZeros64(xor))
	case 32:
		v := uint32(xor)
		return uint(bits.LeadingZeros32(v)), uint(bits.TrailingZeros32(v))
	default:
		panic("fpcodec: unsupported width")
	}
}

// leadingFieldWidth mirrors Gorilla's fixed 5/6-bit control fields, scaled
// to the element width in use (float32 needs one fewer bit for its leading
// zero count).
func leadingFieldWidth(width uint) uint {
	if width <= 32 {
		return 5
	}
	return 6
}

func blockLenFieldWidth(width uint) uint {
	if width <= 32 {
		return 5
	}
	return 6
}
