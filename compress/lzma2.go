package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
	"github.com/ulikunitz/xz/lzma2"
)

// LZMA2Codec is the container's default general-purpose compressor. It
// writes a raw LZMA2 chunk stream (no .xz container, no CRC footer) using
// the parameters the format pins: lc=3, lp=0, pb=2, a 64MiB dictionary.
// Unlike the "level 5 / fb 32 / 8 threads" tuning the source configures its
// vendored encoder with, ulikunitz/xz's pure-Go encoder exposes dictionary
// size and literal-context parameters but not a numeric "level" or a
// match-finder thread count; DictCap below is chosen to land in the same
// compression-ratio neighborhood as the source's level-5 preset.
type LZMA2Codec struct {
	props   lzma.Properties
	dictCap int
}

var _ Codec = LZMA2Codec{}

// NewLZMA2Codec returns an LZMA2Codec configured with the container's
// pinned properties.
func NewLZMA2Codec() LZMA2Codec {
	return LZMA2Codec{
		props:   lzma.Properties{LC: 3, LP: 0, PB: 2},
		dictCap: 1 << 26, // 64 MiB
	}
}

// PropSize is 1: LZMA2's property block is the single byte produced by
// propByte below, in contrast to LZMA1's 5-byte block.
func (c LZMA2Codec) PropSize() int { return 1 }

// propByte packs (PB, LP, LC) into LZMA's canonical single property byte:
// (pb*5+lp)*9+lc. This is the same packing LZMA1's 5-byte property header
// encodes in its first byte, and it is what a decoder needs to reconstruct
// the three parameters from the one byte LZMA2 carries per the format spec.
func propByte(p lzma.Properties) byte {
	return byte((int(p.PB)*5+int(p.LP))*9 + int(p.LC))
}

func unpackPropByte(b byte) lzma.Properties {
	v := int(b)
	lc := v % 9
	v /= 9
	lp := v % 5
	pb := v / 5
	return lzma.Properties{LC: lc, LP: lp, PB: pb}
}

// Compress returns the 1-byte property block followed by a raw LZMA2 chunk
// stream encoding data.
func (c LZMA2Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(propByte(c.props))

	wc := lzma2.Writer2Config{
		Properties: &c.props,
		DictCap:    c.dictCap,
	}
	w, err := wc.NewWriter2(&buf)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress reads the 1-byte property block followed by a raw LZMA2 chunk
// stream, decoding exactly destLen bytes.
func (c LZMA2Codec) Decompress(data []byte, destLen int) ([]byte, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("lzma: short input")
	}
	props := unpackPropByte(data[0])

	rc := lzma2.Reader2Config{
		Properties: &props,
		DictCap:    c.dictCap,
	}
	r, err := rc.NewReader2(bytes.NewReader(data[1:]))
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}

	out := make([]byte, destLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}

	return out, nil
}
