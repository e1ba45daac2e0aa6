// Package record implements the per-record encoder/decoder: it orchestrates
// float-mode selection, vertex predictive encoding, index bit-packing, and
// general-purpose compression into the self-describing EncodedRecord blob
// the container format stores one of per geometry.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/nullptr-labs/geomio/compress"
	"github.com/nullptr-labs/geomio/format"
	"github.com/nullptr-labs/geomio/internal/alloc"
	"github.com/nullptr-labs/geomio/internal/bitpack"
	"github.com/nullptr-labs/geomio/internal/cursor"
	"github.com/nullptr-labs/geomio/internal/errs"
	"github.com/nullptr-labs/geomio/internal/floatrange"
	"github.com/nullptr-labs/geomio/internal/fpcodec"
)

// Transform is the affine transform (scale, rotation quaternion,
// translation) carried alongside a record's raw geometry.
type Transform struct {
	Scale    [3]float64
	Rotation [4]float64 // x, y, z, w
	Position [3]float64
}

// Geometry is the raw, unpacked mesh payload of one record. VertCount is the
// number of scalar doubles in Verts (a multiple of 3 for a triangle mesh),
// not the number of vertices. The field keeps that meaning throughout geomio,
// including as the input to bitpack.BitsFor for index-width selection.
type Geometry struct {
	VertCount uint32
	IndCount  uint32
	Verts     []float64
	Inds      []uint32
}

// Record is the full, decoded contents of one EncodedRecord.
type Record struct {
	Transform
	Geometry
}

// Options controls non-default Encode behavior.
type Options struct {
	// EncodeOffset biases the compression-bypass rule: the compressed form
	// is kept when it is smaller than (uncompressed size + EncodeOffset)
	// bytes; otherwise the raw payload is stored. Zero selects
	// format.EncodeOffset.
	EncodeOffset uint32
	// ForceFloat32 skips FloatRangeTest and always selects float32 mode.
	ForceFloat32 bool
}

// Codec packs/unpacks Records into/from EncodedRecord blobs using a single
// general-purpose compressor. A Codec is not safe for concurrent use; create
// one per goroutine, matching the source's non-reentrant GeometryWriter and
// GeometryReader.
type Codec struct {
	gp    compress.Codec
	alloc alloc.Binding
	err   errs.Channel
}

// NewCodec returns a Codec that compresses with gp. If a is nil, the default
// Go-GC-backed allocator is used.
func NewCodec(gp compress.Codec, a alloc.Allocator) *Codec {
	return &Codec{gp: gp, alloc: alloc.NewBinding(a)}
}

// LastError returns the error string from the most recent failing Encode or
// Decode call, or "" if none has failed yet.
func (c *Codec) LastError() string { return c.err.String() }

// Encode packs rec and compresses it, returning a self-describing
// EncodedRecord blob.
func (c *Codec) Encode(rec Record, opts Options) ([]byte, error) {
	if err := validate(rec.Geometry); err != nil {
		c.err.Set(err.Error())
		return nil, err
	}

	encodeOffset := opts.EncodeOffset
	if encodeOffset == 0 {
		encodeOffset = format.EncodeOffset
	}

	mode := format.VertexModeFloat64
	if opts.ForceFloat32 || floatrange.InRange(rec.Verts, rec.Inds) {
		mode = format.VertexModeFloat32
	}

	var vertBlob []byte
	if mode == format.VertexModeFloat32 {
		vertBlob = fpcodec.Encode32(rec.Verts)
	} else {
		vertBlob = fpcodec.Encode64(rec.Verts)
	}

	bits := bitpack.BitsFor(rec.VertCount)
	indBlob := c.alloc.Alloc(uint64(bitpack.ByteLen(int(rec.IndCount), bits)))
	bitpack.Pack(indBlob, rec.Inds, bits)

	payload := buildPayload(rec, vertBlob, indBlob, mode)

	compressed, err := c.gp.Compress(payload)
	if err != nil {
		c.err.SetPrefixed("lzma: ", err)
		return nil, fmt.Errorf("lzma: %w", err)
	}

	srcLen := uint64(len(payload))
	out := cursor.NewSize(8)
	if srcLen+uint64(encodeOffset) <= uint64(len(compressed)) {
		binary.LittleEndian.PutUint64(out.Bytes(), srcLen|format.BypassBit)
		pos := 8
		out.Append(&pos, payload)
	} else {
		binary.LittleEndian.PutUint64(out.Bytes(), srcLen&^format.BypassBit)
		pos := 8
		out.Append(&pos, compressed)
	}

	return out.Bytes(), nil
}

// Decode parses a blob previously produced by Encode.
func (c *Codec) Decode(blob []byte) (Record, error) {
	if len(blob) < 8 {
		err := errors.New("record: blob shorter than size word")
		c.err.Set(err.Error())
		return Record{}, err
	}

	sizeWord := binary.LittleEndian.Uint64(blob)
	bypassed := sizeWord&format.BypassBit != 0
	uncompressedLen := sizeWord &^ format.BypassBit
	rest := blob[8:]

	var payload []byte
	if bypassed {
		if uint64(len(rest)) < uncompressedLen {
			err := errors.New("record: truncated raw payload")
			c.err.Set(err.Error())
			return Record{}, err
		}
		payload = rest[:uncompressedLen]
	} else {
		p, err := c.gp.Decompress(rest, int(uncompressedLen))
		if err != nil {
			c.err.SetPrefixed("lzma: ", err)
			return Record{}, fmt.Errorf("lzma: %w", err)
		}
		payload = p
	}

	rec, err := parsePayload(payload)
	if err != nil {
		c.err.Set(err.Error())
		return Record{}, err
	}

	return rec, nil
}

func validate(g Geometry) error {
	if uint32(len(g.Verts)) != g.VertCount {
		return fmt.Errorf("record: len(Verts)=%d does not match VertCount=%d", len(g.Verts), g.VertCount)
	}
	if uint32(len(g.Inds)) != g.IndCount {
		return fmt.Errorf("record: len(Inds)=%d does not match IndCount=%d", len(g.Inds), g.IndCount)
	}
	if g.VertCount%3 != 0 {
		return fmt.Errorf("record: VertCount=%d is not a multiple of 3", g.VertCount)
	}
	return nil
}

// buildPayload lays out the PackedPayload: fixed header, then the vertex
// blob, then the index bitstream, immediately adjacent with no gap — the
// source calls this step "compact" because its in-place C buffer has to
// slide the index blob down to close the gap left by the original
// uncompressed index region; building the slices in final position from the
// start makes that step unnecessary here.
func buildPayload(rec Record, vertBlob, indBlob []byte, mode format.VertexMode) []byte {
	c := cursor.NewSize(format.HeaderSize + len(vertBlob) + len(indBlob))
	pos := 0

	writeF64Array(c, &pos, rec.Scale[:])
	writeF64Array(c, &pos, rec.Rotation[:])
	writeF64Array(c, &pos, rec.Position[:])

	var tmp4 [4]byte
	binary.LittleEndian.PutUint32(tmp4[:], rec.VertCount)
	c.Append(&pos, tmp4[:])
	binary.LittleEndian.PutUint32(tmp4[:], rec.IndCount)
	c.Append(&pos, tmp4[:])

	packedVertLen := uint64(len(vertBlob))
	if mode == format.VertexModeFloat32 {
		packedVertLen |= format.FloatModeBit
	}
	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], packedVertLen)
	c.Append(&pos, tmp8[:])
	binary.LittleEndian.PutUint64(tmp8[:], uint64(len(indBlob)))
	c.Append(&pos, tmp8[:])

	c.Append(&pos, vertBlob)
	c.Append(&pos, indBlob)

	return c.Bytes()
}

func writeF64Array(c *cursor.Cursor, pos *int, vals []float64) {
	var tmp8 [8]byte
	for _, v := range vals {
		binary.LittleEndian.PutUint64(tmp8[:], math.Float64bits(v))
		c.Append(pos, tmp8[:])
	}
}

func parsePayload(payload []byte) (Record, error) {
	if len(payload) < format.HeaderSize {
		return Record{}, errors.New("record: payload shorter than header")
	}

	var rec Record
	off := 0

	for i := range rec.Scale {
		rec.Scale[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
		off += 8
	}
	for i := range rec.Rotation {
		rec.Rotation[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
		off += 8
	}
	for i := range rec.Position {
		rec.Position[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[off:]))
		off += 8
	}

	rec.VertCount = binary.LittleEndian.Uint32(payload[off:])
	off += 4
	rec.IndCount = binary.LittleEndian.Uint32(payload[off:])
	off += 4

	packedVertLen := binary.LittleEndian.Uint64(payload[off:])
	off += 8
	packedIndLen := binary.LittleEndian.Uint64(payload[off:])
	off += 8

	floatMode := packedVertLen&format.FloatModeBit != 0
	packedVertLen &^= format.FloatModeBit

	if uint64(len(payload)-off) < packedVertLen+packedIndLen {
		return Record{}, errors.New("record: payload shorter than declared vertex/index blobs")
	}

	vertBlob := payload[off : off+int(packedVertLen)]
	off += int(packedVertLen)
	indBlob := payload[off : off+int(packedIndLen)]

	var verts []float64
	var err error
	if floatMode {
		verts, err = fpcodec.Decode32(vertBlob, int(rec.VertCount))
	} else {
		verts, err = fpcodec.Decode64(vertBlob, int(rec.VertCount))
	}
	if err != nil {
		return Record{}, fmt.Errorf("fpzip: %w", err)
	}
	rec.Verts = verts

	bits := bitpack.BitsFor(rec.VertCount)
	inds := make([]uint32, rec.IndCount)
	bitpack.Unpack(inds, indBlob, int(rec.IndCount), bits)
	rec.Inds = inds

	return rec, nil
}
