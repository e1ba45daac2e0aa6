package record

import (
	"math/rand"
	"testing"

	"github.com/nullptr-labs/geomio/compress"
	"github.com/stretchr/testify/require"
)

func triangleMesh(n int) (verts []float64, inds []uint32) {
	rnd := rand.New(rand.NewSource(1))
	verts = make([]float64, n*3)
	for i := range verts {
		verts[i] = rnd.Float64()*20 - 10
	}
	inds = make([]uint32, n)
	for i := range inds {
		inds[i] = uint32(rnd.Intn(n))
	}
	return verts, inds
}

func testRecord(n int) Record {
	verts, inds := triangleMesh(n)
	return Record{
		Transform: Transform{
			Scale:    [3]float64{1, 1, 1},
			Rotation: [4]float64{0, 0, 0, 1},
			Position: [3]float64{0, 0, 0},
		},
		Geometry: Geometry{
			VertCount: uint32(len(verts)),
			IndCount:  uint32(len(inds)),
			Verts:     verts,
			Inds:      inds,
		},
	}
}

func TestEncodeDecodeRoundTripNoOp(t *testing.T) {
	c := NewCodec(compress.NewNoOpCodec(), nil)
	rec := testRecord(64)

	blob, err := c.Encode(rec, Options{})
	require.NoError(t, err)

	got, err := c.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, rec.Scale, got.Scale)
	require.Equal(t, rec.Rotation, got.Rotation)
	require.Equal(t, rec.Position, got.Position)
	require.Equal(t, rec.VertCount, got.VertCount)
	require.Equal(t, rec.IndCount, got.IndCount)
	require.Equal(t, rec.Inds, got.Inds)
}

func TestEncodeDecodeRoundTripLZMA2(t *testing.T) {
	c := NewCodec(compress.NewLZMA2Codec(), nil)
	rec := testRecord(200)

	blob, err := c.Encode(rec, Options{})
	require.NoError(t, err)

	got, err := c.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, rec.VertCount, got.VertCount)
	require.Equal(t, rec.Inds, got.Inds)
}

func TestForceFloat32RoundTripIsApproximate(t *testing.T) {
	c := NewCodec(compress.NewNoOpCodec(), nil)
	rec := testRecord(32)

	blob, err := c.Encode(rec, Options{ForceFloat32: true})
	require.NoError(t, err)

	got, err := c.Decode(blob)
	require.NoError(t, err)
	for i, v := range got.Verts {
		require.InDelta(t, rec.Verts[i], v, 1e-3)
	}
}

func TestDecodeTooShortErrors(t *testing.T) {
	c := NewCodec(compress.NewNoOpCodec(), nil)
	_, err := c.Decode([]byte{1, 2, 3})
	require.Error(t, err)
	require.Equal(t, c.LastError(), err.Error())
}

func TestEncodeRejectsMismatchedLengths(t *testing.T) {
	c := NewCodec(compress.NewNoOpCodec(), nil)
	rec := testRecord(8)
	rec.VertCount++

	_, err := c.Encode(rec, Options{})
	require.Error(t, err)
}

func TestNoOpRoundTripWithDefaultEncodeOffset(t *testing.T) {
	c := NewCodec(compress.NewNoOpCodec(), nil)
	rec := testRecord(16)

	blob, err := c.Encode(rec, Options{EncodeOffset: 0})
	require.NoError(t, err)

	got, err := c.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, rec.Inds, got.Inds)
}
