package stream

import (
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/nullptr-labs/geomio/compress"
	"github.com/nullptr-labs/geomio/internal/record"
	"github.com/stretchr/testify/require"
)

// memFile is a minimal in-memory io.ReadWriteSeeker, standing in for an
// os.File-backed container during tests.
type memFile struct {
	buf []byte
	pos int64
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.buf)) {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	end := f.pos + int64(len(p))
	if end > int64(len(f.buf)) {
		grown := make([]byte, end)
		copy(grown, f.buf)
		f.buf = grown
	}
	copy(f.buf[f.pos:end], p)
	f.pos = end
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = f.pos
	case io.SeekEnd:
		base = int64(len(f.buf))
	}
	f.pos = base + offset
	return f.pos, nil
}

func randomMesh(n int, seed int64) record.Record {
	rnd := rand.New(rand.NewSource(seed))
	verts := make([]float64, n*3)
	for i := range verts {
		verts[i] = rnd.Float64()*20 - 10
	}
	inds := make([]uint32, n)
	for i := range inds {
		inds[i] = uint32(rnd.Intn(n))
	}
	return record.Record{
		Transform: record.Transform{
			Scale:    [3]float64{1, 1, 1},
			Rotation: [4]float64{0, 0, 0, 1},
			Position: [3]float64{0, 0, 0},
		},
		Geometry: record.Geometry{
			VertCount: uint32(len(verts)),
			IndCount:  uint32(len(inds)),
			Verts:     verts,
			Inds:      inds,
		},
	}
}

func TestEmptyContainerRoundTrip(t *testing.T) {
	f := &memFile{}
	rc := record.NewCodec(compress.NewNoOpCodec(), nil)
	w := NewWriter(rc, nil)

	require.NoError(t, ScopedWrite(w, f, func(w *Writer) error { return nil }))

	f.pos = 0
	r := NewReader(rc, nil)
	require.NoError(t, ScopedRead(r, f, func(r *Reader) error {
		require.Equal(t, 0, r.GetGeometryCount())
		return nil
	}))
}

func TestSingleRecordRoundTrip(t *testing.T) {
	f := &memFile{}
	rc := record.NewCodec(compress.NewNoOpCodec(), nil)
	w := NewWriter(rc, nil)
	rec := randomMesh(30, 1)

	require.NoError(t, ScopedWrite(w, f, func(w *Writer) error {
		seq, err := w.EmplaceGeometry("cube", rec, record.Options{})
		require.NoError(t, err)
		require.Equal(t, uint64(1), seq)
		return nil
	}))

	f.pos = 0
	rc2 := record.NewCodec(compress.NewNoOpCodec(), nil)
	r := NewReader(rc2, nil)
	require.NoError(t, ScopedRead(r, f, func(r *Reader) error {
		require.Equal(t, 1, r.GetGeometryCount())

		name, err := r.GetGeometryName(0)
		require.NoError(t, err)
		require.Equal(t, "cube", name)

		idx, ok := r.IndexForName("cube")
		require.True(t, ok)
		require.Equal(t, 0, idx)

		got, err := r.GetGeometry(0)
		require.NoError(t, err)
		require.Equal(t, rec.Inds, got.Inds)
		return nil
	}))
}

func TestMultiRecordSequentialRead(t *testing.T) {
	f := &memFile{}
	rc := record.NewCodec(compress.NewLZMA2Codec(), nil)
	w := NewWriter(rc, nil)
	recA := randomMesh(40, 2)
	recB := randomMesh(60, 3)

	require.NoError(t, ScopedWrite(w, f, func(w *Writer) error {
		if _, err := w.EmplaceGeometry("a", recA, record.Options{}); err != nil {
			return err
		}
		_, err := w.EmplaceGeometry("b", recB, record.Options{})
		return err
	}))

	f.pos = 0
	rc2 := record.NewCodec(compress.NewLZMA2Codec(), nil)
	r := NewReader(rc2, nil)
	require.NoError(t, ScopedRead(r, f, func(r *Reader) error {
		require.Equal(t, 2, r.GetGeometryCount())

		gotB, err := r.GetGeometry(1)
		require.NoError(t, err)
		require.Equal(t, recB.Inds, gotB.Inds)

		gotA, err := r.GetGeometry(0)
		require.NoError(t, err)
		require.Equal(t, recA.Inds, gotA.Inds)
		return nil
	}))
}

func TestCompressedDirectoryRoundTrip(t *testing.T) {
	f := &memFile{}
	rc := record.NewCodec(compress.NewNoOpCodec(), nil)
	dirCodec := compress.NewLZMA2Codec()
	w := NewWriter(rc, dirCodec)

	names := []string{"alpha", "beta", "gamma"}
	require.NoError(t, ScopedWrite(w, f, func(w *Writer) error {
		for _, n := range names {
			if _, err := w.EmplaceGeometry(n, randomMesh(20, 7), record.Options{}); err != nil {
				return err
			}
		}
		return nil
	}))

	f.pos = 0
	r := NewReader(record.NewCodec(compress.NewNoOpCodec(), nil), dirCodec)
	require.NoError(t, ScopedRead(r, f, func(r *Reader) error {
		require.Equal(t, 3, r.GetGeometryCount())
		for i, n := range names {
			got, err := r.GetGeometryName(i)
			require.NoError(t, err)
			require.Equal(t, n, got)
		}
		return nil
	}))
}

// failAfterWriteN wraps memFile but fails the Nth and every later Write call,
// simulating an EndWrite-stage I/O failure (e.g. the back-patch write)
// independent of whatever failed in the scoped body.
type failAfterWriteN struct {
	memFile
	n     int
	calls int
}

func (f *failAfterWriteN) Write(p []byte) (int, error) {
	f.calls++
	if f.calls >= f.n {
		return 0, io.ErrClosedPipe
	}
	return f.memFile.Write(p)
}

// TestScopedWriteErrorPreservation verifies that when the scoped body fails
// after leaving its own message on the Writer (e.g. a failed
// EmplaceGeometry), a *subsequent* EndWrite failure does not clobber it:
// GetLastError must still report the body's failure, the first one, not
// EndWrite's.
func TestScopedWriteErrorPreservation(t *testing.T) {
	f := &failAfterWriteN{n: 2} // allow BeginWrite's sentinel write, fail everything after
	rc := record.NewCodec(compress.NewNoOpCodec(), nil)
	w := NewWriter(rc, nil)

	bodyErr := ScopedWrite(w, f, func(w *Writer) error {
		// An IndCount that disagrees with len(Inds) fails validation inside
		// record.Codec.Encode and leaves its message on w via EmplaceGeometry.
		bad := record.Record{
			Geometry: record.Geometry{VertCount: 3, IndCount: 5, Verts: []float64{1, 2, 3}},
		}
		_, err := w.EmplaceGeometry("broken", bad, record.Options{})
		return err
	})

	require.Error(t, bodyErr)
	require.Equal(t, bodyErr.Error(), w.LastError())
}

// TestEmplaceGeometryAABBWithRotation covers spec.md §8's "Bounding-box
// correctness" property against a non-identity rotation, which every other
// test in this package uses an identity quaternion and therefore cannot
// catch: a quaternion rotation bug that only manifests on the cross-product
// terms is invisible when q=(0,0,0,1) zeroes those terms out regardless.
//
// The quaternion here is a 90-degree rotation about the X axis; rotating
// (0,1,0) by it must yield (0,0,1) under the textbook identity
// p + 2(q x (q x p + w p)) spec.md §4.6 specifies. A single degenerate
// triangle (all three indices referencing one vertex) exercises
// EmplaceGeometry's full transform pipeline while keeping the expected AABB
// a single point.
func TestEmplaceGeometryAABBWithRotation(t *testing.T) {
	f := &memFile{}
	rc := record.NewCodec(compress.NewNoOpCodec(), nil)
	w := NewWriter(rc, nil)

	half := math.Sqrt2 / 2 // sin(45 deg) == cos(45 deg) for a 90 deg rotation
	rec := record.Record{
		Transform: record.Transform{
			Scale:    [3]float64{1, 1, 1},
			Rotation: [4]float64{half, 0, 0, half}, // 90 deg about X
			Position: [3]float64{0, 0, 0},
		},
		Geometry: record.Geometry{
			VertCount: 3,
			IndCount:  3,
			Verts:     []float64{0, 1, 0},
			Inds:      []uint32{0, 0, 0},
		},
	}

	require.NoError(t, ScopedWrite(w, f, func(w *Writer) error {
		_, err := w.EmplaceGeometry("axis", rec, record.Options{})
		return err
	}))

	f.pos = 0
	r := NewReader(record.NewCodec(compress.NewNoOpCodec(), nil), nil)
	require.NoError(t, ScopedRead(r, f, func(r *Reader) error {
		aabb, err := r.GetGeometryAABB(0)
		require.NoError(t, err)

		const eps = 1e-9
		want := [3]float64{0, 0, 1}
		for a := 0; a < 3; a++ {
			require.InDelta(t, want[a], aabb.Min[a], eps)
			require.InDelta(t, want[a], aabb.Max[a], eps)
		}
		return nil
	}))
}

func TestCorruptedHeaderDetected(t *testing.T) {
	f := &memFile{buf: make([]byte, 8)}
	for i := range f.buf {
		f.buf[i] = 0xFF
	}

	r := NewReader(record.NewCodec(compress.NewNoOpCodec(), nil), nil)
	err := r.BeginRead(f)
	require.Error(t, err)
}
