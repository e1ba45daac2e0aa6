// Package geomio provides a compact binary container format for streaming
// triangle-mesh geometry: one container holds many named records, each
// carrying an affine transform (scale, rotation quaternion, translation)
// plus its vertex and index buffers, predictively encoded and
// general-purpose compressed.
//
// # Core Features
//
//   - Per-record adaptive float32/float64 vertex encoding
//   - Minimum-width bit-packed triangle indices
//   - Pluggable general-purpose compression (LZMA2 default, Zstd/S2/LZ4/None)
//   - Self-describing container directory with per-record name and AABB
//   - Compression-bypass fallback for already-incompressible payloads
//
// # Basic Usage
//
// Writing a container:
//
//	import "github.com/nullptr-labs/geomio"
//
//	f, _ := os.Create("scene.geom")
//	w, _ := geomio.NewDefaultWriter()
//	stream.ScopedWrite(w, f, func(w *stream.Writer) error {
//	    _, err := w.EmplaceGeometry("cube", rec, record.Options{})
//	    return err
//	})
//
// Reading a container:
//
//	f, _ := os.Open("scene.geom")
//	r, _ := geomio.NewDefaultReader()
//	stream.ScopedRead(r, f, func(r *stream.Reader) error {
//	    for i := 0; i < r.GetGeometryCount(); i++ {
//	        rec, _ := r.GetGeometry(i)
//	        _ = rec
//	    }
//	    return nil
//	})
//
// # Package Structure
//
// This file provides convenient top-level wrappers around the record and
// stream packages, covering the default LZMA2-everywhere configuration. For
// fine-grained control over per-record or per-directory compression, use
// record.NewCodec and stream.NewWriter/NewReader directly.
package geomio

import (
	"github.com/nullptr-labs/geomio/compress"
	"github.com/nullptr-labs/geomio/format"
	"github.com/nullptr-labs/geomio/internal/record"
	"github.com/nullptr-labs/geomio/stream"
)

// NewDefaultWriter returns a stream.Writer using LZMA2 for both record
// payloads and the trailing directory, geomio's default configuration.
func NewDefaultWriter() (*stream.Writer, error) {
	rc, err := newDefaultRecordCodec()
	if err != nil {
		return nil, err
	}
	dirCodec, err := compress.CreateCodec(format.CompressionLZMA2)
	if err != nil {
		return nil, err
	}
	return stream.NewWriter(rc, dirCodec), nil
}

// NewDefaultReader returns a stream.Reader matching NewDefaultWriter's
// configuration.
func NewDefaultReader() (*stream.Reader, error) {
	rc, err := newDefaultRecordCodec()
	if err != nil {
		return nil, err
	}
	dirCodec, err := compress.CreateCodec(format.CompressionLZMA2)
	if err != nil {
		return nil, err
	}
	return stream.NewReader(rc, dirCodec), nil
}

// NewWriter returns a stream.Writer using compressionType for both record
// payloads and the trailing directory.
func NewWriter(compressionType format.CompressionType) (*stream.Writer, error) {
	rc, err := newRecordCodec(compressionType)
	if err != nil {
		return nil, err
	}
	dirCodec, err := compress.CreateCodec(compressionType)
	if err != nil {
		return nil, err
	}
	return stream.NewWriter(rc, dirCodec), nil
}

// NewReader returns a stream.Reader matching NewWriter's configuration.
func NewReader(compressionType format.CompressionType) (*stream.Reader, error) {
	rc, err := newRecordCodec(compressionType)
	if err != nil {
		return nil, err
	}
	dirCodec, err := compress.CreateCodec(compressionType)
	if err != nil {
		return nil, err
	}
	return stream.NewReader(rc, dirCodec), nil
}

func newDefaultRecordCodec() (*record.Codec, error) {
	return newRecordCodec(format.CompressionLZMA2)
}

func newRecordCodec(t format.CompressionType) (*record.Codec, error) {
	gp, err := compress.CreateCodec(t)
	if err != nil {
		return nil, err
	}
	return record.NewCodec(gp, nil), nil
}
