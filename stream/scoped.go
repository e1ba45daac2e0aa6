package stream

import "io"

// ScopedWrite runs fn between BeginWrite and EndWrite, guaranteeing EndWrite
// still runs even if fn fails, and returning fn's error over EndWrite's if
// both fail — mirroring the source's GeometryStreamScopedIO<GeometryStreamWriter>
// destructor-driven BeginWrite/EndWrite pairing, expressed as an explicit
// higher-order function since Go has no destructors to hook EndWrite to.
//
// w.LastError() follows the same first-failure-wins rule as the returned
// error: if fn's own failure already left its message on w (e.g. a failed
// EmplaceGeometry), a subsequent EndWrite failure does not clobber it.
func ScopedWrite(w *Writer, rw io.ReadWriteSeeker, fn func(*Writer) error) error {
	if err := w.BeginWrite(rw); err != nil {
		return err
	}

	bodyErr := fn(w)
	snapshot := w.err.Snapshot()
	endErr := w.EndWrite()
	if bodyErr != nil {
		w.err.Restore(snapshot)
	}

	if bodyErr != nil {
		return bodyErr
	}
	return endErr
}

// ScopedRead runs fn between BeginRead and EndRead, with the same
// first-failure-wins guarantee as ScopedWrite.
func ScopedRead(r *Reader, rw io.ReadWriteSeeker, fn func(*Reader) error) error {
	if err := r.BeginRead(rw); err != nil {
		return err
	}

	bodyErr := fn(r)
	snapshot := r.err.Snapshot()
	endErr := r.EndRead()
	if bodyErr != nil {
		r.err.Restore(snapshot)
	}

	if bodyErr != nil {
		return bodyErr
	}
	return endErr
}
