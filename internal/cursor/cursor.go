// Package cursor provides the growable byte buffer used to assemble and
// parse the intermediate packed representation of a geometry record.
//
// It plays the same role as mebo's pool.ByteBuffer, but with the resize
// semantics the codec pipeline actually needs: a cursor tracks an allocated
// capacity separately from a visible length, never shrinks its capacity, and
// preserves the visible prefix across a grow.
package cursor

// Cursor is a byte buffer with two sizes: the allocated capacity and the
// visible length. Growing the visible length beyond capacity reallocates and
// copies the current prefix; capacity is never reduced, even when the
// visible length shrinks, so repeated encode/decode cycles on the same
// Cursor amortize their allocations.
type Cursor struct {
	buf []byte
	len int
}

// New returns an empty Cursor with no backing allocation.
func New() *Cursor {
	return &Cursor{}
}

// NewSize returns a Cursor pre-sized to n visible bytes.
func NewSize(n int) *Cursor {
	c := &Cursor{}
	c.Resize(n)
	return c
}

// Resize sets the visible length to n, growing the backing array (and
// copying the current visible prefix into it) if n exceeds capacity. It
// never shrinks the backing array's capacity.
func (c *Cursor) Resize(n int) {
	if n < 0 {
		panic("cursor: negative size")
	}

	if n > cap(c.buf) {
		next := make([]byte, n)
		copy(next, c.buf[:c.len])
		c.buf = next
	}
	c.len = n
}

// ResizeFill is Resize followed by overwriting the entire visible region
// with fill.
func (c *Cursor) ResizeFill(n int, fill byte) {
	c.Resize(n)
	b := c.buf[:c.len]
	for i := range b {
		b[i] = fill
	}
}

// Len returns the current visible length.
func (c *Cursor) Len() int { return c.len }

// Cap returns the current allocated capacity.
func (c *Cursor) Cap() int { return cap(c.buf) }

// Bytes returns the visible region. The slice aliases the Cursor's backing
// array and is invalidated by the next Resize that grows capacity.
func (c *Cursor) Bytes() []byte { return c.buf[:c.len] }

// At returns a sub-slice of the visible region starting at off.
func (c *Cursor) At(off int) []byte { return c.buf[off:c.len] }

// CopyAt copies src into the visible region starting at off. It panics if
// the write would run past the visible length.
func (c *Cursor) CopyAt(off int, src []byte) {
	if off < 0 || off+len(src) > c.len {
		panic("cursor: copy out of bounds")
	}
	copy(c.buf[off:], src)
}

// Append copies src into the buffer at *pos, growing the visible length
// only if the copy runs past it, and advances *pos by len(src). It is the
// building block for
// sequential record assembly, where the caller holds a running write
// position across many appends.
func (c *Cursor) Append(pos *int, src []byte) {
	needed := *pos + len(src)
	if needed > c.len {
		c.Resize(needed)
	}
	copy(c.buf[*pos:needed], src)
	*pos = needed
}

// AppendZero writes n zero bytes at *pos, growing the visible length only
// if the write runs past it, and advances *pos by n, mirroring Append for
// the zero-fill case.
func (c *Cursor) AppendZero(pos *int, n int) {
	needed := *pos + n
	if needed > c.len {
		c.Resize(needed)
	}
	b := c.buf[*pos:needed]
	for i := range b {
		b[i] = 0
	}
	*pos = needed
}

// Reset truncates the visible length to zero without releasing capacity.
func (c *Cursor) Reset() { c.len = 0 }
