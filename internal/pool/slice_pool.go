// Package pool provides typed slice pools for scratch buffers. The
// StreamContainer writer draws the transformed-vertex buffer it needs on
// every EmplaceGeometry call from GetFloat64Slice. Geometry records tend to
// be encoded in tight loops (one per mesh in a scene), so reusing these
// buffers cuts GC pressure.
package pool

import "sync"

var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
	uint32SlicePool = sync.Pool{
		New: func() any { return &[]uint32{} },
	}
)

// GetFloat64Slice retrieves a float64 slice of exact length size from the
// pool, reusing the backing array if its capacity suffices. The returned
// cleanup function must be called (typically via defer) to return the slice.
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]
	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}

// GetUint32Slice retrieves a uint32 slice of exact length size from the
// pool, reusing the backing array if its capacity suffices. No code in the
// encode/decode pipeline calls it.
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)
	slice := (*ptr)[:0]
	if cap(slice) < size {
		slice = make([]uint32, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint32SlicePool.Put(ptr) }
}
