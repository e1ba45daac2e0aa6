// Package alloc carries user-supplied allocation hooks for a record codec.
//
// The source routes these hooks through a thread-local slot because the
// external libraries it binds (fpzip, LZMA2) only accept a bare function
// pointer or a small per-call context struct. Go has no thread-local
// storage, so Binding simply carries the hooks by value inside each
// record.Codec, with no global or goroutine-local routing. record.Codec
// allocates its bit-packed index buffer through the Binding; the vertex
// codec (fpcodec) and the general-purpose compressors (compress) take no
// allocator and allocate through the Go runtime. See the design notes for
// why this supersedes the source's thread-local approach rather than
// reimplementing it.
package alloc

// Allocator is the pair of allocation hooks a caller may supply to a
// RecordCodec instance for the scratch memory it allocates through its
// Binding.
// Alloc(0) must return a usable, non-aliasing value; Free(nil) must be a
// no-op. The default Go allocator (below) satisfies this trivially by
// working in terms of byte slices rather than raw pointers.
type Allocator interface {
	// Alloc returns a new byte slice of the given length.
	Alloc(size uint64) []byte
	// Free releases a slice previously returned by Alloc. Implementations
	// that rely on the garbage collector may treat this as a no-op.
	Free(buf []byte)
}

// goAllocator is the default Allocator: it defers entirely to the Go
// garbage collector, matching idiomatic Go where manual free hooks exist
// only to support callers with unusual memory constraints (e.g. arena
// allocators or pooled buffers).
type goAllocator struct{}

func (goAllocator) Alloc(size uint64) []byte { return make([]byte, size) }
func (goAllocator) Free([]byte)               {}

// Default is the zero-overhead Allocator used when a caller does not supply
// their own.
var Default Allocator = goAllocator{}

// Binding carries the active Allocator for a single codec or container
// instance. Unlike the source's thread-local slot, a Binding is owned by one
// instance and passed explicitly, so distinct instances on distinct
// goroutines never share mutable state.
type Binding struct {
	a Allocator
}

// NewBinding returns a Binding around a. If a is nil, Default is used.
func NewBinding(a Allocator) Binding {
	if a == nil {
		a = Default
	}
	return Binding{a: a}
}

// Alloc delegates to the bound Allocator.
func (b Binding) Alloc(size uint64) []byte { return b.a.Alloc(size) }

// Free delegates to the bound Allocator.
func (b Binding) Free(buf []byte) { b.a.Free(buf) }
