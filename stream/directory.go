package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/nullptr-labs/geomio/format"
)

// encodeDirectory lays out the trailing directory block: a u64 count,
// followed by each entry's name as a length-prefixed UTF-8 string, followed
// by the full array of MinMax bounding boxes. The source instead writes a
// flat buffer of null-terminated wchar_t names and reconstructs pointers
// into it on read; a length-prefixed UTF-8 string list does the same job
// without the embedded-null ambiguity that format carries.
func encodeDirectory(entries []entry) []byte {
	size := 8
	for _, e := range entries {
		size += 4 + len(e.name)
	}
	size += len(entries) * 48

	buf := make([]byte, size)
	off := 0

	binary.LittleEndian.PutUint64(buf[off:], uint64(len(entries)))
	off += 8

	for _, e := range entries {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(e.name)))
		off += 4
		off += copy(buf[off:], e.name)
	}

	for _, e := range entries {
		for _, v := range e.aabb.Min {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
			off += 8
		}
		for _, v := range e.aabb.Max {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
			off += 8
		}
	}

	return buf
}

func decodeDirectory(buf []byte) ([]entry, error) {
	if len(buf) < 8 {
		return nil, errors.New("stream: directory shorter than count field")
	}
	off := 0
	count := binary.LittleEndian.Uint64(buf[off:])
	off += 8
	if count == format.SentinelAllOnes {
		return nil, errors.New("stream: directory count is the sentinel all-ones value")
	}

	entries := make([]entry, count)
	for i := range entries {
		if off+4 > len(buf) {
			return nil, fmt.Errorf("stream: directory truncated reading name %d length", i)
		}
		nameLen := int(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
		if off+nameLen > len(buf) {
			return nil, fmt.Errorf("stream: directory truncated reading name %d", i)
		}
		entries[i].name = string(buf[off : off+nameLen])
		off += nameLen
	}

	for i := range entries {
		if off+48 > len(buf) {
			return nil, fmt.Errorf("stream: directory truncated reading AABB %d", i)
		}
		for a := range entries[i].aabb.Min {
			entries[i].aabb.Min[a] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
			off += 8
		}
		for a := range entries[i].aabb.Max {
			entries[i].aabb.Max[a] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
			off += 8
		}
	}

	return entries, nil
}
