package sample

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

const frameKeySize = 12

// Hash returns an order-sensitive hash of the frame sequence. Equal traces
// hash equal; the probe sequence of AsyncSafeTraceMultiset depends only on
// this value.
func Hash(frames []Frame) uint64 {
	var d xxhash.Digest
	d.Reset()

	var b [frameKeySize]byte
	for i := range frames {
		binary.LittleEndian.PutUint64(b[:8], uint64(frames[i].Code))
		binary.LittleEndian.PutUint32(b[8:], uint32(frames[i].Line))
		d.Write(b[:])
	}

	return d.Sum64()
}

// Equal reports whether two traces hold the same frames in the same order.
func Equal(t1, t2 []Frame) bool {
	if len(t1) != len(t2) {
		return false
	}
	for i := range t1 {
		if t1[i] != t2[i] {
			return false
		}
	}

	return true
}

// appendKey appends the canonical binary encoding of the frame sequence,
// used as the aggregate multiset key. Two traces encode equal iff Equal
// reports them equal.
func appendKey(dst []byte, frames []Frame) []byte {
	var b [frameKeySize]byte
	for i := range frames {
		binary.LittleEndian.PutUint64(b[:8], uint64(frames[i].Code))
		binary.LittleEndian.PutUint32(b[8:], uint32(frames[i].Line))
		dst = append(dst, b[:]...)
	}

	return dst
}
