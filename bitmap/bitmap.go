// Package bitmap implements the packed flag bits and append-only replay-protection bitmaps
// the revenue distribution engine uses instead of per-leaf accounts.
package bitmap

// Flags is a packed set of boolean state bits, stored as a single little-endian word on each
// account (ProgramConfig.Flags, Distribution.Flags).
type Flags uint64

// Has reports whether bit is set.
func (f Flags) Has(bit uint) bool {
	return f&(1<<bit) != 0
}

// Set returns f with bit set to v.
func (f Flags) Set(bit uint, v bool) Flags {
	if v {
		return f | (1 << bit)
	}
	return f &^ (1 << bit)
}

// Bitmap is a contiguous run of bits, one per Merkle leaf index, used for idempotent
// replay protection. Each Distribution record holds several of these (processed debt,
// written-off debt, erroneous debt, processed rewards), allocated lazily at the byte
// length needed to cover the leaf count known when the range is enabled.
type Bitmap struct {
	bits []byte
}

// NewBitmap allocates a bitmap wide enough to hold n bits, all initially clear.
func NewBitmap(n uint32) Bitmap {
	return Bitmap{bits: make([]byte, ByteLen(n))}
}

// ByteLen returns ceil(n/8), the number of bytes needed to hold n bits.
func ByteLen(n uint32) int {
	return int((n + 7) / 8)
}

// Len reports how many bits this bitmap can address.
func (b Bitmap) Len() int {
	return len(b.bits) * 8
}

// Allocated reports whether this bitmap has been sized (i.e. its range has been enabled).
func (b Bitmap) Allocated() bool {
	return len(b.bits) > 0
}

// Get reports whether the bit at index is set. Indices beyond the allocated range read as
// clear, matching an unallocated range never having been processed.
func (b Bitmap) Get(index uint32) bool {
	byteIdx := index / 8
	if int(byteIdx) >= len(b.bits) {
		return false
	}
	return b.bits[byteIdx]&(1<<(index%8)) != 0
}

// Set marks the bit at index. It panics if index is outside the allocated range; callers must
// allocate the range (via NewBitmap sized to the leaf count) before setting any bit in it.
func (b Bitmap) Set(index uint32) {
	byteIdx := index / 8
	if int(byteIdx) >= len(b.bits) {
		panic("bitmap: index out of allocated range")
	}
	b.bits[byteIdx] |= 1 << (index % 8)
}

// Clear unmarks the bit at index. It panics if index is outside the allocated range, for the
// same reason Set does.
func (b Bitmap) Clear(index uint32) {
	byteIdx := index / 8
	if int(byteIdx) >= len(b.bits) {
		panic("bitmap: index out of allocated range")
	}
	b.bits[byteIdx] &^= 1 << (index % 8)
}

// Bytes exposes the underlying storage, e.g. for serialization to an account's tail.
func (b Bitmap) Bytes() []byte {
	return b.bits
}

// FromBytes wraps existing bytes as a Bitmap, as when deserializing an account's bitmap range
// from its start/end byte offsets.
func FromBytes(data []byte) Bitmap {
	return Bitmap{bits: data}
}
