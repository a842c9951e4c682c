// Package fixedpoint implements the bounded-rational arithmetic the revenue distribution
// engine uses in place of floating point: basis-point and 9-decimal unit shares, and the
// DZ epoch counter used to index distributions.
package fixedpoint

import "fmt"

// DoubleZeroEpoch is a monotonically increasing network epoch counter, distinct from the host
// chain's own epoch. Its wire representation is 8 little-endian bytes, usable directly as a PDA
// seed.
type DoubleZeroEpoch uint64

// EpochDuration measures a span of DZ epochs. u32 is more than enough range for any calculation
// that needs the passage of DZ epochs as an input.
type EpochDuration uint32

// AsSeed returns the little-endian byte encoding used as a PDA seed component.
func (e DoubleZeroEpoch) AsSeed() [8]byte {
	var b [8]byte
	v := uint64(e)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// SaturatingAddDuration adds a duration, clamping at the maximum representable epoch rather than
// wrapping.
func (e DoubleZeroEpoch) SaturatingAddDuration(d EpochDuration) DoubleZeroEpoch {
	sum := uint64(e) + uint64(d)
	if sum < uint64(e) {
		return DoubleZeroEpoch(^uint64(0))
	}
	return DoubleZeroEpoch(sum)
}

func (e DoubleZeroEpoch) String() string {
	return fmt.Sprintf("%d", uint64(e))
}
