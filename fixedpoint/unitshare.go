package fixedpoint

import (
	"fmt"
	"math/bits"
)

// Scalar is any unsigned integer width mul_scalar/mul_scalar_rounded may be applied to.
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// UnitShare16 is a basis-point fraction (MAX = 10_000), used for validator fees.
type UnitShare16 uint16

// UnitShare32 is a 9-decimal fraction (MAX = 1_000_000_000), used for burn rates and
// reward-share proportions.
type UnitShare32 uint32

const (
	unitShare16Max uint64 = 10_000
	unitShare32Max uint64 = 1_000_000_000
)

// MaxUnitShare16 is the upper bound a UnitShare16 may hold (100%, in basis points).
const MaxUnitShare16 UnitShare16 = UnitShare16(unitShare16Max)

// MaxUnitShare32 is the upper bound a UnitShare32 may hold (100%, in 9-decimal share units).
const MaxUnitShare32 UnitShare32 = UnitShare32(unitShare32Max)

// NewUnitShare16 validates v against MAX, returning ok=false if v exceeds it.
func NewUnitShare16(v uint16) (UnitShare16, bool) {
	if uint64(v) > unitShare16Max {
		return 0, false
	}
	return UnitShare16(v), true
}

// NewUnitShare32 validates v against MAX, returning ok=false if v exceeds it.
func NewUnitShare32(v uint32) (UnitShare32, bool) {
	if uint64(v) > unitShare32Max {
		return 0, false
	}
	return UnitShare32(v), true
}

// mulDiv computes floor((a*b)/max) using a widened 128-bit intermediate, optionally adding
// max/2 to the numerator first for banker's-style half-up rounding. Both a and max must be
// <= max's own magnitude for the widened product's high word to stay below max, which this
// package's callers guarantee by construction (a share is always <= its own MAX).
func mulDiv(a, b, max uint64, rounded bool) uint64 {
	hi, lo := bits.Mul64(a, b)
	if rounded {
		half := max / 2
		var carry uint64
		lo, carry = bits.Add64(lo, half, 0)
		hi += carry
	}
	q, _ := bits.Div64(hi, lo, max)
	return q
}

// MulScalar returns floor(self * x / MAX), computed without overflow for any x <= math.MaxUint64.
func (s UnitShare16) MulScalar(x uint64) uint64 {
	return mulDiv(uint64(s), x, unitShare16Max, false)
}

// MulScalarRounded returns round-half-up(self * x / MAX). It never undershoots MulScalar and
// never exceeds it by more than 1.
func (s UnitShare16) MulScalarRounded(x uint64) uint64 {
	return mulDiv(uint64(s), x, unitShare16Max, true)
}

// MulScalarT is the generic form of MulScalar for non-u64 scalar types.
func MulScalarT[T Scalar](s UnitShare16, x T) T {
	return T(s.MulScalar(uint64(x)))
}

// MulScalarRoundedT is the generic form of MulScalarRounded for non-u64 scalar types.
func MulScalarRoundedT[T Scalar](s UnitShare16, x T) T {
	return T(s.MulScalarRounded(uint64(x)))
}

func (s UnitShare16) CheckedAdd(other UnitShare16) (UnitShare16, bool) {
	sum := uint64(s) + uint64(other)
	if sum > unitShare16Max {
		return 0, false
	}
	return UnitShare16(sum), true
}

func (s UnitShare16) CheckedSub(other UnitShare16) (UnitShare16, bool) {
	if other > s {
		return 0, false
	}
	return s - other, true
}

func (s UnitShare16) SaturatingAdd(other UnitShare16) UnitShare16 {
	sum := uint64(s) + uint64(other)
	if sum > unitShare16Max {
		return MaxUnitShare16
	}
	return UnitShare16(sum)
}

func (s UnitShare16) SaturatingSub(other UnitShare16) UnitShare16 {
	if other > s {
		return 0
	}
	return s - other
}

func (s UnitShare16) String() string {
	return formatFraction(uint64(s), unitShare16Max)
}

// MulScalar returns floor(self * x / MAX) for a UnitShare32.
func (s UnitShare32) MulScalar(x uint64) uint64 {
	return mulDiv(uint64(s), x, unitShare32Max, false)
}

// MulScalarRounded returns round-half-up(self * x / MAX) for a UnitShare32.
func (s UnitShare32) MulScalarRounded(x uint64) uint64 {
	return mulDiv(uint64(s), x, unitShare32Max, true)
}

func (s UnitShare32) CheckedAdd(other UnitShare32) (UnitShare32, bool) {
	sum := uint64(s) + uint64(other)
	if sum > unitShare32Max {
		return 0, false
	}
	return UnitShare32(sum), true
}

func (s UnitShare32) CheckedSub(other UnitShare32) (UnitShare32, bool) {
	if other > s {
		return 0, false
	}
	return s - other, true
}

func (s UnitShare32) SaturatingAdd(other UnitShare32) UnitShare32 {
	sum := uint64(s) + uint64(other)
	if sum > unitShare32Max {
		return MaxUnitShare32
	}
	return UnitShare32(sum)
}

func (s UnitShare32) SaturatingSub(other UnitShare32) UnitShare32 {
	if other > s {
		return 0
	}
	return s - other
}

// Max reports whichever of self and other is larger, matching Rust's Ord derive for these
// newtypes. Used for the effective burn rate: max(economic_burn_rate, community_burn_rate).
func (s UnitShare32) Max(other UnitShare32) UnitShare32 {
	if other > s {
		return other
	}
	return s
}

func (s UnitShare32) String() string {
	return formatFraction(uint64(s), unitShare32Max)
}

func formatFraction(v, max uint64) string {
	return fmt.Sprintf("%d/%d", v, max)
}
