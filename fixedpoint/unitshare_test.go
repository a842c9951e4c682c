package fixedpoint

import "testing"

func TestUnitShare16MulScalar(t *testing.T) {
	half, _ := NewUnitShare16(5_000)
	quarter, _ := NewUnitShare16(2_500)

	cases := []struct {
		name string
		s    UnitShare16
		x    uint64
		want uint64
	}{
		{"half of 100", half, 100, 50},
		{"quarter of 100", quarter, 100, 25},
		{"max of 100", MaxUnitShare16, 100, 100},
		{"min of 100", 0, 100, 0},
		{"one bp of 10000", 1, 10_000, 1},
		{"max of u64 max", MaxUnitShare16, ^uint64(0), ^uint64(0)},
		{"min of u64 max", 0, ^uint64(0), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.s.MulScalar(c.x); got != c.want {
				t.Errorf("MulScalar(%d) = %d, want %d", c.x, got, c.want)
			}
		})
	}
}

func TestUnitShare16MulScalarRounded(t *testing.T) {
	fivePct, _ := NewUnitShare16(500)

	cases := []struct {
		name string
		s    UnitShare16
		x    uint64
		want uint64
	}{
		{"exact", fivePct, 542321371, 27116069},
		{"round up at .05", fivePct, 542321373, 27116069},
		{"boundary half", fivePct, 542321370, 27116069},
		{"round down just below", fivePct, 542321369, 27116068},
		{"one bp of 10000", 1, 10_000, 1},
		{"one bp of 5000 rounds up", 1, 5_000, 1},
		{"one bp of 4999 rounds down", 1, 4_999, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.s.MulScalarRounded(c.x); got != c.want {
				t.Errorf("MulScalarRounded(%d) = %d, want %d", c.x, got, c.want)
			}
		})
	}
}

func TestUnitShare32MulScalarRounded(t *testing.T) {
	one, _ := NewUnitShare32(1)

	if got := one.MulScalarRounded(1_000_000_000); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := one.MulScalarRounded(500_000_000); got != 1 {
		t.Errorf("got %d, want 1 (rounds up at exactly half)", got)
	}
	if got := one.MulScalarRounded(499_999_999); got != 0 {
		t.Errorf("got %d, want 0 (rounds down below half)", got)
	}
}

func TestMulScalarRoundedNeverBelowMulScalarAndBoundedByOne(t *testing.T) {
	fivePct, _ := NewUnitShare32(50_000_000) // 5%
	inputs := []uint64{0, 1, 7, 1000, 542_321_371, 1 << 40, ^uint64(0)}
	for _, x := range inputs {
		trunc := fivePct.MulScalar(x)
		rounded := fivePct.MulScalarRounded(x)
		if rounded < trunc {
			t.Fatalf("MulScalarRounded(%d)=%d < MulScalar(%d)=%d", x, rounded, x, trunc)
		}
		if diff := rounded - trunc; diff > 1 {
			t.Fatalf("MulScalarRounded-MulScalar = %d for x=%d, want <=1", diff, x)
		}
	}
}

func TestCheckedAddSub(t *testing.T) {
	a, _ := NewUnitShare16(3_000)
	b, _ := NewUnitShare16(2_000)
	c, _ := NewUnitShare16(8_000)

	if sum, ok := a.CheckedAdd(b); !ok || sum != 5_000 {
		t.Fatalf("3000+2000 = %v, %v", sum, ok)
	}
	if _, ok := a.CheckedAdd(c); ok {
		t.Fatal("3000+8000 should overflow MAX")
	}
	if _, ok := MaxUnitShare16.CheckedAdd(UnitShare16(1)); ok {
		t.Fatal("MAX+1 should overflow")
	}
	if diff, ok := a.CheckedSub(b); !ok || diff != 1_000 {
		t.Fatalf("3000-2000 = %v, %v", diff, ok)
	}
	if _, ok := b.CheckedSub(a); ok {
		t.Fatal("2000-3000 should underflow")
	}
}

func TestSaturatingAddSub(t *testing.T) {
	if got := MaxUnitShare16.SaturatingAdd(UnitShare16(1_000)); got != MaxUnitShare16 {
		t.Fatalf("got %v, want MAX", got)
	}
	if got := UnitShare16(0).SaturatingSub(UnitShare16(1)); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestBurnRateEffectiveIsMax(t *testing.T) {
	economic, _ := NewUnitShare32(20_000_000) // 2%
	community, _ := NewUnitShare32(100_000_000) // 10%
	if got := economic.Max(community); got != community {
		t.Fatalf("effective burn rate should be the community floor, got %v", got)
	}
}

func TestNewUnitShareRejectsOutOfRange(t *testing.T) {
	if _, ok := NewUnitShare16(10_001); ok {
		t.Fatal("10001 bps should be rejected")
	}
	if _, ok := NewUnitShare32(1_000_000_001); ok {
		t.Fatal("1_000_000_001 should be rejected")
	}
}

func TestDoubleZeroEpochSeedRoundTrip(t *testing.T) {
	e := DoubleZeroEpoch(0x0102030405060708)
	seed := e.AsSeed()
	want := [8]byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	if seed != want {
		t.Fatalf("AsSeed() = %x, want %x", seed, want)
	}
}

func TestDoubleZeroEpochSaturatingAdd(t *testing.T) {
	e := DoubleZeroEpoch(^uint64(0) - 1)
	if got := e.SaturatingAddDuration(EpochDuration(10)); got != DoubleZeroEpoch(^uint64(0)) {
		t.Fatalf("got %v, want max", got)
	}
}
