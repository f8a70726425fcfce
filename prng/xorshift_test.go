package prng

import "testing"

func TestDeterministicSequence(t *testing.T) {
	a := New(42, 43)
	b := New(42, 43)
	for i := 0; i < 1000; i++ {
		va := a.NextUint64()
		vb := b.NextUint64()
		if va != vb {
			t.Fatalf("sequence diverged at step %d: %d != %d", i, va, vb)
		}
	}
}

func TestFloatUnitRange(t *testing.T) {
	s := New(1, 2)
	for i := 0; i < 10000; i++ {
		v := s.NextFloatUnit()
		if v < 0 || v >= 1 {
			t.Fatalf("value out of [0,1): %f", v)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	a := New(7, 11)
	for i := 0; i < 50; i++ {
		a.NextUint64()
	}
	s0, s1 := a.State()

	buf := a.MarshalState()
	restored := New(0, 0)
	if !restored.UnmarshalState(buf) {
		t.Fatalf("UnmarshalState failed")
	}
	rs0, rs1 := restored.State()
	if rs0 != s0 || rs1 != s1 {
		t.Fatalf("state mismatch after round trip: got (%d,%d), want (%d,%d)", rs0, rs1, s0, s1)
	}

	for i := 0; i < 100; i++ {
		if a.NextUint64() != restored.NextUint64() {
			t.Fatalf("sequences diverged after restore at step %d", i)
		}
	}
}

func TestZeroSeedRemapped(t *testing.T) {
	s := New(0, 0)
	s0, s1 := s.State()
	if s0 == 0 && s1 == 0 {
		t.Fatalf("zero seed was not remapped")
	}
}

func TestClone(t *testing.T) {
	a := New(5, 9)
	a.NextUint64()
	clone := a.Clone()
	va := a.NextUint64()
	vc := clone.NextUint64()
	if va != vc {
		t.Fatalf("clone diverged immediately: %d != %d", va, vc)
	}
	// Mutating the clone must not affect the original.
	clone.NextUint64()
	va2 := a.NextUint64()
	vc2 := clone.NextUint64()
	if va2 == vc2 {
		t.Fatalf("clone and original unexpectedly share state after independent advances")
	}
}
