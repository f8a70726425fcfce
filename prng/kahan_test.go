package prng

import "testing"

func TestAccumulatorOrderInsensitive(t *testing.T) {
	vs1 := []float64{1e10, 1.0, -1e10, 1.0}
	vs2 := []float64{1.0, 1.0, 1e10, -1e10}

	var a1, a2 Accumulator
	for _, v := range vs1 {
		a1.Add(v)
	}
	for _, v := range vs2 {
		a2.Add(v)
	}

	if a1.Sum() != a2.Sum() {
		t.Fatalf("Kahan sum should be order-insensitive: %v != %v", a1.Sum(), a2.Sum())
	}
	if a1.Sum() != 2.0 {
		t.Fatalf("expected sum 2.0, got %v", a1.Sum())
	}
}

func TestAccumulatorAddAllMatchesAdd(t *testing.T) {
	vs := make([]float64, 37)
	for i := range vs {
		vs[i] = float64(i) * 0.1
	}

	var viaAdd Accumulator
	for _, v := range vs {
		viaAdd.Add(v)
	}

	var viaAddAll Accumulator
	viaAddAll.AddAll(vs)

	if viaAdd.Sum() != viaAddAll.Sum() {
		t.Fatalf("AddAll diverged from Add: %v != %v", viaAddAll.Sum(), viaAdd.Sum())
	}
}

func TestAccumulatorReset(t *testing.T) {
	var a Accumulator
	a.Add(5)
	a.Reset()
	if a.Sum() != 0 {
		t.Fatalf("expected 0 after reset, got %v", a.Sum())
	}
}
