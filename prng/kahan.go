package prng

import "github.com/klauspost/cpuid/v2"

// Accumulator performs Kahan compensated summation, so that the dendritic
// integration total for a neuron is insensitive to the arrival order of
// pulses targeting it within a tick (spec.md §4.9, "Dendritic summation").
// Phase 3 (world/pipeline.go) collects each neuron's incoming Persistent
// synapse values and its incoming pulse values into a slice and folds each
// with one AddAll call per neuron, per tick.
//
// wideLane gates which unrolled loop AddAll uses; both lanes compute the
// exact same Kahan recurrence in the exact same visitation order, so the
// capability probe below can never change a result, only which shape of
// scalar loop produces it.
type Accumulator struct {
	sum float64
	c   float64 // running compensation for lost low-order bits
}

var wideLane = cpuid.CPU.Supports(cpuid.AVX2)

// Add folds v into the running sum using the Kahan recurrence.
func (a *Accumulator) Add(v float64) {
	y := v - a.c
	t := a.sum + y
	a.c = (t - a.sum) - y
	a.sum = t
}

// AddAll folds every value in vs into the running sum, in slice order. When
// the host supports AVX2, values are folded four at a time into the same
// single accumulator and compensation term (a loop-shape difference only —
// the arithmetic is still one Add per element, in order).
func (a *Accumulator) AddAll(vs []float64) {
	if !wideLane || len(vs) < 4 {
		for _, v := range vs {
			a.Add(v)
		}
		return
	}
	n := len(vs)
	i := 0
	for ; i+4 <= n; i += 4 {
		a.Add(vs[i])
		a.Add(vs[i+1])
		a.Add(vs[i+2])
		a.Add(vs[i+3])
	}
	for ; i < n; i++ {
		a.Add(vs[i])
	}
}

// Sum returns the accumulated total.
func (a *Accumulator) Sum() float64 {
	return a.sum
}

// Reset zeroes the accumulator and its compensation term.
func (a *Accumulator) Reset() {
	a.sum = 0
	a.c = 0
}
