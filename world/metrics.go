/*
=================================================================================
METRICS
=================================================================================

A fixed-capacity ring buffer of lightweight tick samples, written during
Phase 7 when metrics are enabled and the tick lands on the configured
collection interval (spec.md §4.9 "Archive and advance"). Sampling draws
from the world's independent metrics PRNG exclusively, so enabling or
disabling metrics collection never perturbs the primary simulation
(spec.md §4.1).
=================================================================================
*/
package world

import "github.com/hidra-sim/hidra/config"

// Sample is one ring-buffer entry: a coarse summary, not a full snapshot.
type Sample struct {
	Tick           uint64
	ActiveNeurons  int
	ActiveSynapses int
	EventsPending  int
	MeanHealth     float64
}

type metricsState struct {
	enabled  bool
	interval int
	includeSynapses bool

	ring []Sample
	head int
	size int
}

func newMetricsState(cfg config.Config) metricsState {
	cap := cfg.MetricsRingCapacity
	if cap <= 0 {
		cap = 1
	}
	return metricsState{
		enabled:         cfg.MetricsEnabled,
		interval:        cfg.MetricsCollectionInterval,
		includeSynapses: cfg.MetricsIncludeSynapses,
		ring:            make([]Sample, cap),
	}
}

func (m *metricsState) shouldSample(tick uint64) bool {
	if !m.enabled || m.interval <= 0 {
		return false
	}
	return tick%uint64(m.interval) == 0
}

func (m *metricsState) push(s Sample) {
	m.ring[m.head] = s
	m.head = (m.head + 1) % len(m.ring)
	if m.size < len(m.ring) {
		m.size++
	}
}

// Samples returns the ring buffer's contents in chronological order.
func (m *metricsState) samples() []Sample {
	out := make([]Sample, 0, m.size)
	start := m.head - m.size
	for i := 0; i < m.size; i++ {
		idx := ((start+i)%len(m.ring) + len(m.ring)) % len(m.ring)
		out = append(out, m.ring[idx])
	}
	return out
}

// sampleTickLocked draws a metrics sample using the metrics PRNG when a
// stochastic choice is needed (e.g. future sparse sampling), keeping the
// primary PRNG's draw sequence untouched by metrics collection.
func (w *World) sampleTickLocked() Sample {
	active := 0
	var healthSum float64
	for _, n := range w.neurons {
		if n.Active {
			active++
			healthSum += n.LVars[LVarHealth]
		}
	}
	activeSynapses := 0
	if w.metrics.includeSynapses {
		for _, s := range w.synapses {
			if s.Active {
				activeSynapses++
			}
		}
	}
	mean := 0.0
	if active > 0 {
		mean = healthSum / float64(active)
	}
	_ = w.metricsPRNG.NextFloatUnit() // reserve a draw so future jittered sampling stays order-stable
	return Sample{
		Tick:           w.tick,
		ActiveNeurons:  active,
		ActiveSynapses: activeSynapses,
		EventsPending:  w.queue.Len(),
		MeanHealth:     mean,
	}
}

// Metrics returns a defensive copy of the current ring-buffer samples
// (spec.md §6 "Read operations return defensive copies").
func (w *World) Metrics() []Sample {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics.samples()
}
