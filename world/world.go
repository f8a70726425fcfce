/*
=================================================================================
WORLD
=================================================================================

World is the single orchestrating struct holding every authoritative
collection the tick pipeline reads and mutates (spec.md §4.8), in the shape
of the teacher's extracellular.ExtracellularMatrix: one exclusive lock
guarding a handful of sub-registries, plus a dedicated lock for the
event-history archive so concurrent reads never block a running tick
(spec.md §5).

Construction executes the Genesis gene in System context before the world
is considered valid (spec.md §3 "Lifecycle"); a genome with no gene 0 fails
construction with ErrGenomeMissingGenesis rather than producing a half-built
world.
=================================================================================
*/
package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hidra-sim/hidra/config"
	"github.com/hidra-sim/hidra/event"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/prng"
	"github.com/hidra-sim/hidra/spatial"
	"github.com/hidra-sim/hidra/types"
)

// LogSink receives tagged log lines from engine internals (spec.md §6 "Log
// sink"). It must not block and must not panic; World treats it as
// best-effort and never propagates a panic from within it.
type LogSink func(tag string, level types.LogLevel, message string)

// World is the authoritative simulation state for one running experiment.
type World struct {
	cfg config.Config
	log LogSink

	// mu guards every field below except history, which has its own lock
	// (spec.md §5 "a separate lock protects the event history archive").
	mu sync.Mutex

	neurons map[types.NeuronID]*Neuron
	inputs  map[types.InputID]*InputNode
	outputs map[types.OutputID]*OutputNode
	// synapses is the global list, kept sorted by id (spec.md §3, §8).
	synapseIndex map[types.SynapseID]int
	synapses     []*Synapse

	hormones []float64

	genome      []gene.Gene
	genomeBytes []byte
	systemGenes int

	queue *event.Queue

	primaryPRNG *prng.Source
	metricsPRNG *prng.Source

	tick         uint64
	nextNeuron   uint64
	nextSynapse  uint64
	nextEvent    uint64
	nextInputSet uint64 // reserved for future input-node dynamic creation

	halted    bool
	haltCause error

	caches  caches
	spatial *spatial.Index

	currentPulses []event.Event
	currentOthers []event.Event
	nextTick      []event.Event

	metrics metricsState

	historyMu sync.Mutex
	history   []tickHistory

	experimentID string
}

type tickHistory struct {
	Tick   uint64
	Pulses []event.Event
	Others []event.Event
}

// New constructs a world from a configuration, genome bytes, declared I/O
// ids, and a seed, then runs Genesis (spec.md §3).
func New(cfg config.Config, genomeBytes []byte, inputIDs []types.InputID, outputIDs []types.OutputID) (*World, error) {
	genes, err := gene.ParseGenome(genomeBytes)
	if err != nil {
		return nil, fmt.Errorf("world: %w: %v", ErrGenomeMissingGenesis, err)
	}

	w := &World{
		cfg:          cfg,
		log:          func(string, types.LogLevel, string) {},
		neurons:      make(map[types.NeuronID]*Neuron),
		inputs:       make(map[types.InputID]*InputNode),
		outputs:      make(map[types.OutputID]*OutputNode),
		synapseIndex: make(map[types.SynapseID]int),
		hormones:     make([]float64, LocalVarCount),
		genome:       genes,
		genomeBytes:  genomeBytes,
		systemGenes:  cfg.SystemGeneCount,
		queue:        event.NewQueue(),
		primaryPRNG:  prng.New(cfg.Seed0, cfg.Seed1),
		metricsPRNG:  prng.New(cfg.Seed0^0x9E3779B97F4A7C15, cfg.Seed1^0xD1B54A32D192ED03),
		experimentID: cfg.ExperimentID,
	}
	w.metrics = newMetricsState(cfg)

	sort.Slice(inputIDs, func(i, j int) bool { return inputIDs[i] < inputIDs[j] })
	for _, id := range inputIDs {
		w.inputs[id] = &InputNode{ID: id}
	}
	sort.Slice(outputIDs, func(i, j int) bool { return outputIDs[i] < outputIDs[j] })
	for _, id := range outputIDs {
		w.outputs[id] = &OutputNode{ID: id}
	}

	w.spatial = spatial.NewIndex(cfg.CompetitionRadius, 64)
	w.caches.invalidate()

	if err := w.runGenesis(); err != nil {
		return nil, fmt.Errorf("world: running Genesis: %w", err)
	}
	if len(w.neurons) == 0 {
		w.addNeuronLocked(types.Position3D{})
	}

	return w, nil
}

func (w *World) logf(tag string, level types.LogLevel, format string, args ...interface{}) {
	defer func() { recover() }() // the log sink must never take the world down with it
	if w.log != nil {
		w.log(tag, level, fmt.Sprintf(format, args...))
	}
}

// SetLogSink installs the callback used for engine log lines.
func (w *World) SetLogSink(sink LogSink) {
	if sink == nil {
		sink = func(string, types.LogLevel, string) {}
	}
	w.log = sink
}
