/*
=================================================================================
SNAPSHOT ENCODING
=================================================================================

Snapshot/Restore give a World a complete, self-contained binary form (spec.md
§6 "State persistence"): magic, format version and a checksum wrap an
msgpack payload, same envelope shape as the teacher's
pkg/persistence/codec.go. A restored world recompiles its genome from the
embedded bytes rather than trusting decoded Gene structs, re-seeds both
PRNGs from their raw 128-bit state, and rebuilds the spatial index and
topology caches from scratch — none of those are carried on the wire.
=================================================================================
*/
package world

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sort"

	"github.com/hidra-sim/hidra/brain"
	"github.com/hidra-sim/hidra/condition"
	"github.com/hidra-sim/hidra/config"
	"github.com/hidra-sim/hidra/event"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/prng"
	"github.com/hidra-sim/hidra/spatial"
	"github.com/hidra-sim/hidra/types"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	snapshotMagic   = "HIDR"
	snapshotVersion = 1
)

type snapshotHeader struct {
	Magic    [4]byte
	Version  uint16
	_        uint16 // reserved, kept for word alignment
	DataLen  uint64
	Checksum uint32
}

type wireNeuron struct {
	ID                    types.NeuronID    `msgpack:"id"`
	Active                bool               `msgpack:"active"`
	Position              types.Position3D  `msgpack:"position"`
	LVars                 []float64          `msgpack:"lvars"`
	Brain                 brain.Wire         `msgpack:"brain"`
	OwnedSynapses         []types.SynapseID  `msgpack:"owned_synapses"`
	BrainOutputValue      float64            `msgpack:"brain_output_value"`
	MarkedForDeactivation bool               `msgpack:"marked_for_deactivation"`
}

type wireSynapse struct {
	ID     types.SynapseID `msgpack:"id"`
	Active bool            `msgpack:"active"`

	Source Endpoint `msgpack:"source"`
	Target Endpoint `msgpack:"target"`

	SignalType types.SignalType `msgpack:"signal_type"`
	Weight     float64          `msgpack:"weight"`
	Parameter  float64          `msgpack:"parameter"`

	PersistentValue    float64 `msgpack:"persistent_value"`
	PersistentValueSet bool    `msgpack:"persistent_value_set"`

	TransientTriggerTick uint64 `msgpack:"transient_trigger_tick"`
	TransientArmed       bool   `msgpack:"transient_armed"`

	Fatigue             float64 `msgpack:"fatigue"`
	FatigueRate         float64 `msgpack:"fatigue_rate"`
	FatigueRecoveryRate float64 `msgpack:"fatigue_recovery_rate"`

	Condition condition.Wire `msgpack:"condition"`

	PreviousSourceValue float64 `msgpack:"previous_source_value"`
	SustainedCounter    int     `msgpack:"sustained_counter"`
}

type wireSnapshot struct {
	Config       config.Config     `msgpack:"config"`
	GenomeBytes  []byte            `msgpack:"genome_bytes"`
	SystemGenes  int               `msgpack:"system_genes"`
	ExperimentID string            `msgpack:"experiment_id"`

	Tick         uint64    `msgpack:"tick"`
	Hormones     []float64 `msgpack:"hormones"`
	NextNeuron   uint64    `msgpack:"next_neuron"`
	NextSynapse  uint64    `msgpack:"next_synapse"`
	NextEvent    uint64    `msgpack:"next_event"`
	NextInputSet uint64    `msgpack:"next_input_set"`

	Halted    bool   `msgpack:"halted"`
	HaltCause string `msgpack:"halt_cause,omitempty"`

	Neurons  []wireNeuron  `msgpack:"neurons"`
	Synapses []wireSynapse `msgpack:"synapses"`

	InputIDs  []types.InputID           `msgpack:"input_ids"`
	InputVals map[types.InputID]float64 `msgpack:"input_vals"`

	OutputIDs  []types.OutputID           `msgpack:"output_ids"`
	OutputVals map[types.OutputID]float64 `msgpack:"output_vals"`

	QueuedEvents []event.Event `msgpack:"queued_events"`

	PrimaryPRNG [2]uint64 `msgpack:"primary_prng"`
	MetricsPRNG [2]uint64 `msgpack:"metrics_prng"`
}

// Snapshot encodes the world's entire state into a self-describing byte
// slice suitable for storage or transmission.
func (w *World) Snapshot() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := wireSnapshot{
		Config:       w.cfg,
		GenomeBytes:  append([]byte(nil), w.genomeBytes...),
		SystemGenes:  w.systemGenes,
		ExperimentID: w.experimentID,
		Tick:         w.tick,
		Hormones:     append([]float64(nil), w.hormones...),
		NextNeuron:   w.nextNeuron,
		NextSynapse:  w.nextSynapse,
		NextEvent:    w.nextEvent,
		NextInputSet: w.nextInputSet,
		Halted:       w.halted,
		InputVals:    make(map[types.InputID]float64, len(w.inputs)),
		OutputVals:   make(map[types.OutputID]float64, len(w.outputs)),
		QueuedEvents: w.queue.Snapshot(),
	}
	if w.haltCause != nil {
		snap.HaltCause = w.haltCause.Error()
	}
	s0, s1 := w.primaryPRNG.State()
	snap.PrimaryPRNG = [2]uint64{s0, s1}
	m0, m1 := w.metricsPRNG.State()
	snap.MetricsPRNG = [2]uint64{m0, m1}

	neuronIDs := make([]types.NeuronID, 0, len(w.neurons))
	for id := range w.neurons {
		neuronIDs = append(neuronIDs, id)
	}
	sort.Slice(neuronIDs, func(i, j int) bool { return neuronIDs[i] < neuronIDs[j] })
	for _, id := range neuronIDs {
		n := w.neurons[id]
		snap.Neurons = append(snap.Neurons, wireNeuron{
			ID:                    n.ID,
			Active:                n.Active,
			Position:              n.Position,
			LVars:                 append([]float64(nil), n.LVars...),
			Brain:                 brain.Tagged(n.Brain),
			OwnedSynapses:         append([]types.SynapseID(nil), n.OwnedSynapses...),
			BrainOutputValue:      n.BrainOutputValue,
			MarkedForDeactivation: n.MarkedForDeactivation,
		})
	}

	for _, s := range w.synapses {
		snap.Synapses = append(snap.Synapses, wireSynapse{
			ID:                   s.ID,
			Active:               s.Active,
			Source:               s.Source,
			Target:               s.Target,
			SignalType:           s.SignalType,
			Weight:               s.Weight,
			Parameter:            s.Parameter,
			PersistentValue:      s.PersistentValue,
			PersistentValueSet:   s.PersistentValueSet,
			TransientTriggerTick: s.TransientTriggerTick,
			TransientArmed:       s.transientArmed,
			Fatigue:              s.Fatigue,
			FatigueRate:          s.FatigueRate,
			FatigueRecoveryRate:  s.FatigueRecoveryRate,
			Condition:            condition.Tagged(s.Condition),
			PreviousSourceValue:  s.PreviousSourceValue,
			SustainedCounter:     s.SustainedCounter,
		})
	}

	for id := range w.inputs {
		snap.InputIDs = append(snap.InputIDs, id)
	}
	sort.Slice(snap.InputIDs, func(i, j int) bool { return snap.InputIDs[i] < snap.InputIDs[j] })
	for _, id := range snap.InputIDs {
		snap.InputVals[id] = w.inputs[id].Value
	}

	for id := range w.outputs {
		snap.OutputIDs = append(snap.OutputIDs, id)
	}
	sort.Slice(snap.OutputIDs, func(i, j int) bool { return snap.OutputIDs[i] < snap.OutputIDs[j] })
	for _, id := range snap.OutputIDs {
		snap.OutputVals[id] = w.outputs[id].Value
	}

	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, err
	}

	header := snapshotHeader{
		Version:  snapshotVersion,
		DataLen:  uint64(len(data)),
		Checksum: fnvChecksum(data),
	}
	copy(header.Magic[:], snapshotMagic)

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	buf.Write(data)
	return buf.Bytes(), nil
}

// Restore decodes a byte slice produced by Snapshot into a fresh, runnable
// World: the genome is recompiled from its embedded bytes, both PRNGs are
// re-seeded from their raw state, and the spatial index and topology caches
// are rebuilt rather than trusted from the wire.
func Restore(raw []byte) (*World, error) {
	if len(raw) < 18 {
		return nil, ErrSnapshotCorrupt
	}

	buf := bytes.NewReader(raw)
	var header snapshotHeader
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, ErrSnapshotCorrupt
	}
	if string(header.Magic[:]) != snapshotMagic {
		return nil, ErrSnapshotCorrupt
	}
	if header.Version > snapshotVersion {
		return nil, errors.New("world: snapshot format version is newer than this build supports")
	}

	data := make([]byte, header.DataLen)
	if _, err := io.ReadFull(buf, data); err != nil {
		return nil, ErrSnapshotCorrupt
	}
	if fnvChecksum(data) != header.Checksum {
		return nil, ErrSnapshotCorrupt
	}

	var snap wireSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	genes, err := gene.ParseGenome(snap.GenomeBytes)
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:          snap.Config,
		log:          func(string, types.LogLevel, string) {},
		neurons:      make(map[types.NeuronID]*Neuron),
		inputs:       make(map[types.InputID]*InputNode),
		outputs:      make(map[types.OutputID]*OutputNode),
		synapseIndex: make(map[types.SynapseID]int),
		hormones:     append([]float64(nil), snap.Hormones...),
		genome:       genes,
		genomeBytes:  append([]byte(nil), snap.GenomeBytes...),
		systemGenes:  snap.SystemGenes,
		queue:        event.NewQueue(),
		primaryPRNG:  prng.New(snap.PrimaryPRNG[0], snap.PrimaryPRNG[1]),
		metricsPRNG:  prng.New(snap.MetricsPRNG[0], snap.MetricsPRNG[1]),
		tick:         snap.Tick,
		nextNeuron:   snap.NextNeuron,
		nextSynapse:  snap.NextSynapse,
		nextEvent:    snap.NextEvent,
		nextInputSet: snap.NextInputSet,
		halted:       snap.Halted,
		experimentID: snap.ExperimentID,
	}
	if snap.HaltCause != "" {
		w.haltCause = errors.New(snap.HaltCause)
	}
	w.metrics = newMetricsState(snap.Config)
	w.queue.Restore(snap.QueuedEvents)
	w.spatial = spatial.NewIndex(snap.Config.CompetitionRadius, 64)

	for _, id := range snap.InputIDs {
		w.inputs[id] = &InputNode{ID: id, Value: snap.InputVals[id]}
	}
	for _, id := range snap.OutputIDs {
		w.outputs[id] = &OutputNode{ID: id, Value: snap.OutputVals[id]}
	}

	for _, wn := range snap.Neurons {
		b, err := brain.Untag(wn.Brain)
		if err != nil {
			return nil, err
		}
		n := &Neuron{
			ID:                    wn.ID,
			Active:                wn.Active,
			Position:              wn.Position,
			LVars:                 append([]float64(nil), wn.LVars...),
			Brain:                 b,
			OwnedSynapses:         append([]types.SynapseID(nil), wn.OwnedSynapses...),
			BrainOutputValue:      wn.BrainOutputValue,
			MarkedForDeactivation: wn.MarkedForDeactivation,
		}
		w.neurons[n.ID] = n
		if n.Active {
			w.spatial.Insert(uint64(n.ID), n.Position)
		}
	}

	for _, ws := range snap.Synapses {
		c, err := condition.Untag(ws.Condition)
		if err != nil {
			return nil, err
		}
		s := &Synapse{
			ID:                   ws.ID,
			Active:               ws.Active,
			Source:                ws.Source,
			Target:                ws.Target,
			SignalType:            ws.SignalType,
			Weight:                ws.Weight,
			Parameter:             ws.Parameter,
			PersistentValue:       ws.PersistentValue,
			PersistentValueSet:    ws.PersistentValueSet,
			TransientTriggerTick:  ws.TransientTriggerTick,
			transientArmed:        ws.TransientArmed,
			Fatigue:               ws.Fatigue,
			FatigueRate:           ws.FatigueRate,
			FatigueRecoveryRate:   ws.FatigueRecoveryRate,
			Condition:             c,
			PreviousSourceValue:   ws.PreviousSourceValue,
		}
		s.SustainedCounter = ws.SustainedCounter
		w.synapseIndex[s.ID] = len(w.synapses)
		w.synapses = append(w.synapses, s)
	}

	w.caches.invalidate()
	w.rebuildCachesLocked()

	return w, nil
}

// fnvChecksum is a small rolling checksum in the same spirit as the
// teacher's codec.checksum — good enough to catch truncation and bit rot
// in a snapshot blob, not meant as a cryptographic guarantee.
func fnvChecksum(data []byte) uint32 {
	var sum uint32 = 2166136261
	for _, b := range data {
		sum ^= uint32(b)
		sum *= 16777619
	}
	return sum
}
