/*
=================================================================================
CONTROL SURFACE
=================================================================================

The exported methods a caller (CLI, dashboard, test) actually drives the
simulation through — every one of them takes w.mu (directly or through
Step), the mutating ones refuse a halted world, reads are still served after
a halt, and results are defensive copies rather than internal pointers, per spec.md §6
"External interface" and §5's single-writer rule.
=================================================================================
*/
package world

import (
	"fmt"

	"github.com/hidra-sim/hidra/types"
)

// Step advances the simulation by exactly one tick.
func (w *World) Step() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stepLocked()
}

// ApplyInputsAndStep sets the named input node values, then advances one
// tick, as a single atomic operation under the lock.
func (w *World) ApplyInputsAndStep(values map[types.InputID]float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, v := range values {
		if in, ok := w.inputs[id]; ok {
			in.Value = v
		}
	}
	return w.stepLocked()
}

// RunFor advances the simulation by n ticks, stopping early and returning
// the halting error if the world halts partway through.
func (w *World) RunFor(n int) error {
	for i := 0; i < n; i++ {
		if err := w.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntil steps the simulation until predicate reports true or the world
// halts, whichever comes first. predicate is called with the lock released.
func (w *World) RunUntil(predicate func(*World) bool) error {
	for {
		if predicate(w) {
			return nil
		}
		if err := w.Step(); err != nil {
			return err
		}
	}
}

// Tick reports the next tick to be executed.
func (w *World) Tick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Halted reports whether the world has stopped accepting further steps,
// and the error that caused it if so.
func (w *World) Halted() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.halted, w.haltCause
}

// SetInputValues overwrites the externally-driven value of one or more
// input nodes ahead of the next Step.
func (w *World) SetInputValues(values map[types.InputID]float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return ErrWorldHalted
	}
	for id, v := range values {
		in, ok := w.inputs[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownInput, id)
		}
		in.Value = v
	}
	return nil
}

// OutputValues returns a defensive copy of every output node's current
// value.
func (w *World) OutputValues() map[types.OutputID]float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[types.OutputID]float64, len(w.outputs))
	for id, o := range w.outputs {
		out[id] = o.Value
	}
	return out
}

// SetGlobalHormones overwrites one or more slots of the global hormone
// vector.
func (w *World) SetGlobalHormones(values map[int]float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return ErrWorldHalted
	}
	for idx, v := range values {
		if idx < 0 || idx >= LocalVarCount {
			return fmt.Errorf("world: hormone index %d out of range", idx)
		}
		w.hormones[idx] = v
	}
	return nil
}

// SetLocalVariables overwrites user-writable local variables on one neuron.
// A write targeting a system-owned index (>= UserWritableLVarBound) is
// refused for that index only; the rest of the batch still applies.
func (w *World) SetLocalVariables(id types.NeuronID, values map[int]float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return ErrWorldHalted
	}
	n, ok := w.neurons[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNeuron, id)
	}
	for idx, v := range values {
		if idx < 0 || idx >= UserWritableLVarBound {
			continue
		}
		n.LVars[idx] = v
	}
	return nil
}

// AddNeuron creates a new neuron at pos and schedules its Gestation gene,
// returning its freshly-minted id.
func (w *World) AddNeuron(pos types.Position3D) (types.NeuronID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return 0, ErrWorldHalted
	}
	return w.addNeuronAndScheduleLocked(pos), nil
}

// AddSynapse creates a new synapse between source and target, validating
// both endpoints exist.
func (w *World) AddSynapse(source, target Endpoint, st types.SignalType, weight, parameter float64) (types.SynapseID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return 0, ErrWorldHalted
	}
	return w.addSynapseLocked(source, target, st, weight, parameter)
}

// AddInputNode registers a new externally-driven input node.
func (w *World) AddInputNode(id types.InputID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return ErrWorldHalted
	}
	if _, exists := w.inputs[id]; exists {
		return fmt.Errorf("world: input id %d already registered", id)
	}
	w.inputs[id] = &InputNode{ID: id}
	w.caches.invalidate()
	return nil
}

// AddOutputNode registers a new output node.
func (w *World) AddOutputNode(id types.OutputID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return ErrWorldHalted
	}
	if _, exists := w.outputs[id]; exists {
		return fmt.Errorf("world: output id %d already registered", id)
	}
	w.outputs[id] = &OutputNode{ID: id}
	return nil
}

// MarkNeuronForDeactivation flags a neuron for retirement at the next
// Phase 5.
func (w *World) MarkNeuronForDeactivation(id types.NeuronID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return ErrWorldHalted
	}
	return w.markForDeactivationLocked(id)
}

// PerformMitosis splits parentID into itself plus a new child neuron
// offset by offset, returning the child's id.
func (w *World) PerformMitosis(parentID types.NeuronID, offset types.Position3D) (types.NeuronID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted {
		return 0, ErrWorldHalted
	}
	return w.performMitosisLocked(parentID, offset)
}

// NeuronSnapshot is a read-only view of one neuron's state, returned by
// Neuron() for inspection without exposing the live pointer.
type NeuronSnapshot struct {
	ID               types.NeuronID
	Active           bool
	Position         types.Position3D
	LVars            []float64
	BrainOutputValue float64
}

// Neuron returns a defensive snapshot of one neuron's state.
func (w *World) Neuron(id types.NeuronID) (NeuronSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.neurons[id]
	if !ok {
		return NeuronSnapshot{}, false
	}
	return NeuronSnapshot{
		ID:               n.ID,
		Active:           n.Active,
		Position:         n.Position,
		LVars:            append([]float64(nil), n.LVars...),
		BrainOutputValue: n.BrainOutputValue,
	}, true
}

// NeuronCount reports the number of active neurons.
func (w *World) NeuronCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, neuron := range w.neurons {
		if neuron.Active {
			n++
		}
	}
	return n
}
