/*
=================================================================================
STEP PIPELINE
=================================================================================

Step runs the eight deterministic phases in sequence under the world's
exclusive lock (spec.md §4.9). A supervisory recover() wraps the whole
sequence: any panic halts the world permanently rather than leaving it in a
partially-mutated state, matching spec.md §7 "Fatal exception inside a
phase". VM errors are a different, non-fatal path — gene.Run already
contains those to the single gene (see world/bridge.go, gene/vm.go).
=================================================================================
*/
package world

import (
	"fmt"
	"sort"

	"github.com/hidra-sim/hidra/event"
	"github.com/hidra-sim/hidra/gene"
	"github.com/hidra-sim/hidra/prng"
	"github.com/hidra-sim/hidra/types"
)

func (w *World) stepLocked() (err error) {
	if w.halted {
		return ErrWorldHalted
	}
	defer func() {
		if r := recover(); r != nil {
			w.halted = true
			err = fmt.Errorf("world: halted at tick %d: %v", w.tick, r)
			w.haltCause = err
			w.logf("pipeline", types.LogFatal, "%v", err)
		}
	}()

	w.phase0Initialize()
	w.phase1PassiveUpdates()
	w.phase2ProcessInputs()
	w.phase3EvaluateNeurons()
	w.phase4ProcessIntraTickEvents()
	w.phase5Deactivations()
	w.phase6CommitNewEvents()
	w.phase7ArchiveAndAdvance()
	return nil
}

// Phase 0 — Initialize.
func (w *World) phase0Initialize() {
	if w.caches.dirty {
		w.rebuildSpatialIndexLocked()
	}
	w.rebuildCachesLocked()

	w.currentPulses = nil
	w.currentOthers = nil
	w.nextTick = nil

	pulses, others := w.queue.DrainDue(w.tick)
	w.currentPulses = pulses
	w.currentOthers = others
}

// Phase 1 — Passive updates.
func (w *World) phase1PassiveUpdates() {
	for _, n := range w.neurons {
		if !n.Active {
			continue
		}
		decay := n.LVars[LVarDecayRate]
		n.LVars[LVarSomaPotential] *= 1 - decay
		n.LVars[LVarFiringRateEMA] *= w.cfg.FiringRateMAWeight
		n.LVars[LVarAge]++
		n.LVars[LVarHealth] -= w.cfg.MetabolicTaxPerTick
		if n.LVars[LVarHealth] <= 0 {
			n.MarkedForDeactivation = true
		}
		if n.LVars[LVarRefractoryTimeLeft] > 0 {
			n.LVars[LVarRefractoryTimeLeft]--
			if n.LVars[LVarRefractoryTimeLeft] < 0 {
				n.LVars[LVarRefractoryTimeLeft] = 0
			}
		}
		if n.LVars[LVarAdaptiveThreshold] > 0 {
			n.LVars[LVarAdaptiveThreshold] -= n.LVars[LVarThresholdRecoveryRate]
			if n.LVars[LVarAdaptiveThreshold] < 0 {
				n.LVars[LVarAdaptiveThreshold] = 0
			}
		}
	}
	for _, s := range w.synapses {
		if !s.Active {
			continue
		}
		s.Fatigue -= s.FatigueRecoveryRate
		if s.Fatigue < 0 {
			s.Fatigue = 0
		}
	}
}

// Phase 2 — Process inputs.
func (w *World) phase2ProcessInputs() {
	ids := make([]types.InputID, 0, len(w.inputs))
	for id := range w.inputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		in := w.inputs[id]
		for _, s := range w.synapsesFromInputLocked(id) {
			if !s.Active {
				continue
			}
			passes := w.evaluateSynapseCondition(s, in.Value)
			if passes && s.SignalType != types.Persistent {
				pulse := in.Value * s.Weight
				execTick := w.tick
				if s.SignalType == types.Delayed {
					delay := int64(s.Parameter)
					if delay < 0 {
						delay = 0
					}
					execTick = w.tick + uint64(delay)
				}
				alpha := -1.0
				if s.SignalType == types.Immediate && s.Target.Kind == types.EntityOutput {
					alpha = clamp01(s.Parameter)
				}
				ev := event.Event{
					ID:            w.nextEventID(),
					ExecutionTick: execTick,
					Kind:          event.PotentialPulse,
					TargetID:      s.Target.ID,
					Payload:       event.Payload{PulseValue: pulse, TargetKind: s.Target.Kind, SmoothingAlpha: alpha},
				}
				if execTick <= w.tick {
					w.currentPulses = append(w.currentPulses, ev)
				} else {
					w.nextTick = append(w.nextTick, ev)
				}
			}
			s.PreviousSourceValue = in.Value
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Phase 3 — Evaluate neurons.
func (w *World) phase3EvaluateNeurons() {
	pulsesByNeuron := make(map[types.NeuronID][]float64)
	for _, ev := range w.currentPulses {
		switch ev.Payload.TargetKind {
		case types.EntityOutput:
			w.applyOutputPulse(types.OutputID(ev.TargetID), ev.Payload)
		default:
			id := types.NeuronID(ev.TargetID)
			pulsesByNeuron[id] = append(pulsesByNeuron[id], ev.Payload.PulseValue)
		}
	}

	for _, id := range w.topologicalOrderLocked() {
		n := w.neurons[id]
		if !n.Active {
			continue
		}

		var persistentValues []float64
		for _, s := range w.incomingSynapsesLocked(uint64(id)) {
			if s.SignalType != types.Persistent {
				continue
			}
			persistentValues = append(persistentValues, w.entityCurrentValueLocked(s.Source)*s.Weight)
		}
		var dendritic prng.Accumulator
		dendritic.AddAll(persistentValues)
		n.LVars[LVarDendriticPotential] = dendritic.Sum()

		if pulses, ok := pulsesByNeuron[id]; ok {
			var soma prng.Accumulator
			soma.AddAll(pulses)
			n.LVars[LVarSomaPotential] += soma.Sum()
		}

		threshold := n.LVars[LVarFiringThreshold] + n.LVars[LVarAdaptiveThreshold]
		total := n.LVars[LVarDendriticPotential] + n.LVars[LVarSomaPotential]
		if n.LVars[LVarRefractoryTimeLeft] == 0 && total >= threshold {
			w.currentOthers = append(w.currentOthers, event.Event{
				ID:            w.nextEventID(),
				ExecutionTick: w.tick,
				Kind:          event.Activate,
				TargetID:      uint64(id),
				Payload:       event.Payload{ActivationPotential: total},
			})
		}
	}
}

func (w *World) applyOutputPulse(id types.OutputID, p event.Payload) {
	out, ok := w.outputs[id]
	if !ok {
		return
	}
	if p.SmoothingAlpha >= 0 {
		out.Value = (1-p.SmoothingAlpha)*out.Value + p.SmoothingAlpha*p.PulseValue
	} else {
		out.Value += p.PulseValue
	}
}

// Phase 4 — Process intra-tick events.
func (w *World) phase4ProcessIntraTickEvents() {
	sort.Slice(w.currentOthers, func(i, j int) bool { return w.currentOthers[i].ID < w.currentOthers[j].ID })

	for _, ev := range w.currentOthers {
		switch ev.Kind {
		case event.ExecuteGene, event.ExecuteGeneFromBrain:
			w.executeGeneEvent(ev)
		case event.Activate:
			if n, ok := w.neurons[types.NeuronID(ev.TargetID)]; ok && n.Active {
				w.processNeuronActivation(n, ev.Payload.ActivationPotential)
			}
		case event.PotentialPulse:
			switch ev.Payload.TargetKind {
			case types.EntityOutput:
				w.applyOutputPulse(types.OutputID(ev.TargetID), ev.Payload)
			default:
				if n, ok := w.neurons[types.NeuronID(ev.TargetID)]; ok && n.Active {
					n.LVars[LVarSomaPotential] += ev.Payload.PulseValue
				}
			}
		}
	}
}

func (w *World) executeGeneEvent(ev event.Event) {
	geneID := ev.Payload.GeneID
	if int(geneID) >= len(w.genome) {
		w.logf("pipeline", types.LogWarn, "execute gene: unknown gene id %d", geneID)
		return
	}
	ctx := geneSecurityContext(ev.Kind, geneID, w.systemGenes)
	fuel := fuelForNeuron(w, types.NeuronID(ev.TargetID), geneID)
	bridge := &hostBridge{w: w}
	res := gene.Run(w.genome[geneID], fuel, ctx, ev.TargetID, bridge)
	for _, warn := range res.Warnings {
		w.logf("gene", types.LogWarn, "gene %d: %s", geneID, warn.String())
	}
	if res.Err != nil {
		w.logf("gene", types.LogWarn, "gene %d runtime error: %v", geneID, res.Err)
	}
	if n, ok := w.neurons[types.NeuronID(ev.TargetID)]; ok {
		n.LVars[LVarGeneExecutionFuel] = float64(fuel - res.FuelUsed)
	}
}

func geneSecurityContext(kind event.Kind, geneID uint64, systemGenes int) types.SecurityContext {
	if kind == event.ExecuteGeneFromBrain {
		return types.ContextGeneral
	}
	switch geneID {
	case gene.GeneGenesis:
		return types.ContextSystem
	case gene.GeneGestation, gene.GeneMitosis, gene.GeneApoptosis:
		return types.ContextProtected
	default:
		return types.ContextGeneral
	}
}

func fuelForNeuron(w *World, id types.NeuronID, geneID uint64) int {
	n, ok := w.neurons[id]
	if !ok || n.LVars[LVarGeneExecutionFuel] <= 0 {
		return gene.DefaultFuel(geneID)
	}
	return int(n.LVars[LVarGeneExecutionFuel])
}

// Phase 5 — Deactivations.
func (w *World) phase5Deactivations() {
	w.retireDeadNeuronsLocked()
}

// Phase 6 — Commit new events.
func (w *World) phase6CommitNewEvents() {
	for _, ev := range w.nextTick {
		w.queue.Push(ev)
	}
}

// Phase 7 — Archive and advance.
func (w *World) phase7ArchiveAndAdvance() {
	if w.metrics.shouldSample(w.tick) {
		w.metrics.push(w.sampleTickLocked())
	}

	w.historyMu.Lock()
	w.history = append(w.history, tickHistory{Tick: w.tick, Pulses: w.currentPulses, Others: w.currentOthers})
	w.historyMu.Unlock()

	w.tick++
}
