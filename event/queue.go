/*
=================================================================================
EVENT QUEUE - MIN-HEAP KEYED BY (EXECUTION TICK, EVENT ID)
=================================================================================

Generalizes the teacher's per-neuron SignalQueue (neuron/signal_scheduler.go,
a container/heap.Interface ordered by delivery time then priority) from a
per-neuron outgoing-signal queue keyed by wall-clock time into the world's
single event queue keyed by the spec's composite (execution tick, event id)
order. The heap.Interface plumbing (Len/Less/Swap/Push/Pop) is the same
shape; the ordering key and the caller contract (push once per tick,
DrainDue once per tick under the world's exclusive lock) are new.
=================================================================================
*/
package event

import "container/heap"

// heapSlice is the container/heap.Interface implementation backing Queue.
type heapSlice []Event

func (h heapSlice) Len() int            { return len(h) }
func (h heapSlice) Less(i, j int) bool  { return Less(h[i], h[j]) }
func (h heapSlice) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *heapSlice) Push(x interface{}) { *h = append(*h, x.(Event)) }
func (h *heapSlice) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Queue is a min-priority queue of Events, ordered by (ExecutionTick, ID).
// Not safe for concurrent use; the world's exclusive lock provides
// synchronization (spec.md §5).
type Queue struct {
	h heapSlice
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push inserts ev into the queue.
func (q *Queue) Push(ev Event) {
	heap.Push(&q.h, ev)
}

// Len reports the number of events currently queued.
func (q *Queue) Len() int {
	return q.h.Len()
}

// DrainDue removes every event with ExecutionTick <= currentTick and
// partitions them into pulses (Kind == PotentialPulse) and others (every
// other Kind), each in heap-pop order — which, since Pop always removes the
// minimum under (ExecutionTick, ID), is ascending ID order within a shared
// tick but interleaves across distinct ticks only in tick-ascending order.
// Phase 4 additionally sorts `others` by ID before dispatch, per spec.md §4.9,
// since pulses and others are drained in a single pass and a pulse's removal
// must not perturb the relative order of the others that follow it.
func (q *Queue) DrainDue(currentTick uint64) (pulses, others []Event) {
	for q.h.Len() > 0 && q.h[0].ExecutionTick <= currentTick {
		ev := heap.Pop(&q.h).(Event)
		if ev.Kind == PotentialPulse {
			pulses = append(pulses, ev)
		} else {
			others = append(others, ev)
		}
	}
	return pulses, others
}

// PeekForTick performs an unordered diagnostic scan of all events currently
// queued for exactly the given tick. It does not mutate the queue and is not
// used by the step pipeline; it exists for introspection and tests.
func (q *Queue) PeekForTick(tick uint64) []Event {
	var out []Event
	for _, ev := range q.h {
		if ev.ExecutionTick == tick {
			out = append(out, ev)
		}
	}
	return out
}

// Snapshot returns a defensive copy of every queued event, in no particular
// order, for serialization.
func (q *Queue) Snapshot() []Event {
	out := make([]Event, len(q.h))
	copy(out, q.h)
	return out
}

// Restore replaces the queue's contents with evs and re-establishes the heap
// invariant. Used by World.Restore after decoding a snapshot.
func (q *Queue) Restore(evs []Event) {
	q.h = make(heapSlice, len(evs))
	copy(q.h, evs)
	heap.Init(&q.h)
}
