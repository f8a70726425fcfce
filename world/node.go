package world

import "github.com/hidra-sim/hidra/types"

// InputNode is externally driven: its Value is written by set_input_values
// and read during Phase 2 (spec.md §3).
type InputNode struct {
	ID    types.InputID
	Value float64
}

// OutputNode is engine-written: its Value is set during Phase 3/4 and read
// externally (spec.md §3).
type OutputNode struct {
	ID    types.OutputID
	Value float64
}
