package spatial

import (
	"testing"

	"github.com/hidra-sim/hidra/types"
)

func TestFindNeighborsWithinRadius(t *testing.T) {
	idx := NewIndex(5, 0)
	idx.Insert(1, types.Position3D{X: 0, Y: 0, Z: 0})
	idx.Insert(2, types.Position3D{X: 1, Y: 0, Z: 0})
	idx.Insert(3, types.Position3D{X: 100, Y: 0, Z: 0})

	found := idx.FindNeighbors(types.Position3D{X: 0, Y: 0, Z: 0}, 2)
	if len(found) != 2 {
		t.Fatalf("expected 2 neighbors within radius 2, got %d: %+v", len(found), found)
	}
	ids := map[uint64]bool{}
	for _, e := range found {
		ids[e.ID] = true
	}
	if !ids[1] || !ids[2] {
		t.Fatalf("expected ids 1 and 2, got %+v", ids)
	}
}

func TestFindNeighborsDedupe(t *testing.T) {
	idx := NewIndex(5, 0)
	idx.Insert(1, types.Position3D{X: 0, Y: 0, Z: 0})
	idx.Insert(1, types.Position3D{X: 0, Y: 0, Z: 0})
	found := idx.FindNeighbors(types.Position3D{X: 0, Y: 0, Z: 0}, 1)
	if len(found) != 1 {
		t.Fatalf("expected deduped single result, got %d", len(found))
	}
}

func TestClearRemovesAllEntries(t *testing.T) {
	idx := NewIndex(5, 0)
	idx.Insert(1, types.Position3D{X: 0, Y: 0, Z: 0})
	idx.Clear()
	found := idx.FindNeighbors(types.Position3D{X: 0, Y: 0, Z: 0}, 10)
	if len(found) != 0 {
		t.Fatalf("expected no entries after Clear, got %d", len(found))
	}
}

func TestFindNeighborsAcrossCellBoundaries(t *testing.T) {
	idx := NewIndex(1, 0) // cell size 2
	idx.Insert(1, types.Position3D{X: 1.9, Y: 0, Z: 0})
	idx.Insert(2, types.Position3D{X: -1.9, Y: 0, Z: 0})
	found := idx.FindNeighbors(types.Position3D{X: 0, Y: 0, Z: 0}, 2)
	if len(found) != 2 {
		t.Fatalf("expected neighbors spanning multiple cells, got %d", len(found))
	}
}

func TestFindNeighborsZeroRadius(t *testing.T) {
	idx := NewIndex(1, 0)
	idx.Insert(1, types.Position3D{X: 0, Y: 0, Z: 0})
	found := idx.FindNeighbors(types.Position3D{X: 0, Y: 0, Z: 0}, 0)
	if len(found) != 0 {
		t.Fatalf("expected no neighbors for zero radius, got %d", len(found))
	}
}
