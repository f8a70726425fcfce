/*
=================================================================================
SPATIAL INDEX - UNIFORM-CELL 3D HASH
=================================================================================

Generalizes the teacher's AstrocyteNetwork territory/FindNearby shape
(extracellular/astrocyte_network.go: EstablishTerritory + a linear distance
scan over registered components) into a proper uniform-cell spatial hash:
cell edge is 2x the competition radius, FindNeighbors visits only the AABB
of cells overlapping the query radius, filters by precise squared distance,
and dedupes by id (spec.md §4.2).

Per spec.md §9 ("Spatial index arena"), cell buckets are backed by a
pre-sized pool of linked-list nodes rather than per-insert slice growth, so
that Clear is O(cells) and a typical tick's full rebuild does not churn the
allocator. The index is not thread-safe; the World serializes access to it
under its exclusive lock, exactly as it does for every other authoritative
structure (spec.md §5).
=================================================================================
*/
package spatial

import (
	"math"

	"github.com/hidra-sim/hidra/types"
)

// Entry is one indexed point: an id paired with its position.
type Entry struct {
	ID       uint64
	Position types.Position3D
}

type node struct {
	entry Entry
	next  int32 // index into arena, or -1
}

type cellKey struct {
	x, y, z int64
}

// Index is a uniform-cell 3D hash over neuron positions, used to answer
// radius queries in O(cells overlapped) rather than O(n).
type Index struct {
	cellSize float64
	cells    map[cellKey]int32 // cellKey -> head index into arena, or -1 if absent from map
	arena    []node
	free     int32 // head of the free list, or -1
}

// NewIndex constructs a spatial index whose cell edge is 2*radius, per
// spec.md §4.2. capacityHint pre-sizes the node arena to avoid growth during
// the first few ticks of a typical run; it is advisory only.
func NewIndex(radius float64, capacityHint int) *Index {
	if radius <= 0 {
		radius = 1
	}
	idx := &Index{
		cellSize: 2 * radius,
		cells:    make(map[cellKey]int32),
		free:     -1,
	}
	if capacityHint > 0 {
		idx.arena = make([]node, 0, capacityHint)
	}
	return idx
}

func (idx *Index) keyFor(p types.Position3D) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X / idx.cellSize)),
		y: int64(math.Floor(p.Y / idx.cellSize)),
		z: int64(math.Floor(p.Z / idx.cellSize)),
	}
}

// Clear empties the index in O(cells), truncating the arena to zero length
// and emptying the free list, without shrinking the underlying allocation.
func (idx *Index) Clear() {
	for k := range idx.cells {
		delete(idx.cells, k)
	}
	idx.arena = idx.arena[:0]
	idx.free = -1
}

// Insert adds id at position pos to the index.
func (idx *Index) Insert(id uint64, pos types.Position3D) {
	k := idx.keyFor(pos)
	n := idx.alloc(Entry{ID: id, Position: pos})
	idx.arena[n].next = idx.headOr(k)
	idx.cells[k] = n
}

func (idx *Index) headOr(k cellKey) int32 {
	if h, ok := idx.cells[k]; ok {
		return h
	}
	return -1
}

func (idx *Index) alloc(e Entry) int32 {
	if idx.free >= 0 {
		n := idx.free
		idx.free = idx.arena[n].next
		idx.arena[n] = node{entry: e, next: -1}
		return n
	}
	idx.arena = append(idx.arena, node{entry: e, next: -1})
	return int32(len(idx.arena) - 1)
}

// FindNeighbors returns every indexed entry within radius of center,
// deduplicated by id, in no particular order. The caller (world phase code)
// is responsible for any ordering it needs downstream — the index itself
// makes no ordering guarantee beyond "each matching id appears exactly
// once".
func (idx *Index) FindNeighbors(center types.Position3D, radius float64) []Entry {
	if radius <= 0 {
		return nil
	}
	r2 := radius * radius
	minK := idx.keyFor(types.Position3D{X: center.X - radius, Y: center.Y - radius, Z: center.Z - radius})
	maxK := idx.keyFor(types.Position3D{X: center.X + radius, Y: center.Y + radius, Z: center.Z + radius})

	seen := make(map[uint64]struct{})
	var out []Entry
	for x := minK.x; x <= maxK.x; x++ {
		for y := minK.y; y <= maxK.y; y++ {
			for z := minK.z; z <= maxK.z; z++ {
				head, ok := idx.cells[cellKey{x, y, z}]
				if !ok {
					continue
				}
				for n := head; n >= 0; n = idx.arena[n].next {
					e := idx.arena[n].entry
					if _, dup := seen[e.ID]; dup {
						continue
					}
					if center.DistanceSquared(e.Position) <= r2 {
						seen[e.ID] = struct{}{}
						out = append(out, e)
					}
				}
			}
		}
	}
	return out
}
