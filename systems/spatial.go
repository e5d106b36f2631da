package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Neighbor is a nearby agent with precomputed distance data.
type Neighbor struct {
	Index  int     // index into the slice the grid was built from
	Delta  r3.Vec  // other.Position - query origin
	DistSq float64 // squared distance (avoid sqrt in hot path)
}

type cellKey struct {
	X, Y, Z int32
}

// SpatialGrid provides neighbour lookups using a sparse cubic cell hash.
// Agents on a planet occupy a thin shell, so cells are allocated on demand.
type SpatialGrid struct {
	cellSize  float64
	cells     map[cellKey][]int
	positions []r3.Vec
}

// NewSpatialGrid creates a grid with the given cell edge length.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

// Clear removes all entries, keeping cell capacity.
func (g *SpatialGrid) Clear() {
	for k, c := range g.cells {
		g.cells[k] = c[:0]
	}
	g.positions = g.positions[:0]
}

// Insert adds the item with the given index at position p. Indices should be
// inserted in order 0..n-1.
func (g *SpatialGrid) Insert(index int, p r3.Vec) {
	for len(g.positions) <= index {
		g.positions = append(g.positions, r3.Vec{})
	}
	g.positions[index] = p
	k := g.key(p)
	g.cells[k] = append(g.cells[k], index)
}

// MaxQueryResults caps the number of neighbours returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds items within radius of p and appends them to dst
// (up to MaxQueryResults). exclude is skipped; pass -1 to keep everything.
// Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, p r3.Vec, radius float64, exclude int) []Neighbor {
	if radius <= 0 {
		return dst
	}
	reach := int32(math.Ceil(radius / g.cellSize))
	center := g.key(p)
	radiusSq := radius * radius

	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				cell, ok := g.cells[cellKey{center.X + dx, center.Y + dy, center.Z + dz}]
				if !ok {
					continue
				}
				for _, idx := range cell {
					if idx == exclude {
						continue
					}
					delta := r3.Sub(g.positions[idx], p)
					distSq := r3.Norm2(delta)
					if distSq > radiusSq {
						continue
					}
					dst = append(dst, Neighbor{Index: idx, Delta: delta, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}
	return dst
}

func (g *SpatialGrid) key(p r3.Vec) cellKey {
	return cellKey{
		X: int32(math.Floor(p.X / g.cellSize)),
		Y: int32(math.Floor(p.Y / g.cellSize)),
		Z: int32(math.Floor(p.Z / g.cellSize)),
	}
}
