package worldstate

import "github.com/tibiaserver/server/internal/model"

// AOIGrid indexes every live creature by a coarse 20x20 cell so a 3x3 cell
// neighborhood (covering the 18x14 viewport plus slack) can be queried
// without scanning every creature in the world. Unlike a plain position
// index, AOIGrid remembers each id's last known cell itself, so callers
// never have to carry an old position alongside the new one just to issue
// a Move.
const cellSpan = 20

type cell struct {
	floor int16
	cx    int32
	cy    int32
}

func cellCoord(v int32) int32 {
	if v < 0 {
		return (v - cellSpan + 1) / cellSpan
	}
	return v / cellSpan
}

func cellFor(pos model.Position) cell {
	return cell{floor: int16(pos.Z), cx: cellCoord(int32(pos.X)), cy: cellCoord(int32(pos.Y))}
}

// AOIGrid tracks which creature ids occupy which cell, plus the reverse
// mapping needed to relocate or evict an id without the caller re-supplying
// its previous position.
type AOIGrid struct {
	occupants map[cell]map[uint64]struct{}
	cellOf    map[uint64]cell
}

// NewAOIGrid builds an empty grid.
func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		occupants: make(map[cell]map[uint64]struct{}),
		cellOf:    make(map[uint64]cell),
	}
}

func (g *AOIGrid) insert(id uint64, c cell) {
	set := g.occupants[c]
	if set == nil {
		set = make(map[uint64]struct{})
		g.occupants[c] = set
	}
	set[id] = struct{}{}
	g.cellOf[id] = c
}

func (g *AOIGrid) evict(id uint64, c cell) {
	set := g.occupants[c]
	if set == nil {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(g.occupants, c)
	}
	delete(g.cellOf, id)
}

// Add places a creature into the grid at pos.
func (g *AOIGrid) Add(id uint64, pos model.Position) {
	g.insert(id, cellFor(pos))
}

// Remove takes a creature out of the grid, wherever it currently sits.
func (g *AOIGrid) Remove(id uint64) {
	if c, ok := g.cellOf[id]; ok {
		g.evict(id, c)
	}
}

// Move relocates a creature to pos, a no-op if it did not leave its cell.
func (g *AOIGrid) Move(id uint64, pos model.Position) {
	next := cellFor(pos)
	if cur, ok := g.cellOf[id]; ok {
		if cur == next {
			return
		}
		g.evict(id, cur)
	}
	g.insert(id, next)
}

// Nearby returns every creature id sharing a 3x3 cell neighborhood around
// pos. Callers still apply exact viewport/distance checks on the result.
func (g *AOIGrid) Nearby(pos model.Position) []uint64 {
	center := cellFor(pos)
	var result []uint64
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			k := cell{floor: center.floor, cx: center.cx + dx, cy: center.cy + dy}
			for id := range g.occupants[k] {
				result = append(result, id)
			}
		}
	}
	return result
}
