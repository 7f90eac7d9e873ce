package codec

import "github.com/tibiaserver/server/internal/model"

// MapThing is one item or creature occupying a tile slot in the viewport
// serializer, mirroring original_source/src/net/game.rs's MapThing enum.
type MapThing struct {
	IsCreature bool
	Item       model.ItemStack
	Creature   CreatureSnapshot
}

// CreatureSnapshot is the per-viewer rendering of a creature for the
// current tick: Known controls whether the "new creature" (with name and
// a RemovedID eviction hint) or "known creature" marker is written.
type CreatureSnapshot struct {
	ID            model.CreatureId
	Known         bool
	RemovedID     uint32
	Name          string
	HealthPercent uint8
	Direction     uint8
	Outfit        model.Outfit
	LightLevel    uint8
	LightColor    uint8
	Speed         uint16
	Skull         uint8
	PartyMark     uint8
}

// ThingsAt returns the ordered (items then creatures-by-id) contents of a
// tile for the current tick's shared snapshot. A nil/empty return means
// the tile is empty or out of bounds.
type ThingsAt func(pos model.Position) []MapThing

// WriteMapDescription writes a full 0x64 viewport packet centered on center.
func WriteMapDescription(w *Writer, center model.Position, things ThingsAt) {
	w.WriteU8(OpMapDescription)
	w.WritePosition(center)
	writeMapFloors(w, center, things)
}

// WriteFloorChange writes a 0xBE (moving up) or 0xBF (moving down) packet
// covering the floor range that newly became visible after a z step.
func WriteFloorChange(w *Writer, movingUp bool, newZ model.Position, things ThingsAt) bool {
	start, end, step, ok := floorChangeRange(newZ.Z, movingUp)
	if !ok {
		return false
	}
	opcode := OpFloorChangeDown
	if movingUp {
		opcode = OpFloorChangeUp
	}
	w.WriteU8(opcode)
	for z := start; stepOk(z, end, step); z += step {
		offset := model.FloorOffset(newZ.Z, uint8(z))
		writeFloorTiles(w, newZ, uint8(z), offset, things)
	}
	return true
}

// WriteMapRow writes one of the 0x65..0x68 directional row packets used
// after lateral motion. origin/width/height follow map_row_origin's
// per-direction asymmetric shape.
func WriteMapRow(w *Writer, opcode byte, center model.Position, things ThingsAt) bool {
	origin, width, height, ok := mapRowOrigin(center, opcode)
	if !ok {
		return false
	}
	w.WriteU8(opcode)
	offset := model.FloorOffset(center.Z, center.Z)
	writeRowTiles(w, origin, width, height, center.Z, offset, things)
	return true
}

// WriteFieldData writes a single-tile 0x69 delta packet (decay/refresh).
func WriteFieldData(w *Writer, pos model.Position, things ThingsAt) {
	w.WriteU8(OpFieldData)
	w.WritePosition(pos)
	here := things(pos)
	if len(here) > model.MaxTileThings {
		here = here[:model.MaxTileThings]
	}
	for _, t := range here {
		writeMapThing(w, t)
	}
}

// WriteMoveCreature writes a 0x6D move packet: the creature's previous
// position and stack position, and its new position.
func WriteMoveCreature(w *Writer, from model.Position, fromStackPos int, to model.Position) {
	w.WriteU8(OpMoveCreature)
	w.WritePosition(from)
	w.WriteU8(uint8(fromStackPos))
	w.WritePosition(to)
}

// WriteTileRemove writes a 0x6C removal of a single stack position.
func WriteTileRemove(w *Writer, pos model.Position, stackPos int) {
	w.WriteU8(OpTileRemoveThing)
	w.WritePosition(pos)
	w.WriteU8(uint8(stackPos))
}

// WriteTileAddThing writes a 0x6A addition of one thing to a tile.
func WriteTileAddThing(w *Writer, pos model.Position, thing MapThing) {
	w.WriteU8(OpTileAddThing)
	w.WritePosition(pos)
	writeMapThing(w, thing)
}

// WriteCreatureTurn writes an 0x6B direction-only update for a known
// creature already present at the given stack position.
func WriteCreatureTurn(w *Writer, pos model.Position, stackPos int, id model.CreatureId, direction uint8) {
	w.WriteU8(OpTileChangeThing)
	w.WritePosition(pos)
	w.WriteU8(uint8(stackPos))
	w.WriteU16(CreatureMarkerKnown)
	w.WriteU32(uint32(id))
	w.WriteU8(direction)
}

func writeMapThing(w *Writer, t MapThing) {
	if t.IsCreature {
		writeCreature(w, t.Creature)
		return
	}
	w.WriteItemStack(t.Item)
}

func writeCreature(w *Writer, c CreatureSnapshot) {
	marker := CreatureMarkerKnown
	if !c.Known {
		marker = CreatureMarkerNew
	}
	w.WriteU16(marker)
	if !c.Known {
		w.WriteU32(c.RemovedID)
	}
	w.WriteU32(uint32(c.ID))
	if !c.Known {
		w.WriteString(c.Name)
	}
	w.WriteU8(c.HealthPercent)
	w.WriteU8(c.Direction)
	w.WriteOutfit(c.Outfit.Snapshot())
	w.WriteU8(c.LightLevel)
	w.WriteU8(c.LightColor)
	w.WriteU16(c.Speed)
	w.WriteU8(c.Skull)
	w.WriteU8(c.PartyMark)
}

func writeMapFloors(w *Writer, center model.Position, things ThingsAt) {
	start, end, step := model.FloorRange(center.Z)
	for z := start; stepOk(z, end, step); z += step {
		offset := model.FloorOffset(center.Z, uint8(z))
		writeFloorTiles(w, center, uint8(z), offset, things)
	}
}

func stepOk(z, end, step int32) bool {
	if step > 0 {
		return z <= end
	}
	return z >= end
}

// writeFloorTiles emits the width x height viewport grid for one floor,
// via a two-pass index walk matching original_source's write_floor_tiles:
// runs of empty tiles collapse to a single 0xFF00|skip marker; non-empty
// tiles write their (capped) things followed by their own trailing skip
// count for the run of empty tiles immediately after them.
func writeFloorTiles(w *Writer, center model.Position, z uint8, offset int32, things ThingsAt) {
	origin := model.MapOrigin(center)
	writeGridTiles(w, origin, model.MapWidth, model.MapHeight, z, offset, things)
}

func writeRowTiles(w *Writer, origin model.Position, width, height int, z uint8, offset int32, things ThingsAt) {
	writeGridTiles(w, origin, width, height, z, offset, things)
}

func writeGridTiles(w *Writer, origin model.Position, width, height int, z uint8, offset int32, things ThingsAt) {
	total := width * height
	thingsAtIndex := func(index int) []MapThing {
		dx, dy := indexToCoord(index, height)
		pos, ok := model.MapPosition(origin, dx, dy, z, offset)
		if !ok {
			return nil
		}
		return things(pos)
	}

	idx := 0
	for idx < total {
		here := thingsAtIndex(idx)
		if len(here) == 0 {
			run := 1
			for idx+run < total && len(thingsAtIndex(idx+run)) == 0 {
				run++
			}
			w.WriteU16(skipRunValue(run - 1))
			idx += run
			continue
		}
		if len(here) > model.MaxTileThings {
			here = here[:model.MaxTileThings]
		}
		for _, t := range here {
			writeMapThing(w, t)
		}
		skip := 0
		for idx+1+skip < total && skip < 0xFF && len(thingsAtIndex(idx+1+skip)) == 0 {
			skip++
		}
		w.WriteU16(skipRunValue(skip))
		idx += 1 + skip
	}
}

func indexToCoord(index, height int) (uint8, uint8) {
	dx := index / height
	dy := index % height
	return uint8(dx), uint8(dy)
}

// mapRowOrigin returns the asymmetric per-direction origin/width/height
// used by the 0x65..0x68 row packets, matching map_row_origin.
func mapRowOrigin(center model.Position, opcode byte) (model.Position, int, int, bool) {
	switch opcode {
	case OpMapRowNorth:
		return model.Position{X: subU16(center.X, 8), Y: subU16(center.Y, 6), Z: center.Z}, model.MapWidth, 1, true
	case OpMapRowEast:
		return model.Position{X: addU16(center.X, 9), Y: subU16(center.Y, 6), Z: center.Z}, 1, model.MapHeight, true
	case OpMapRowSouth:
		return model.Position{X: subU16(center.X, 8), Y: addU16(center.Y, 7), Z: center.Z}, model.MapWidth, 1, true
	case OpMapRowWest:
		return model.Position{X: subU16(center.X, 8), Y: subU16(center.Y, 6), Z: center.Z}, 1, model.MapHeight, true
	default:
		return model.Position{}, 0, 0, false
	}
}

func subU16(v uint16, d uint16) uint16 {
	if d > v {
		return 0
	}
	return v - d
}

func addU16(v uint16, d uint16) uint16 {
	r := uint32(v) + uint32(d)
	if r > uint32(^uint16(0)) {
		return ^uint16(0)
	}
	return uint16(r)
}

// floorChangeRange mirrors original_source's floor_change_range exactly,
// including its degenerate case at the ground/underground boundary: moving
// up onto the ground layer yields start -1, end 0, step -1, a range that
// emits no floors.
func floorChangeRange(playerZ uint8, movingUp bool) (start, end, step int32, ok bool) {
	z := int32(playerZ)
	const groundLayer = model.GroundLayer
	const undergroundLayer = model.UndergroundLayer
	if movingUp {
		if z == groundLayer {
			return groundLayer - undergroundLayer, 0, -1, true
		} else if z > groundLayer {
			s := z - 2
			return s, s, -1, true
		}
		return 0, 0, 0, false
	}
	if z == groundLayer+1 {
		return z, z + undergroundLayer, 1, true
	}
	if z > groundLayer+1 && z+2 <= model.MaxFloor {
		s := z + 2
		return s, s, 1, true
	}
	return 0, 0, 0, false
}

// StackPosition computes the 0-based wire stack position of a creature at
// a tile given the tile's item count and the ascending-sorted creature ids
// present, matching original_source's creature_stack_pos.
func StackPosition(itemCount int, creatureIDsAscending []model.CreatureId, target model.CreatureId) int {
	return model.StackPosition(itemCount, creatureIDsAscending, target)
}
