package worldstate

import (
	"sort"

	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/model"
)

// ThingsAt implements codec.ThingsAt (and so session.ThingsLookup)
// directly against live world state: a tile's stored items, followed by
// every live player/monster/NPC whose exact Position matches, ascending
// by id per model.StackPosition's ordering rule. Candidate creatures come
// from the AOI grid's 3x3-cell neighborhood rather than a full scan of
// every player/monster/NPC, since cellSpan (20) safely covers any tile
// within view range.
func (w *World) ThingsAt(pos model.Position) []codec.MapThing {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []codec.MapThing
	if t, ok := w.tiles[pos]; ok {
		for _, item := range t.Items {
			out = append(out, codec.MapThing{Item: item})
		}
	}

	var creatures []codec.MapThing
	for _, id := range w.aoi.Nearby(pos) {
		if p, ok := w.players[model.PlayerId(id)]; ok && p.Position == pos {
			creatures = append(creatures, codec.MapThing{
				IsCreature: true,
				Creature: codec.CreatureSnapshot{
					ID:            model.CreatureId(p.ID),
					Known:         true,
					Name:          p.Name,
					HealthPercent: healthPercent(p.Health, p.MaxHealth),
					Direction:     uint8(p.Direction),
					Outfit:        p.Outfit,
					LightLevel:    p.LightLevel,
					LightColor:    p.LightColor,
				},
			})
			continue
		}
		if m, ok := w.monsters[model.CreatureId(id)]; ok && m.Position == pos {
			creatures = append(creatures, codec.MapThing{
				IsCreature: true,
				Creature: codec.CreatureSnapshot{
					ID:            m.ID,
					Known:         true,
					HealthPercent: healthPercent(m.Health, m.MaxHealth),
					Direction:     uint8(m.Direction),
					Outfit:        m.Outfit,
				},
			})
			continue
		}
		if n, ok := w.npcs[model.CreatureId(id)]; ok && n.Position == pos {
			creatures = append(creatures, codec.MapThing{
				IsCreature: true,
				Creature: codec.CreatureSnapshot{
					ID:        n.ID,
					Known:     true,
					Name:      n.Name,
					Direction: uint8(n.Direction),
					Outfit:    n.Outfit,
				},
			})
		}
	}
	sort.Slice(creatures, func(i, j int) bool { return creatures[i].Creature.ID < creatures[j].Creature.ID })
	return append(out, creatures...)
}

func healthPercent(health, maxHealth uint32) uint8 {
	if maxHealth == 0 {
		return 0
	}
	pct := health * 100 / maxHealth
	if pct > 100 {
		pct = 100
	}
	return uint8(pct)
}
