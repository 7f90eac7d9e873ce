// Package worldstate holds the single authoritative World and every typed
// mutation spec.md §4.5 names. All mutation lives here: session loops and
// the simulation tick never touch a Player/Monster/Tile field directly.
// Grounded on the donor's internal/world package (PlayerInfo-as-pure-data,
// AOIGrid cell neighborhood, single process-wide lock discipline — see
// DESIGN.md), generalized from its single-goroutine "no locks needed"
// model to the explicit sync.Mutex spec.md §5 requires for a
// one-thread-per-connection scheduling model.
package worldstate

import (
	"sync"
	"sync/atomic"

	"github.com/tibiaserver/server/internal/model"
)

// World is the authoritative mutable game state. Every exported method
// locks internally and is atomic against a single World reference
// (spec.md §4.5); callers never see partial mutations.
type World struct {
	mu sync.Mutex

	players  map[model.PlayerId]*model.Player
	playersByName map[string]model.PlayerId
	npcs     map[model.CreatureId]*model.NPC
	monsters map[model.CreatureId]*model.Monster

	tiles map[model.Position]*model.Tile

	// nextCreatureID is allocated via atomic ops, not w.mu: TickRaids calls
	// NextCreatureID through the spawnMonster callback while already
	// holding w.mu, and sync.Mutex isn't reentrant.
	nextCreatureID atomic.Uint32

	aoi *AOIGrid

	channels map[uint16]*Channel
	privateChannels map[model.PlayerId]*Channel

	parties map[uint32]*Party
	nextPartyID uint32

	trades map[model.PlayerId]*Trade

	houses map[uint32]*model.House
	raids  []*model.RaidSchedule

	offlinePlayers map[model.PlayerId]*model.Player

	zones []ZoneRect
}

// ZoneRect marks a rectangular region (inclusive bounds, per floor range)
// whose tiles should pick up a fixed Protection/NoLogout flag the first
// time they are created, fed in by a content.MapIndex at startup.
type ZoneRect struct {
	MinX, MaxX uint16
	MinY, MaxY uint16
	MinZ, MaxZ uint8
	Protection bool
	NoLogout   bool
}

func (z ZoneRect) contains(pos model.Position) bool {
	return pos.X >= z.MinX && pos.X <= z.MaxX &&
		pos.Y >= z.MinY && pos.Y <= z.MaxY &&
		pos.Z >= z.MinZ && pos.Z <= z.MaxZ
}

// New builds an empty World.
func New() *World {
	w := &World{
		players:       make(map[model.PlayerId]*model.Player),
		playersByName: make(map[string]model.PlayerId),
		npcs:          make(map[model.CreatureId]*model.NPC),
		monsters:      make(map[model.CreatureId]*model.Monster),
		tiles:         make(map[model.Position]*model.Tile),
		aoi:           NewAOIGrid(),
		channels:       make(map[uint16]*Channel),
		privateChannels: make(map[model.PlayerId]*Channel),
		parties:        make(map[uint32]*Party),
		nextPartyID:    1,
		trades:         make(map[model.PlayerId]*Trade),
		houses:         make(map[uint32]*model.House),
		offlinePlayers: make(map[model.PlayerId]*model.Player),
	}
	w.nextCreatureID.Store(1)
	return w
}

// tileAt returns (creating if needed) the tile at pos. Caller must hold mu.
func (w *World) tileAt(pos model.Position) *model.Tile {
	t, ok := w.tiles[pos]
	if !ok {
		t = &model.Tile{Position: pos}
		for _, z := range w.zones {
			if z.contains(pos) {
				t.Protection = t.Protection || z.Protection
				t.NoLogout = t.NoLogout || z.NoLogout
			}
		}
		w.tiles[pos] = t
	}
	return t
}

// SeedZone registers a protection/no-logout rectangle, consulted whenever a
// tile inside it is created for the first time (spec.md §1: tile geometry
// itself is an external content concern, but the flags it seeds belong to
// World since Tile is this package's own type).
func (w *World) SeedZone(z ZoneRect) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.zones = append(w.zones, z)
}

// Spawn inserts a previously offline or brand-new player into the live
// world at its saved (or default) position, tracking last_login.
func (w *World) Spawn(p *model.Player, now model.GameTick) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p.LastLogin = now
	w.players[p.ID] = p
	w.playersByName[p.Name] = p.ID
	delete(w.offlinePlayers, p.ID)
	w.aoi.Add(uint64(p.ID), p.Position)
}

// Remove takes a player out of the live world, recording last_logout. If
// save has not yet been written by the caller, the player is parked in
// offlinePlayers so a late-arriving packet handler can still find it
// (spec.md §4.5 login/disconnect state machine).
func (w *World) Remove(id model.PlayerId, now model.GameTick, saved bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return
	}
	p.LastLogout = now
	w.aoi.Remove(uint64(id))
	delete(w.players, id)
	delete(w.playersByName, p.Name)
	if !saved {
		w.offlinePlayers[id] = p
	}
}

// Player returns the live player record, if any.
func (w *World) Player(id model.PlayerId) (*model.Player, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	return p, ok
}

// PlayerByName resolves a live player's id by exact name.
func (w *World) PlayerByName(name string) (model.PlayerId, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.playersByName[name]
	return id, ok
}

// NextCreatureID allocates a fresh id shared across players, NPCs, and
// monsters (spec.md glossary: "players occupy the low range ... share the
// same id space" is about wire representation; allocation itself is a
// single monotonic counter here, mirroring the donor's NextGroundItemID
// atomic-counter idiom generalized to creature ids).
func (w *World) NextCreatureID() model.CreatureId {
	return model.CreatureId(w.nextCreatureID.Add(1) - 1)
}

// SpawnMonster inserts a monster into the live world and its tile.
func (w *World) SpawnMonster(m *model.Monster) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.monsters[m.ID] = m
	w.aoi.Add(uint64(m.ID), m.Position)
}

// RemoveMonster deletes a monster (its corpse, if any, is left by the
// caller as a tile item via DropToTile before calling this).
func (w *World) RemoveMonster(id model.CreatureId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.monsters[id]
	if !ok {
		return
	}
	w.aoi.Remove(uint64(id))
	delete(w.monsters, id)
}

// Monster returns a live monster record, if any.
func (w *World) Monster(id model.CreatureId) (*model.Monster, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.monsters[id]
	return m, ok
}

// NPC returns a live NPC record, if any.
func (w *World) NPC(id model.CreatureId) (*model.NPC, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.npcs[id]
	return n, ok
}

// SpawnNPC inserts a conversational NPC into the live world.
func (w *World) SpawnNPC(n *model.NPC) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.npcs[n.ID] = n
	w.aoi.Add(uint64(n.ID), n.Position)
}

// NearbyCreatureIDs returns the creature ids sharing a 3x3 AOI-cell
// neighborhood with pos, for coarse candidate filtering before the caller
// applies exact viewport/distance checks.
func (w *World) NearbyCreatureIDs(pos model.Position) []uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.aoi.Nearby(pos)
}

// Tile returns the tile at pos, or an empty tile if none exists yet (never
// nil, so callers can always read Items/Protection/NoLogout without a
// second existence check).
func (w *World) Tile(pos model.Position) model.Tile {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.tiles[pos]
	if !ok {
		return model.Tile{Position: pos}
	}
	return *t
}

// OnlinePlayerNames returns every live player's name, for the admin
// online-list command (spec.md §4.4).
func (w *World) OnlinePlayerNames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.players))
	for _, p := range w.players {
		names = append(names, p.Name)
	}
	return names
}

// WithLock runs fn while holding the world mutex, for multi-step
// operations (e.g. the simulation tick's per-phase batch) that would
// otherwise pay lock/unlock overhead once per entity. fn must not call
// back into any other World method.
func (w *World) WithLock(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}
