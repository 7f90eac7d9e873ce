// Package model holds the authoritative data shapes for players, creatures,
// tiles, items and spells. Types here are pure data: mutation happens in
// worldstate and sim, never on the struct itself.
package model

// PlayerId identifies a player; nonzero.
type PlayerId uint32

// CreatureId identifies any creature (player, NPC, or monster) on the wire.
// Players occupy the low range; NPCs/monsters share the same id space.
type CreatureId uint32

// ItemTypeId identifies an item template.
type ItemTypeId uint16

// SpellId identifies a spell definition.
type SpellId uint16

// SpellGroupId groups spells that share a cooldown.
type SpellGroupId uint16

// ContainerId identifies an open container slot for a player, 0..16.
type ContainerId uint8

const MaxOpenContainers = 16

// GameTick is a monotonic tick counter, one unit per 100ms simulation step.
type GameTick uint64
