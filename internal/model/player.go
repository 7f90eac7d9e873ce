package model

// Skill is a single trained skill: level plus fractional progress toward
// the next level, plus the raw 12-int row the legacy client expects
// verbatim for skills it doesn't interpret server-side.
type Skill struct {
	Level    uint16
	Progress uint16   // percent toward next level, 0..99
	Raw      [12]int32
}

// InventorySlot names one of the ten fixed equipment slots.
type InventorySlot uint8

const (
	SlotHead InventorySlot = iota
	SlotNecklace
	SlotBackpack
	SlotArmor
	SlotRightHand
	SlotLeftHand
	SlotLegs
	SlotFeet
	SlotRing
	SlotAmmo
	numInventorySlots
)

const NumInventorySlots = int(numInventorySlots)

// OpenContainer is an entry in a player's ≤16 open containers. Source is
// either a backing inventory slot, a container nested within another
// container, or a map position plus stack index.
type OpenContainer struct {
	ID ContainerId

	SourceIsInventory bool
	InventorySlot     InventorySlot

	SourceIsContainer bool
	ParentContainerID ContainerId
	ParentSlot        int

	SourceIsMap bool
	MapPosition Position
	StackPos    int
}

// FightMode selects a player's combat stance.
type FightMode uint8

const (
	FightOffensive FightMode = iota
	FightBalanced
	FightDefensive
)

// TradeState is the player's side of the Trade state machine (spec.md §4.5).
type TradeState uint8

const (
	TradeNone TradeState = iota
	TradeOffered
	TradeCounterOffered
	TradeAccepted
)

// AutowalkState tracks a queued sequence of directional steps.
type AutowalkState struct {
	Steps []Direction
}

// Player is the authoritative record for one logged-in (or offline-saved)
// character. Pure data: every field here is mutated exclusively through
// worldstate operations, never directly by a session loop or parser.
type Player struct {
	ID       PlayerId
	Name     string
	Race     uint8
	Profession uint8
	Level    uint32
	Experience uint64

	Health    uint32
	MaxHealth uint32
	Mana      uint32
	MaxMana   uint32
	Soul      uint8
	Capacity  uint32

	Skills   map[uint8]*Skill

	Inventory [NumInventorySlots]*ItemStack
	SavedBackpacks [NumInventorySlots][]ItemStack

	OpenContainers map[ContainerId]*OpenContainer

	KnownSpells map[SpellId]struct{}
	Quests      map[string]int32
	Depots      map[uint16][]ItemStack

	Buddies  map[PlayerId]struct{}
	PartyID  uint32
	SharedExp bool

	TradeState      TradeState
	TradePartnerID  PlayerId
	TradeOfferedItem *ItemStack

	Position  Position
	Direction Direction
	Outfit    Outfit
	OriginalOutfit Outfit

	LightLevel uint8
	LightColor uint8
	Speed      uint16

	DrunkenTicks     GameTick
	MagicShieldTicks GameTick
	PoisonTicks      GameTick
	BurningTicks     GameTick
	ElectrifiedTicks GameTick
	HasteUntil       GameTick
	SlowUntil        GameTick

	AttackTargetID CreatureId
	FollowTargetID CreatureId
	FightMode      FightMode

	Skull   SkullState
	Murders []GameTick

	Premium bool
	GM      bool
	TestGod bool

	Autowalk AutowalkState

	MoveCooldownUntil   GameTick
	AttackCooldownUntil GameTick
	InCombatUntil       GameTick

	LastLogin  GameTick
	LastLogout GameTick

	Pending PendingQueues
}

// Clamp enforces health<=max_health and mana<=max_mana (spec.md §3 invariant).
func (p *Player) Clamp() {
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	if p.Mana > p.MaxMana {
		p.Mana = p.MaxMana
	}
}

// PendingQueues holds per-player FIFOs of updates produced by world
// mutation but not yet sent by the session loop (spec.md §4.5).
type PendingQueues struct {
	Messages           []PendingMessage
	DataUpdate         bool
	SkillUpdate        map[uint8]struct{}
	TurnUpdates        []CreatureId
	OutfitUpdates      []CreatureId
	BuddyUpdates       []PlayerId
	PartyUpdates       []uint32
	TradeUpdates       []PlayerId
	MapRefreshes       []Position
	ContainerCloses    []ContainerId
	MoveUseOutcomes    []MoveUseOutcome
}

// PendingMessage is a queued 0xB4-style text message.
type PendingMessage struct {
	Kind uint8
	Text string
}

// MoveUseOutcome is a queued result of a MoveUse intent (effect/message/
// edit-text/refresh/container-update bundle), drained by the session loop.
type MoveUseOutcome struct {
	Position   Position
	EffectID   uint16
	Message    string
	ContainerUpdate *ContainerUpdate
}

// ContainerUpdate is a typed delta describing a container-contents change,
// so the session loop can emit the right opcode without re-snapshotting
// the whole container (spec.md §4.5, §9 design notes).
type ContainerUpdate struct {
	ContainerID ContainerId
	Kind        ContainerUpdateKind
	Slot        int
	Item        *ItemStack
}

// ContainerUpdateKind tags a ContainerUpdate variant.
type ContainerUpdateKind uint8

const (
	ContainerOpened ContainerUpdateKind = iota
	ContainerAddItem
	ContainerRemoveItem
	ContainerTransformItem
	ContainerClosed
)

// TakeMessages drains and returns all pending messages, FIFO.
func (q *PendingQueues) TakeMessages() []PendingMessage {
	out := q.Messages
	q.Messages = nil
	return out
}

// TakeDataUpdate drains the pending "player data changed" flag.
func (q *PendingQueues) TakeDataUpdate() bool {
	v := q.DataUpdate
	q.DataUpdate = false
	return v
}

// TakeSkillUpdate drains the set of skills whose data changed this cycle.
func (q *PendingQueues) TakeSkillUpdate() map[uint8]struct{} {
	out := q.SkillUpdate
	q.SkillUpdate = nil
	return out
}

// TakeTurnUpdates drains queued creature-turn notifications.
func (q *PendingQueues) TakeTurnUpdates() []CreatureId {
	out := q.TurnUpdates
	q.TurnUpdates = nil
	return out
}

// TakeOutfitUpdates drains queued outfit-change notifications.
func (q *PendingQueues) TakeOutfitUpdates() []CreatureId {
	out := q.OutfitUpdates
	q.OutfitUpdates = nil
	return out
}

// TakeBuddyUpdates drains queued buddy online/offline notifications.
func (q *PendingQueues) TakeBuddyUpdates() []PlayerId {
	out := q.BuddyUpdates
	q.BuddyUpdates = nil
	return out
}

// TakePartyUpdates drains queued party-roster notifications.
func (q *PendingQueues) TakePartyUpdates() []uint32 {
	out := q.PartyUpdates
	q.PartyUpdates = nil
	return out
}

// TakeTradeUpdates drains queued trade-state notifications.
func (q *PendingQueues) TakeTradeUpdates() []PlayerId {
	out := q.TradeUpdates
	q.TradeUpdates = nil
	return out
}

// TakeMapRefreshes drains queued tile-decay refresh positions.
func (q *PendingQueues) TakeMapRefreshes() []Position {
	out := q.MapRefreshes
	q.MapRefreshes = nil
	return out
}

// TakeContainerCloses drains queued forced-close container ids.
func (q *PendingQueues) TakeContainerCloses() []ContainerId {
	out := q.ContainerCloses
	q.ContainerCloses = nil
	return out
}

// TakeMoveUseOutcomes drains queued MoveUse-derived packet bundles.
func (q *PendingQueues) TakeMoveUseOutcomes() []MoveUseOutcome {
	out := q.MoveUseOutcomes
	q.MoveUseOutcomes = nil
	return out
}
