package worldstate

import "github.com/tibiaserver/server/internal/model"

// These Tick* operations are called once per simulation step (spec.md
// §4.6) and each returns a deterministic Outcome describing what changed;
// none of them touch network state directly — the session loop and replay
// history translate outcomes into packets.

// ConditionOutcome is one player's condition-tick result (poison/fire/
// drowning-style damage-over-time, grounded on the donor's
// internal/system/poison.go per-tick damage application).
type ConditionOutcome struct {
	PlayerID model.PlayerId
	Damage   int32
	Died     bool
}

// TickConditions applies any damage-over-time ticks to every live player
// and returns the non-zero results.
func (w *World) TickConditions(now model.GameTick) []ConditionOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []ConditionOutcome
	for id, p := range w.players {
		var dmg int32
		if p.PoisonTicks > 0 {
			p.PoisonTicks--
			dmg += 2
		}
		if p.BurningTicks > 0 {
			p.BurningTicks--
			dmg += 4
		}
		if p.ElectrifiedTicks > 0 {
			p.ElectrifiedTicks--
			dmg += 4
		}
		if dmg == 0 {
			continue
		}
		if uint32(dmg) >= p.Health {
			dmg = int32(p.Health)
		}
		p.Health -= uint32(dmg)
		out = append(out, ConditionOutcome{PlayerID: id, Damage: dmg, Died: p.Health == 0})
	}
	return out
}

// StatusEffectOutcome reports a buff expiring or ticking down (grounded on
// internal/system/buff_tick.go's apply/expire-with-reversed-delta idiom).
type StatusEffectOutcome struct {
	PlayerID model.PlayerId
	Expired  bool
}

// TickStatusEffects decrements magic-shield/haste-style timed effects and
// reports expirations.
func (w *World) TickStatusEffects(now model.GameTick) []StatusEffectOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []StatusEffectOutcome
	for id, p := range w.players {
		expired := false
		if p.MagicShieldTicks > 0 {
			p.MagicShieldTicks--
			expired = expired || p.MagicShieldTicks == 0
		}
		if p.DrunkenTicks > 0 {
			p.DrunkenTicks--
			expired = expired || p.DrunkenTicks == 0
		}
		if p.HasteUntil != 0 && now >= p.HasteUntil {
			p.HasteUntil = 0
			expired = true
		}
		if p.SlowUntil != 0 && now >= p.SlowUntil {
			p.SlowUntil = 0
			expired = true
		}
		if expired {
			out = append(out, StatusEffectOutcome{PlayerID: id, Expired: true})
		}
	}
	return out
}

// SkillOutcome reports a skill that trained up this tick.
type SkillOutcome struct {
	PlayerID model.PlayerId
	Skill    uint8
}

// TickSkillTimers takes each player's pending skill-update set (the same
// set the session loop's TakePendingSkillUpdate drains) and reports one
// SkillOutcome per skill in it. It keeps no training cooldowns and
// decrements nothing.
func (w *World) TickSkillTimers(now model.GameTick) []SkillOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []SkillOutcome
	for id, p := range w.players {
		for skillID := range p.Pending.TakeSkillUpdate() {
			out = append(out, SkillOutcome{PlayerID: id, Skill: skillID})
		}
	}
	return out
}

// MonsterMoveOutcome reports a monster's AI-driven movement this tick.
type MonsterMoveOutcome struct {
	MonsterID model.CreatureId
	From, To  model.Position
}

// MonsterCombatOutcome reports a monster's AI-driven attack this tick.
type MonsterCombatOutcome struct {
	MonsterID model.CreatureId
	TargetID  model.CreatureId
	Damage    int32
}

// AIDecision is the MonsterAI collaborator's output: either move
// toward/away from a target, attack it, or idle.
type AIDecision uint8

const (
	AIIdle AIDecision = iota
	AIApproach
	AIFlee
	AIAttack
)

// MonsterAI is the external collaborator that picks a monster's action;
// scripting.MonsterDecider implements it over the Lua npc_ai function.
type MonsterAI interface {
	Decide(m model.Monster, nearestHostileDist int32, hateLeaderID model.CreatureId) AIDecision
}

// TickMonsters runs AI decisions for every live monster: aggro scan at
// Chebyshev distance <= 8, hate-list lookup, then move or attack
// (grounded on internal/system/npc_ai.go's guard/monster branch).
func (w *World) TickMonsters(now model.GameTick, ai MonsterAI, calc DamageCalculator) ([]MonsterMoveOutcome, []MonsterCombatOutcome) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var moves []MonsterMoveOutcome
	var combats []MonsterCombatOutcome

	for id, m := range w.monsters {
		if m.Health == 0 {
			continue
		}
		if now < m.MoveCooldownUntil && now < m.CombatCooldownUntil {
			continue
		}
		target, dist := w.nearestHostile(m)
		decision := AIIdle
		if ai != nil {
			decision = ai.Decide(*m, dist, m.AttackTargetID)
		} else if target != 0 && dist <= 1 {
			decision = AIAttack
		} else if target != 0 && dist <= 8 {
			decision = AIApproach
		}

		switch decision {
		case AIApproach:
			if now >= m.MoveCooldownUntil {
				from := m.Position
				to := stepToward(m.Position, w.positionOf(target))
				m.Position = to
				m.MoveCooldownUntil = now + 4
				w.aoi.Move(uint64(id), to)
				moves = append(moves, MonsterMoveOutcome{MonsterID: id, From: from, To: to})
			}
		case AIAttack:
			if now >= m.CombatCooldownUntil {
				var min, max int32 = 1, 1
				if calc != nil && len(m.Skills) > 0 {
					if sk, ok := m.Skills[0]; ok {
						min, max = calc.CalcMeleeAttack(1, *sk, 0)
					}
				}
				dmg := max
				if min > 0 {
					dmg = (min + max) / 2
				}
				w.damageCreature(target, dmg)
				m.CombatCooldownUntil = now + 4
				combats = append(combats, MonsterCombatOutcome{MonsterID: id, TargetID: target, Damage: dmg})
			}
		}
	}
	return moves, combats
}

func (w *World) nearestHostile(m *model.Monster) (model.CreatureId, int32) {
	var best model.CreatureId
	bestDist := int32(1 << 30)
	for id, p := range w.players {
		if p.Health == 0 {
			continue
		}
		d := chebyshevDistance(m.Position, p.Position)
		if d < bestDist {
			bestDist = d
			best = model.CreatureId(id)
		}
	}
	return best, bestDist
}

func (w *World) positionOf(id model.CreatureId) model.Position {
	if p, ok := w.players[model.PlayerId(id)]; ok {
		return p.Position
	}
	if m, ok := w.monsters[id]; ok {
		return m.Position
	}
	return model.Position{}
}

func stepToward(from, to model.Position) model.Position {
	next := from
	if from.X < to.X {
		next.X++
	} else if from.X > to.X {
		next.X--
	}
	if from.Y < to.Y {
		next.Y++
	} else if from.Y > to.Y {
		next.Y--
	}
	return next
}

// TickNPCs advances each NPC's focus-timeout, clearing FocusedPlayer once
// FocusExpiresAt has passed.
func (w *World) TickNPCs(now model.GameTick) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, n := range w.npcs {
		if n.FocusedPlayer != 0 && now >= n.FocusExpiresAt {
			n.FocusedPlayer = 0
		}
	}
}

// RaidOutcome reports a raid schedule firing.
type RaidOutcome struct {
	RaidID  uint32
	Spawned []model.CreatureId
}

// TickRaids fires any raid schedule whose NextFire has arrived, spawning
// its monster groups (grounded on internal/system/npc_respawn.go's
// schedule-and-radius spawn logic).
func (w *World) TickRaids(now model.GameTick, spawnMonster func(model.RaidSpawn) *model.Monster) []RaidOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []RaidOutcome
	for _, raid := range w.raids {
		if now < raid.NextFire {
			continue
		}
		raid.NextFire = now + raid.Interval
		var spawned []model.CreatureId
		for _, spawn := range raid.Spawns {
			for i := 0; i < spawn.Count; i++ {
				m := spawnMonster(spawn)
				if m == nil {
					continue
				}
				w.monsters[m.ID] = m
				w.aoi.Add(uint64(m.ID), m.Position)
				spawned = append(spawned, m.ID)
			}
		}
		out = append(out, RaidOutcome{RaidID: raid.ID, Spawned: spawned})
	}
	return out
}

// AddRaidSchedule registers a raid schedule (loaded by the content
// collaborator at startup).
func (w *World) AddRaidSchedule(r *model.RaidSchedule) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.raids = append(w.raids, r)
}

// TickMonsterHomes does nothing: World holds no monster-home data or
// timers, so monster-home respawns are not simulated. Scheduled spawns
// run through TickRaids.
func (w *World) TickMonsterHomes(now model.GameTick) {}

// MapRefreshOutcome reports a tile whose refreshable items decayed.
type MapRefreshOutcome struct {
	Position model.Position
}

// TickMapRefresh empties every tile tagged Refresh that holds items, on
// every call, and reports each such tile (grounded on
// internal/world/state.go's TickGroundItems sweep, generalized to whole
// tiles rather than standalone ground items). No per-item TTL is kept.
func (w *World) TickMapRefresh(now model.GameTick) []MapRefreshOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []MapRefreshOutcome
	for pos, t := range w.tiles {
		if !t.Refresh || len(t.Items) == 0 {
			continue
		}
		t.Items = t.Items[:0]
		out = append(out, MapRefreshOutcome{Position: pos})
	}
	return out
}

// HouseOutcome reports a house's rent state changing.
type HouseOutcome struct {
	HouseID uint32
	Evicted bool
}

// TickHouses advances rent-due bookkeeping (grounded on
// internal/system/warehouse.go's lease/ownership shape).
func (w *World) TickHouses(now model.GameTick) []HouseOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []HouseOutcome
	for id, h := range w.houses {
		if h.OwnerID == 0 || now < h.RentDue {
			continue
		}
		h.OwnerID = 0
		out = append(out, HouseOutcome{HouseID: id, Evicted: true})
	}
	return out
}

// AddHouse registers a house (loaded by the content/persist collaborator).
func (w *World) AddHouse(h *model.House) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.houses[h.ID] = h
}

// CronJob is a scheduled, repeating maintenance task (grounded on
// internal/system/maptimer_sys.go's scheduled-job timer idiom).
type CronJob struct {
	Name     string
	Interval model.GameTick
	NextRun  model.GameTick
	Run      func(now model.GameTick)
}

// TickCronSystem runs any CronJob whose NextRun has arrived.
func (w *World) TickCronSystem(now model.GameTick, jobs []*CronJob) {
	for _, job := range jobs {
		if now < job.NextRun {
			continue
		}
		job.NextRun = now + job.Interval
		job.Run(now)
	}
}
