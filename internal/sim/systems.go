package sim

import (
	"time"

	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/replay"
	"github.com/tibiaserver/server/internal/worldstate"
)

// ConditionsSystem runs tick_conditions (spec.md §4.6 step 1).
type ConditionsSystem struct{ World *worldstate.World }

func (s *ConditionsSystem) Phase() Phase { return PhaseConditions }
func (s *ConditionsSystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	out.Conditions = s.World.TickConditions(now)
}

// StatusEffectsSystem runs tick_status_effects (step 2).
type StatusEffectsSystem struct{ World *worldstate.World }

func (s *StatusEffectsSystem) Phase() Phase { return PhaseStatusEffects }
func (s *StatusEffectsSystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	out.StatusUpdates = s.World.TickStatusEffects(now)
}

// SkillTimersSystem runs tick_skill_timers (step 3).
type SkillTimersSystem struct{ World *worldstate.World }

func (s *SkillTimersSystem) Phase() Phase { return PhaseSkillTimers }
func (s *SkillTimersSystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	out.SkillOutcomes = s.World.TickSkillTimers(now)
}

// RaidsAndHomesSystem runs tick_raids and tick_monster_homes (step 4).
type RaidsAndHomesSystem struct {
	World        *worldstate.World
	SpawnMonster func(model.RaidSpawn) *model.Monster
}

func (s *RaidsAndHomesSystem) Phase() Phase { return PhaseRaidsAndHomes }
func (s *RaidsAndHomesSystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	out.RaidSpawns = s.World.TickRaids(now, s.SpawnMonster)
	s.World.TickMonsterHomes(now)
}

// MapRefreshSystem runs tick_map_refresh (step 5).
type MapRefreshSystem struct{ World *worldstate.World }

func (s *MapRefreshSystem) Phase() Phase { return PhaseMapRefresh }
func (s *MapRefreshSystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	out.MapRefreshes = s.World.TickMapRefresh(now)
}

// HousesSystem runs tick_houses (step 6).
type HousesSystem struct{ World *worldstate.World }

func (s *HousesSystem) Phase() Phase { return PhaseHouses }
func (s *HousesSystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	out.HouseEvents = s.World.TickHouses(now)
}

// CreatureAISystem runs tick_npcs and tick_monsters (step 7).
type CreatureAISystem struct {
	World *worldstate.World
	AI    worldstate.MonsterAI
	Calc  worldstate.DamageCalculator
}

func (s *CreatureAISystem) Phase() Phase { return PhaseCreatureAI }
func (s *CreatureAISystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	s.World.TickNPCs(now)
	moves, combats := s.World.TickMonsters(now, s.AI, s.Calc)
	out.MonsterMoves = moves
	out.MonsterCombat = combats
}

// CronSystem runs tick_cron_system (step 8).
type CronSystem struct {
	World *worldstate.World
	Jobs  []*worldstate.CronJob
}

func (s *CronSystem) Phase() Phase { return PhaseCronSystem }
func (s *CronSystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	s.World.TickCronSystem(now, s.Jobs)
}
