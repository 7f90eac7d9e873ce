package scripting

import (
	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/worldstate"
)

// MeleeCalculator adapts Engine to worldstate.DamageCalculator's
// CalcMeleeAttack shape (attacker level/skill/weapon only, no STR/DEX/AC —
// those live on model.Player/Monster, not in the interface's narrow call
// shape), packing what's given into a CombatContext and collapsing the
// Lua function's single rolled Damage into a [damage/2, damage] band
// since the interface wants a min/max range and the script returns one
// roll per call. A miss reports a zero band.
type MeleeCalculator struct {
	Engine *Engine
}

// CalcMeleeAttack implements worldstate.DamageCalculator.
func (c *MeleeCalculator) CalcMeleeAttack(attackerLevel uint32, skill model.Skill, weaponAttack int32) (min, max int32) {
	res := c.Engine.CalcMeleeAttack(CombatContext{
		AttackerLevel:  int(attackerLevel),
		AttackerWeapon: int(weaponAttack),
		AttackerDmgMod: int(skill.Progress) / 10,
		TargetAC:       0,
		TargetLevel:    0,
	})
	if !res.IsHit {
		return 0, 0
	}
	return int32(res.Damage) / 2, int32(res.Damage)
}

// CalcSpellDamage implements worldstate.DamageCalculator, rolling a spell
// effect's data-driven [MinAmount,MaxAmount] band through
// CalcSkillDamage for magic-level variance rather than returning the
// template's static band unmodified.
func (c *MeleeCalculator) CalcSpellDamage(effect model.SpellEffect, casterLevel uint32, casterMagicLevel uint16) (min, max int32) {
	res := c.Engine.CalcSkillDamage(SkillDamageContext{
		DamageValue:        int(effect.MinAmount),
		DamageDice:         int(effect.MaxAmount - effect.MinAmount),
		DamageDiceCount:    1,
		AttackerLevel:      int(casterLevel),
		AttackerMagicLevel: int(casterMagicLevel),
	})
	if res.Damage <= 0 {
		return effect.MinAmount, effect.MaxAmount
	}
	lo := int32(res.Damage) / 2
	if lo < effect.MinAmount {
		lo = effect.MinAmount
	}
	return lo, int32(res.Damage)
}

// MonsterDecider adapts Engine's Lua npc_ai to worldstate.MonsterAI.
type MonsterDecider struct {
	Engine *Engine
}

// Decide implements worldstate.MonsterAI, grounded on internal/system/npc_ai.go's
// guard/aggro-then-attack-or-approach branch, driven here by the script's
// returned command list instead of inline Go conditionals.
func (d *MonsterDecider) Decide(m model.Monster, nearestHostileDist int32, hateLeaderID model.CreatureId) worldstate.AIDecision {
	ctx := AIContext{
		NpcID:      int(m.ID),
		HP:         int(m.Health),
		MaxHP:      int(m.MaxHealth),
		TargetID:   int(hateLeaderID),
		TargetDist: int(nearestHostileDist),
		Agro:       nearestHostileDist >= 0 && nearestHostileDist <= 8,
		CanAttack:  true,
		CanMove:    true,
	}
	cmds := d.Engine.RunNpcAI(ctx)
	if len(cmds) == 0 {
		if ctx.Agro {
			return worldstate.AIApproach
		}
		return worldstate.AIIdle
	}
	for _, cmd := range cmds {
		switch cmd.Type {
		case "attack", "ranged_attack", "skill":
			return worldstate.AIAttack
		case "move_toward":
			return worldstate.AIApproach
		case "lose_aggro":
			return worldstate.AIIdle
		}
	}
	return worldstate.AIIdle
}
