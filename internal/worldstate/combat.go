package worldstate

import (
	"errors"

	"github.com/tibiaserver/server/internal/model"
)

// ErrNoTarget is returned by combat operations that require a resolved
// target (creature or field square) which could not be found.
var ErrNoTarget = errors.New("no target")

// ErrNotEnoughMana/ErrNotEnoughSoul/ErrTooLowLevel are the typed failures
// spec.md §4.5 describes as "user-triggered invalidity ... a typed error
// message the session loop reflects verbatim as a 0xB4 message".
var (
	ErrNotEnoughMana  = errors.New("not enough mana")
	ErrNotEnoughSoul  = errors.New("not enough soul")
	ErrTooLowLevel    = errors.New("you are too low a level")
	ErrSpellCooldown  = errors.New("spell is still cooling down")
	ErrUnknownSpell   = errors.New("you do not know that spell")
)

// DamageCalculator is the external collaborator that computes melee and
// spell damage rolls (spec.md §1: combat math is out of scope here; only
// the call shape is). Backed by a Lua engine in production.
type DamageCalculator interface {
	CalcMeleeAttack(attackerLevel uint32, skill model.Skill, weaponAttack int32) (min, max int32)
	CalcSpellDamage(effect model.SpellEffect, casterLevel uint32, casterMagicLevel uint16) (min, max int32)
}

// SpellCastReport is the outcome of casting a spell by words: the session
// loop builds effect/missile/message/textual packets from it.
type SpellCastReport struct {
	Spell       model.Spell
	CasterID    model.CreatureId
	TargetID    model.CreatureId
	TargetPos   model.Position
	DamageDealt int32
	HealDone    int32
	NeedsResync bool
}

// CastSpellWords resolves words against spell.ID via the lookup function
// (an external content-loader concern), checks mana/soul/level/cooldown,
// applies the effect, and returns a report.
func (w *World) CastSpellWords(id model.PlayerId, words string, dir model.Direction, now model.GameTick, lookup func(normalizedWords string) (model.Spell, bool), calc DamageCalculator) (SpellCastReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return SpellCastReport{}, errors.New("cast_spell_words: unknown player")
	}
	spell, ok := lookup(model.NormalizeWords(words))
	if !ok {
		return SpellCastReport{}, ErrUnknownSpell
	}
	if _, known := p.KnownSpells[spell.ID]; !known {
		return SpellCastReport{}, ErrUnknownSpell
	}
	if now < p.AttackCooldownUntil {
		return SpellCastReport{}, ErrSpellCooldown
	}
	if uint32(spell.LevelCost) > p.Level {
		return SpellCastReport{}, ErrTooLowLevel
	}
	if uint32(spell.ManaCost) > p.Mana {
		return SpellCastReport{}, ErrNotEnoughMana
	}
	if uint32(spell.SoulCost) > uint32(p.Soul) {
		return SpellCastReport{}, ErrNotEnoughSoul
	}

	p.Mana -= uint32(spell.ManaCost)
	p.Soul -= spell.SoulCost
	p.AttackCooldownUntil = now + spell.Cooldown
	p.Direction = dir

	report := SpellCastReport{Spell: spell, CasterID: model.CreatureId(id)}
	if spell.Effect != nil {
		report = w.applySpellEffect(p, *spell.Effect, dir, calc)
		report.Spell = spell
		report.CasterID = model.CreatureId(id)
	}
	return report, nil
}

// CastRune casts a pre-charged rune item from inventory slot, skipping
// mana/soul checks already paid when the rune was conjured.
func (w *World) CastRune(id model.PlayerId, spell model.Spell, slot model.InventorySlot, targetPos model.Position, dir model.Direction, now model.GameTick, calc DamageCalculator) (SpellCastReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return SpellCastReport{}, errors.New("cast_rune: unknown player")
	}
	stack := p.Inventory[slot]
	if stack == nil || stack.TypeID != spell.RuneTypeID {
		return SpellCastReport{}, ErrNoTarget
	}
	if now < p.AttackCooldownUntil {
		return SpellCastReport{}, ErrSpellCooldown
	}
	stack.Count--
	if stack.Count == 0 {
		p.Inventory[slot] = nil
	}
	p.AttackCooldownUntil = now + spell.Cooldown

	report := SpellCastReport{Spell: spell, CasterID: model.CreatureId(id), TargetPos: targetPos}
	if spell.Effect != nil {
		e := w.applySpellEffect(p, *spell.Effect, dir, calc)
		report.DamageDealt = e.DamageDealt
		report.HealDone = e.HealDone
	}
	return report, nil
}

func (w *World) applySpellEffect(caster *model.Player, effect model.SpellEffect, dir model.Direction, calc DamageCalculator) SpellCastReport {
	report := SpellCastReport{}
	switch effect.Kind {
	case model.EffectHealing:
		lo, hi := int32(effect.MinAmount), int32(effect.MaxAmount)
		healed := lo
		if hi > lo {
			healed = hi
		}
		if calc != nil {
			healed, _ = calc.CalcSpellDamage(effect, caster.Level, 0)
		}
		caster.Health += uint32(healed)
		caster.Clamp()
		report.HealDone = healed
	case model.EffectDamage:
		dmg := effect.MinAmount
		if calc != nil {
			dmg, _ = calc.CalcSpellDamage(effect, caster.Level, 0)
		}
		report.DamageDealt = dmg
	case model.EffectLight:
		caster.LightLevel = effect.LightLevel
		caster.LightColor = effect.LightColor
	case model.EffectOutfit:
		caster.Pending.OutfitUpdates = append(caster.Pending.OutfitUpdates, model.CreatureId(caster.ID))
	}
	return report
}

// TickPlayerAttack advances the auto-attack cycle against AttackTargetID,
// returning the damage dealt (0 if on cooldown, out of range, or no
// target).
func (w *World) TickPlayerAttack(id model.PlayerId, now model.GameTick, calc DamageCalculator) (int32, model.CreatureId, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return 0, 0, errors.New("tick_player_attack: unknown player")
	}
	if p.AttackTargetID == 0 || now < p.AttackCooldownUntil {
		return 0, 0, nil
	}

	target, targetPos, alive := w.resolveCreaturePosition(p.AttackTargetID)
	if !alive {
		p.AttackTargetID = 0
		return 0, 0, nil
	}
	if chebyshevDistance(p.Position, targetPos) > 1 {
		return 0, 0, nil
	}

	skill := p.Skills[0]
	var min, max int32
	if calc != nil && skill != nil {
		min, max = calc.CalcMeleeAttack(p.Level, *skill, 0)
	} else {
		min, max = 1, 1
	}
	dmg := max
	if min > 0 {
		dmg = (min + max) / 2
	}
	p.InCombatUntil = now + 10
	p.AttackCooldownUntil = now + 4

	w.damageCreature(target, dmg)
	return dmg, p.AttackTargetID, nil
}

func chebyshevDistance(a, b model.Position) int32 {
	dx := int32(a.X) - int32(b.X)
	if dx < 0 {
		dx = -dx
	}
	dy := int32(a.Y) - int32(b.Y)
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// resolveCreaturePosition looks up a creature by shared id across
// players/NPCs/monsters. Caller must hold mu.
func (w *World) resolveCreaturePosition(id model.CreatureId) (model.CreatureId, model.Position, bool) {
	if m, ok := w.monsters[id]; ok {
		return id, m.Position, m.Health > 0
	}
	if n, ok := w.npcs[id]; ok {
		return id, n.Position, true
	}
	if p, ok := w.players[model.PlayerId(id)]; ok {
		return id, p.Position, p.Health > 0
	}
	return 0, model.Position{}, false
}

// damageCreature applies raw damage to whichever creature kind id names.
// Caller must hold mu.
func (w *World) damageCreature(id model.CreatureId, amount int32) {
	if amount <= 0 {
		return
	}
	if m, ok := w.monsters[id]; ok {
		if uint32(amount) >= m.Health {
			m.Health = 0
		} else {
			m.Health -= uint32(amount)
		}
		return
	}
	if p, ok := w.players[model.PlayerId(id)]; ok {
		if uint32(amount) >= p.Health {
			p.Health = 0
		} else {
			p.Health -= uint32(amount)
		}
		p.InCombatUntil = 10
	}
}
