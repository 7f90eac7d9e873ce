package session

import (
	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/model"
)

// drainPending flushes every per-player pending queue the world accumulated
// this tick into wire packets (spec.md §4.5's pending-queue discipline).
// Order mirrors the donor's OutputSystem.Update flush: data before skills
// before creature-visible changes before messages, so a client never sees a
// health bar before the number backing it.
func (s *session) drainPending(now model.GameTick) error {
	id := s.playerID

	if s.deps.World.TakePendingDataUpdate(id) {
		if err := s.writePacket(buildPlayerDataPacket(s.player)); err != nil {
			return err
		}
	}

	if skills := s.deps.World.TakePendingSkillUpdate(id); len(skills) > 0 {
		if err := s.writePacket(buildPlayerSkillsPacket(s.player)); err != nil {
			return err
		}
	}

	for _, cid := range s.deps.World.TakePendingTurnUpdates(id) {
		w := codec.NewWriter()
		codec.WriteMoveCreature(w, s.player.Position, 0, s.player.Position)
		_ = cid
		if err := s.writePacket(w.Bytes()); err != nil {
			return err
		}
	}

	for range s.deps.World.TakePendingOutfitUpdates(id) {
		w := codec.NewWriterWithOpcode(codec.OpCreatureOutfit)
		w.WriteU32(uint32(id))
		w.WriteOutfit(s.player.Outfit)
		if err := s.writePacket(w.Bytes()); err != nil {
			return err
		}
	}

	if buddies := s.deps.World.TakePendingBuddyUpdates(id); len(buddies) > 0 {
		if err := s.writePacket(buildBuddyDataPacket(s.player, s.deps.PlayerName)); err != nil {
			return err
		}
	}

	for range s.deps.World.TakePendingPartyUpdates(id) {
		w := codec.NewWriterWithOpcode(codec.OpCreatureParty)
		w.WriteU32(uint32(id))
		w.WriteU8(uint8(s.player.PartyID))
		if err := s.writePacket(w.Bytes()); err != nil {
			return err
		}
	}

	for range s.deps.World.TakePendingTradeUpdates(id) {
		if s.player.TradeState == model.TradeNone {
			if err := s.writePacket([]byte{codec.OpTradeClose}); err != nil {
				return err
			}
		}
	}

	for _, pos := range s.deps.World.TakePendingMapRefreshes(id) {
		w := codec.NewWriter()
		codec.WriteFieldData(w, pos, s.deps.Things)
		if err := s.writePacket(w.Bytes()); err != nil {
			return err
		}
	}

	for _, cid := range s.deps.World.TakeContainerCloses(id) {
		if err := s.writePacket(buildContainerClosePacket(cid)); err != nil {
			return err
		}
	}

	for _, cid := range s.deps.World.CloseOutOfRangeMapContainers(id) {
		if err := s.writePacket(buildContainerClosePacket(cid)); err != nil {
			return err
		}
	}

	for _, mu := range s.deps.World.TakePendingMoveUseOutcomes(id) {
		if mu.Message != "" {
			if err := s.writePacket(buildMessagePacket(mu.Message)); err != nil {
				return err
			}
		}
		if mu.EffectID != 0 {
			w := codec.NewWriterWithOpcode(codec.OpGraphicalEffect)
			w.WritePosition(mu.Position)
			w.WriteU8(uint8(mu.EffectID))
			if err := s.writePacket(w.Bytes()); err != nil {
				return err
			}
		}
		if mu.ContainerUpdate != nil {
			if err := s.writePacket(buildContainerOpenPacket(model.OpenContainer{ID: mu.ContainerUpdate.ContainerID})); err != nil {
				return err
			}
		}
	}

	for _, msg := range s.deps.World.TakePendingMessages(id) {
		if err := s.writePacket(buildMessagePacket(msg.Text)); err != nil {
			return err
		}
	}

	return nil
}

// resolveCreatureHealth looks up a creature id across both the player and
// monster tables, since a melee target can be either.
func (s *session) resolveCreatureHealth(id model.CreatureId) (health, maxHealth uint32, ok bool) {
	if p, found := s.deps.World.Player(model.PlayerId(id)); found {
		return p.Health, p.MaxHealth, true
	}
	if m, found := s.deps.World.Monster(id); found {
		return m.Health, m.MaxHealth, true
	}
	return 0, 0, false
}

// tickAttackAndAutowalk advances this player's own attack cooldown and
// queued walk path once per loop iteration (spec.md §4.6's per-player
// operations that the simulation tick does not itself drive, since combat
// and autowalk pacing are client-initiated rather than world-scheduled).
func (s *session) tickAttackAndAutowalk(now model.GameTick) error {
	if s.player.AttackTargetID != 0 && now >= s.player.AttackCooldownUntil {
		dmg, targetID, err := s.deps.World.TickPlayerAttack(s.playerID, now, s.deps.Calc)
		if err == nil && dmg != 0 {
			health, maxHealth, ok := s.resolveCreatureHealth(targetID)
			if ok {
				if err := s.writePacket(buildHealthPacket(targetID, health, maxHealth)); err != nil {
					return err
				}
			}
		}
	}

	if len(s.player.Autowalk.Steps) > 0 {
		m, moved, err := s.deps.World.TickAutowalk(s.playerID, now)
		if err != nil {
			return err
		}
		if moved {
			if err := s.emitMovement(m); err != nil {
				return err
			}
		}
	}

	return nil
}
