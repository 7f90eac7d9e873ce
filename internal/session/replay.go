package session

import (
	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/replay"
	"github.com/tibiaserver/server/internal/worldstate"
)

// applyReplayEntry translates one tick's worth of world-mutation outcomes
// into the packets this viewer needs (spec.md §4.8 step 3). Only entries
// relevant to the viewer's own player or visible creatures produce
// output; everything else is a no-op for this connection.
func (s *session) applyReplayEntry(e replay.TickOutcome) error {
	for _, c := range e.Conditions {
		if c.PlayerID != s.playerID {
			continue
		}
		if err := s.writePacket(buildHealthPacket(model.CreatureId(c.PlayerID), s.player.Health, s.player.MaxHealth)); err != nil {
			return err
		}
	}
	for _, su := range e.StatusUpdates {
		if su.PlayerID != s.playerID {
			continue
		}
		if err := s.writePacket(buildPlayerDataPacket(s.player)); err != nil {
			return err
		}
	}
	for _, so := range e.SkillOutcomes {
		if so.PlayerID != s.playerID {
			continue
		}
		if err := s.writePacket(buildPlayerSkillsPacket(s.player)); err != nil {
			return err
		}
	}
	for _, mc := range e.MonsterCombat {
		if mc.TargetID != model.CreatureId(s.playerID) {
			continue
		}
		if err := s.writePacket(buildHealthPacket(mc.TargetID, s.player.Health, s.player.MaxHealth)); err != nil {
			return err
		}
	}
	if err := s.applyCreatureMoves(e.MonsterMoves); err != nil {
		return err
	}
	if err := s.applyCreatureMoves(e.NPCMoves); err != nil {
		return err
	}
	for _, mr := range e.MapRefreshes {
		if !mr.Position.InViewport(s.player.Position) {
			continue
		}
		w := codec.NewWriter()
		codec.WriteFieldData(w, mr.Position, s.deps.Things)
		if err := s.writePacket(w.Bytes()); err != nil {
			return err
		}
	}

	for _, msg := range s.deps.World.TakePendingMessages(s.playerID) {
		if err := s.writePacket(buildMessagePacket(msg.Text)); err != nil {
			return err
		}
	}
	return nil
}

// applyCreatureMoves emits an incremental move packet for each creature
// move that touches the viewer's current viewport.
func (s *session) applyCreatureMoves(moves []worldstate.MonsterMoveOutcome) error {
	for _, mm := range moves {
		if !mm.To.InViewport(s.player.Position) && !mm.From.InViewport(s.player.Position) {
			continue
		}
		w := codec.NewWriter()
		codec.WriteMoveCreature(w, mm.From, 0, mm.To)
		if err := s.writePacket(w.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func buildHealthPacket(id model.CreatureId, health, maxHealth uint32) []byte {
	w := codec.NewWriterWithOpcode(codec.OpCreatureHealth)
	w.WriteU32(uint32(id))
	w.WriteU8(model.HealthPercent(health, maxHealth))
	return w.Bytes()
}
