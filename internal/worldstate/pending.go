package worldstate

import "github.com/tibiaserver/server/internal/model"

// The Take* wrappers below expose model.PendingQueues's FIFO drains
// through the World lock, so session loops never reach into a Player
// struct directly (spec.md §4.5's pending-queue surface).

func (w *World) TakePendingMessages(id model.PlayerId) []model.PendingMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeMessages()
}

func (w *World) TakePendingDataUpdate(id model.PlayerId) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return false
	}
	return p.Pending.TakeDataUpdate()
}

func (w *World) TakePendingSkillUpdate(id model.PlayerId) map[uint8]struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeSkillUpdate()
}

func (w *World) TakePendingTurnUpdates(id model.PlayerId) []model.CreatureId {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeTurnUpdates()
}

func (w *World) TakePendingOutfitUpdates(id model.PlayerId) []model.CreatureId {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeOutfitUpdates()
}

func (w *World) TakePendingBuddyUpdates(id model.PlayerId) []model.PlayerId {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeBuddyUpdates()
}

func (w *World) TakePendingPartyUpdates(id model.PlayerId) []uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakePartyUpdates()
}

func (w *World) TakePendingTradeUpdates(id model.PlayerId) []model.PlayerId {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeTradeUpdates()
}

func (w *World) TakePendingMapRefreshes(id model.PlayerId) []model.Position {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeMapRefreshes()
}

func (w *World) TakeContainerCloses(id model.PlayerId) []model.ContainerId {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeContainerCloses()
}

func (w *World) TakePendingMoveUseOutcomes(id model.PlayerId) []model.MoveUseOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	return p.Pending.TakeMoveUseOutcomes()
}
