package worldstate

import (
	"errors"

	"github.com/tibiaserver/server/internal/model"
)

// ErrMovementCooldown is returned by MovePlayer when the caller moved too
// recently (spec.md §4.5: "Err(\"movement blocked: cooldown\")").
var ErrMovementCooldown = errors.New("movement blocked: cooldown")

// MoveCooldownTicks is the minimum number of ticks between accepted player
// steps. Grounded on the walk-speed-independent throttle the donor applies
// via PlayerInfo.LastMoveTime, reworked into tick units.
const MoveCooldownTicks model.GameTick = 2

// MoveOutcome reports what changed so the session loop can choose between
// an incremental creature-move packet and a full resync.
type MoveOutcome struct {
	From         model.Position
	To           model.Position
	FloorChanged bool
	MovingUp     bool
}

// MovePlayer steps a player one tile in direction, applying the movement
// cooldown, updating position, AOI membership, and PZ/no-logout combat
// state (clearing InCombatUntil if the destination is protected).
func (w *World) MovePlayer(id model.PlayerId, dir model.Direction, now model.GameTick) (MoveOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return MoveOutcome{}, errors.New("move_player: unknown player")
	}
	if now < p.MoveCooldownUntil {
		return MoveOutcome{}, ErrMovementCooldown
	}

	from := p.Position
	to := from.Step(dir)
	p.Direction = dir
	p.Position = to
	p.MoveCooldownUntil = now + MoveCooldownTicks
	p.Autowalk.Steps = nil

	w.aoi.Move(uint64(id), to)

	dest := w.tileAt(to)
	if dest.Protection {
		p.InCombatUntil = 0
	}

	return MoveOutcome{
		From:         from,
		To:           to,
		FloorChanged: from.Z != to.Z,
		MovingUp:     to.Z < from.Z,
	}, nil
}

// TurnPlayer changes facing without moving.
func (w *World) TurnPlayer(id model.PlayerId, dir model.Direction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return errors.New("turn_player: unknown player")
	}
	p.Direction = dir
	return nil
}

// TeleportPlayerAdmin unconditionally relocates a player, bypassing the
// movement cooldown (spec.md §4.4 Admin{...} outcomes feed this).
func (w *World) TeleportPlayerAdmin(id model.PlayerId, to model.Position) (MoveOutcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return MoveOutcome{}, errors.New("teleport_player_admin: unknown player")
	}
	from := p.Position
	p.Position = to
	w.aoi.Move(uint64(id), to)
	return MoveOutcome{From: from, To: to, FloorChanged: from.Z != to.Z, MovingUp: to.Z < from.Z}, nil
}

// SetAutowalk replaces a player's queued path.
func (w *World) SetAutowalk(id model.PlayerId, steps []model.Direction) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return errors.New("set_autowalk: unknown player")
	}
	p.Autowalk.Steps = steps
	return nil
}

// ClearAutowalk empties a player's queued path.
func (w *World) ClearAutowalk(id model.PlayerId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.players[id]; ok {
		p.Autowalk.Steps = nil
	}
}

// TickAutowalk consumes at most one queued step for id, respecting the
// movement cooldown, and reports whether a step was taken.
func (w *World) TickAutowalk(id model.PlayerId, now model.GameTick) (MoveOutcome, bool, error) {
	w.mu.Lock()
	p, ok := w.players[id]
	if !ok {
		w.mu.Unlock()
		return MoveOutcome{}, false, errors.New("tick_autowalk: unknown player")
	}
	if len(p.Autowalk.Steps) == 0 || now < p.MoveCooldownUntil {
		w.mu.Unlock()
		return MoveOutcome{}, false, nil
	}
	dir := p.Autowalk.Steps[0]
	p.Autowalk.Steps = p.Autowalk.Steps[1:]
	w.mu.Unlock()

	outcome, err := w.MovePlayer(id, dir, now)
	if err != nil {
		return MoveOutcome{}, false, nil
	}
	return outcome, true, nil
}
