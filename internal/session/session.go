// Package session runs one connection's setup-then-loop lifecycle
// (spec.md §4.8): decode the GameLogin packet, spawn the player, then
// repeatedly read a client packet, catch the viewer up on replay history,
// dispatch the decoded intent, apply movement, drain pending queues, and
// keep the connection alive with a periodic ping. Grounded on the donor's
// internal/system/input.go InputSystem.Update drain loop, restructured
// from "one system iterating every session" into "one goroutine per
// connection" (spec.md §5).
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/intent"
	"github.com/tibiaserver/server/internal/login"
	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/replay"
	"github.com/tibiaserver/server/internal/transport"
	"github.com/tibiaserver/server/internal/worldstate"
)

// Config controls the loop's timing, sourced from config.NetworkConfig.
type Config struct {
	TickLength    time.Duration
	IdleWarnAfter time.Duration
	ReadTimeout   time.Duration
	PingInterval  time.Duration
}

// CharacterStore is the external persistence collaborator (spec.md §1):
// loading and saving a character's full record is referenced, not
// specified, here. Backed by internal/persist in production.
type CharacterStore interface {
	LoadCharacter(name string) (*model.Player, error)
	SaveCharacter(p *model.Player) error
}

// ThingsLookup exposes the world's per-tile rendering to the viewport
// serializer; an alias of codec.ThingsAt so a Deps.Things value can be
// passed directly into codec.Write* without a wrapping closure.
type ThingsLookup = codec.ThingsAt

// SpellLookup resolves normalized spell words to a definition (an
// external content-loader concern, spec.md §1).
type SpellLookup func(normalizedWords string) (model.Spell, bool)

// ShopCatalog resolves an NPC's current buy/sell offers.
type ShopCatalog func(npcID model.CreatureId) []worldstate.ShopOffer

// Deps bundles every collaborator a session needs beyond the wire itself.
type Deps struct {
	World       *worldstate.World
	History     *replay.History
	Logins      *login.SelectionRegistry
	Characters  CharacterStore
	Things      ThingsLookup
	SpellLookup SpellLookup
	Calc        worldstate.DamageCalculator
	Catalog     ShopCatalog
	Now         func() model.GameTick
	HasFunds    func(model.PlayerId, int32) bool
	Spend       func(model.PlayerId, int32)
	Credit      func(model.PlayerId, int32)
	PlayerName  func(model.CreatureId) (string, bool)
	Log         *zap.Logger
	Shutdown    func(reason string)
}

var (
	errNoSelection     = errors.New("session: no pending login selection for this address")
	errUnknownCharacter = errors.New("session: selection does not include that character")
)

// session is the mutable per-connection state the loop closes over.
type session struct {
	conn   transport.Conn
	cfg    Config
	deps   Deps
	peerIP string

	playerID model.PlayerId
	player   *model.Player

	lastAppliedTick model.GameTick
	lastPacketAt    time.Time
	idleWarned      bool
	lastPing        time.Time

	havePlayerState bool
	lastPlayerState uint8

	saved bool
}

// Run drives one connection end to end: setup, then the loop body, until
// disconnect, logout, or an admin-triggered shutdown closes it.
func Run(ctx context.Context, conn transport.Conn, peerIP string, cfg Config, deps Deps) error {
	s := &session{conn: conn, cfg: cfg, deps: deps, peerIP: peerIP, lastPacketAt: time.Now(), lastPing: time.Now()}

	if err := s.setup(ctx); err != nil {
		return err
	}
	defer s.teardown()

	for {
		done, err := s.step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// setup implements spec.md §4.8's Setup sequence.
func (s *session) setup(ctx context.Context) error {
	readCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	payload, err := s.conn.ReadPacket(readCtx)
	cancel()
	if err != nil {
		return err
	}

	name, err := parseGameLogin(payload)
	if err != nil {
		return err
	}

	sel, ok := s.deps.Logins.Take(s.peerIP)
	if !ok {
		return errNoSelection
	}
	var found bool
	for _, c := range sel.Characters {
		if c.Name == name {
			found = true
			break
		}
	}
	if !found {
		return errUnknownCharacter
	}

	player, err := s.deps.Characters.LoadCharacter(name)
	if err != nil {
		return err
	}
	player.Premium = sel.Premium
	player.GM = sel.GM
	player.TestGod = sel.TestGod

	s.player = player
	s.playerID = player.ID

	now := s.deps.Now()
	s.deps.World.Spawn(player, now)
	s.lastAppliedTick = now

	return s.sendWelcome()
}

// sendWelcome writes the full init/rights/light/map/player/skills/
// inventory/buddy/container-reopen burst spec.md §4.8 names.
func (s *session) sendWelcome() error {
	p := s.player

	if err := s.writePacket(buildInitPacket(p.ID)); err != nil {
		return err
	}
	if err := s.writePacket(buildRightsPacket(p.GM)); err != nil {
		return err
	}
	if err := s.writePacket(buildWorldLightPacket()); err != nil {
		return err
	}

	w := codec.NewWriter()
	codec.WriteMapDescription(w, p.Position, s.deps.Things)
	if err := s.writePacket(w.Bytes()); err != nil {
		return err
	}

	if err := s.writePacket(buildPlayerDataPacket(p)); err != nil {
		return err
	}
	if err := s.writePacket(buildPlayerSkillsPacket(p)); err != nil {
		return err
	}
	for slot := 0; slot < model.NumInventorySlots; slot++ {
		if err := s.writePacket(buildInventorySlotPacket(model.InventorySlot(slot), p.Inventory[slot])); err != nil {
			return err
		}
	}
	if err := s.writePacket(buildBuddyDataPacket(p, s.deps.PlayerName)); err != nil {
		return err
	}
	for _, oc := range p.OpenContainers {
		if err := s.writePacket(buildContainerOpenPacket(*oc)); err != nil {
			return err
		}
	}

	if state, ok := packPlayerState(p); ok {
		s.lastPlayerState = state
		s.havePlayerState = true
		if err := s.writePacket(buildPlayerStatePacket(state)); err != nil {
			return err
		}
	}
	return nil
}

// step runs one iteration of the nine-numbered loop body and reports
// whether the session is finished.
func (s *session) step(ctx context.Context) (bool, error) {
	// 1. idle warning / timeout.
	idleFor := time.Since(s.lastPacketAt)
	if idleFor > s.cfg.ReadTimeout {
		return true, errors.New("session: idle timeout")
	}
	if idleFor > s.cfg.IdleWarnAfter && !s.idleWarned {
		s.idleWarned = true
		_ = s.writePacket(buildMessagePacket("You have been idle for a while."))
	}

	// 2. read one packet, bounded by tick length.
	readCtx, cancel := context.WithTimeout(ctx, s.cfg.TickLength)
	payload, err := s.conn.ReadPacket(readCtx)
	cancel()
	var packetArrived bool
	switch {
	case err == nil:
		packetArrived = true
		s.lastPacketAt = time.Now()
		s.idleWarned = false
	case errors.Is(err, transport.ErrTimeout):
		// no packet this tick; fall through to catch-up/ticking.
	default:
		return true, err
	}

	// 3. replay catch-up.
	now := s.deps.Now()
	entries, gap := s.deps.History.Since(s.lastAppliedTick, now)
	if gap != nil {
		w := codec.NewWriter()
		codec.WriteMapDescription(w, s.player.Position, s.deps.Things)
		if err := s.writePacket(w.Bytes()); err != nil {
			return true, err
		}
		s.lastAppliedTick = gap.OldestAvailable - 1
		entries, _ = s.deps.History.Since(s.lastAppliedTick, now)
	}
	for _, e := range entries {
		if err := s.applyReplayEntry(e); err != nil {
			return true, err
		}
	}
	s.lastAppliedTick = now

	// 4. dispatch the decoded intent, if any.
	if packetArrived {
		out := intent.Parse(payload, intent.ParserContext{SpeakerIsGM: s.player.GM})
		done, err := s.dispatch(out, now)
		if err != nil {
			return true, err
		}
		if done {
			return true, nil
		}
	}

	// 5/6/7 — movement deltas, pending-queue drain, attack/autowalk tick.
	if err := s.drainPending(now); err != nil {
		return true, err
	}
	if err := s.tickAttackAndAutowalk(now); err != nil {
		return true, err
	}

	// 8. keepalive ping.
	if time.Since(s.lastPing) >= s.cfg.PingInterval {
		s.lastPing = time.Now()
		if err := s.writePacket(buildPingPacket()); err != nil {
			return true, err
		}
	}

	if state, ok := packPlayerState(s.player); ok && (!s.havePlayerState || state != s.lastPlayerState) {
		s.havePlayerState = true
		s.lastPlayerState = state
		if err := s.writePacket(buildPlayerStatePacket(state)); err != nil {
			return true, err
		}
	}

	return false, nil
}

func (s *session) teardown() {
	if s.player == nil {
		return
	}
	now := s.deps.Now()
	if !s.saved {
		if err := s.deps.Characters.SaveCharacter(s.player); err == nil {
			s.saved = true
		}
	}
	s.deps.World.TradeClose(s.playerID)
	_ = s.deps.World.PartyLeave(s.playerID)
	s.deps.World.Remove(s.playerID, now, s.saved)
}

func (s *session) writePacket(payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TickLength)
	defer cancel()
	return s.conn.WritePacket(ctx, payload)
}
