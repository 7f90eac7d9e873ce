package worldstate

import (
	"testing"

	"github.com/tibiaserver/server/internal/model"
)

func newTestPlayer(id model.PlayerId, name string, pos model.Position) *model.Player {
	return &model.Player{
		ID:        id,
		Name:      name,
		Health:    100,
		MaxHealth: 100,
		Mana:      50,
		MaxMana:   50,
		Position:  pos,
		Skills:    map[uint8]*model.Skill{0: {Level: 10}},
	}
}

func TestSpawnAndRemove(t *testing.T) {
	w := New()
	p := newTestPlayer(1, "Hero", model.Position{X: 100, Y: 100, Z: 7})
	w.Spawn(p, 0)

	got, ok := w.Player(1)
	if !ok || got.Name != "Hero" {
		t.Fatalf("expected spawned player, got %+v ok=%v", got, ok)
	}

	w.Remove(1, 10, true)
	if _, ok := w.Player(1); ok {
		t.Fatalf("expected player removed from live world")
	}
}

func TestMovePlayerRespectsCooldown(t *testing.T) {
	w := New()
	p := newTestPlayer(1, "Hero", model.Position{X: 100, Y: 100, Z: 7})
	w.Spawn(p, 0)

	if _, err := w.MovePlayer(1, model.DirEast, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.MovePlayer(1, model.DirEast, 1); err != ErrMovementCooldown {
		t.Fatalf("expected cooldown error, got %v", err)
	}
	if _, err := w.MovePlayer(1, model.DirEast, MoveCooldownTicks); err != nil {
		t.Fatalf("expected move allowed after cooldown, got %v", err)
	}
}

func TestMovePlayerClearsCombatOnProtection(t *testing.T) {
	w := New()
	p := newTestPlayer(1, "Hero", model.Position{X: 100, Y: 100, Z: 7})
	p.InCombatUntil = 999
	w.Spawn(p, 0)
	w.WithLock(func() {
		w.tileAt(model.Position{X: 101, Y: 100, Z: 7}).Protection = true
	})

	if _, err := w.MovePlayer(1, model.DirEast, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := w.Player(1)
	if got.InCombatUntil != 0 {
		t.Fatalf("expected combat cleared on protection tile, got %d", got.InCombatUntil)
	}
}

func TestOpenAndCloseContainer(t *testing.T) {
	w := New()
	p := newTestPlayer(1, "Hero", model.Position{})
	w.Spawn(p, 0)

	cid, err := w.OpenContainerForPlayer(1, model.OpenContainer{SourceIsInventory: true, InventorySlot: model.SlotBackpack})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.CloseContainerForPlayer(1, cid); err != nil {
		t.Fatalf("unexpected error closing: %v", err)
	}
	if err := w.CloseContainerForPlayer(1, cid); err != ErrNoSuchContainer {
		t.Fatalf("expected ErrNoSuchContainer on double close, got %v", err)
	}
}

func TestPartyInviteJoinLeave(t *testing.T) {
	w := New()
	w.Spawn(newTestPlayer(1, "Leader", model.Position{}), 0)
	w.Spawn(newTestPlayer(2, "Member", model.Position{}), 0)

	partyID, err := w.PartyInvite(1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.PartyJoin(partyID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.PartyLeave(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	member, _ := w.Player(2)
	if member.PartyID != 0 {
		t.Fatalf("expected party id cleared after leave")
	}
}

func TestTradeAcceptBothSidesSwaps(t *testing.T) {
	w := New()
	w.Spawn(newTestPlayer(1, "A", model.Position{}), 0)
	w.Spawn(newTestPlayer(2, "B", model.Position{}), 0)
	w.WithLock(func() {
		w.tileAt(model.Position{X: 5, Y: 5, Z: 7}).Items = []model.ItemStack{{TypeID: 100, Count: 1}}
	})

	if err := w.TradeRequest(1, 2, model.Position{X: 5, Y: 5, Z: 7}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	accepted, err := w.TradeAccept(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted {
		t.Fatalf("expected trade pending after one side accepts")
	}
	accepted, err = w.TradeAccept(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !accepted {
		t.Fatalf("expected trade resolved after both sides accept")
	}
}

func TestTickMapRefreshClearsDecayedItems(t *testing.T) {
	w := New()
	pos := model.Position{X: 1, Y: 1, Z: 7}
	w.WithLock(func() {
		tile := w.tileAt(pos)
		tile.Refresh = true
		tile.Items = []model.ItemStack{{TypeID: 1, Count: 1}}
	})
	out := w.TickMapRefresh(0)
	if len(out) != 1 || out[0].Position != pos {
		t.Fatalf("expected one refresh outcome at %+v, got %+v", pos, out)
	}
	if len(w.Tile(pos).Items) != 0 {
		t.Fatalf("expected tile items cleared")
	}
}

func TestCastSpellWordsRejectsUnknownSpell(t *testing.T) {
	w := New()
	w.Spawn(newTestPlayer(1, "Hero", model.Position{}), 0)
	_, err := w.CastSpellWords(1, "exori", model.DirNorth, 0, func(string) (model.Spell, bool) {
		return model.Spell{}, false
	}, nil)
	if err != ErrUnknownSpell {
		t.Fatalf("expected ErrUnknownSpell, got %v", err)
	}
}
