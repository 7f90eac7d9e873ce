package session

import (
	"testing"

	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/model"
)

func TestPackPlayerStateBits(t *testing.T) {
	p := &model.Player{}
	if v, _ := packPlayerState(p); v != 0 {
		t.Fatalf("expected zero state for a fresh player, got %#x", v)
	}

	p.PoisonTicks = 4
	p.BurningTicks = 2
	p.InCombatUntil = 100
	v, _ := packPlayerState(p)
	want := stateBitPoisoned | stateBitBurning | stateBitInCombat
	if v != want {
		t.Fatalf("state = %#x, want %#x", v, want)
	}

	p.PoisonTicks = 0
	v, _ = packPlayerState(p)
	if v&stateBitPoisoned != 0 {
		t.Fatalf("poison bit still set after PoisonTicks reached zero")
	}
}

func TestParseGameLoginHappyPath(t *testing.T) {
	w := codec.NewWriterWithOpcode(codec.OpCGameLogin)
	w.WriteU16(0)    // os
	w.WriteU16(860)  // version
	w.WriteString("account1")
	w.WriteString("secret")
	w.WriteString("Hero")

	name, err := parseGameLogin(w.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Hero" {
		t.Fatalf("name = %q, want Hero", name)
	}
}

func TestParseGameLoginRejectsWrongOpcode(t *testing.T) {
	w := codec.NewWriterWithOpcode(codec.OpCLogout)
	if _, err := parseGameLogin(w.Bytes()); err == nil {
		t.Fatalf("expected error for non-GameLogin opcode")
	}
}

func TestParseGameLoginRejectsEmptyName(t *testing.T) {
	w := codec.NewWriterWithOpcode(codec.OpCGameLogin)
	w.WriteU16(0)
	w.WriteU16(860)
	w.WriteString("account1")
	w.WriteString("secret")
	w.WriteString("")

	if _, err := parseGameLogin(w.Bytes()); err == nil {
		t.Fatalf("expected error for empty character name")
	}
}
