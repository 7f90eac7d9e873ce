package intent

import (
	"testing"

	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/model"
)

func TestDecodeLocationTile(t *testing.T) {
	loc := DecodeLocation(100, 200, 7)
	if loc.Kind != LocationTile {
		t.Fatalf("expected tile location")
	}
	if loc.Position != (model.Position{X: 100, Y: 200, Z: 7}) {
		t.Fatalf("unexpected position: %+v", loc.Position)
	}
}

func TestDecodeLocationInventory(t *testing.T) {
	loc := DecodeLocation(0xFFFF, 5, 0)
	if loc.Kind != LocationInventory || loc.InventorySlot != 5 {
		t.Fatalf("expected inventory slot 5, got %+v", loc)
	}
}

func TestDecodeLocationContainer(t *testing.T) {
	loc := DecodeLocation(0xFFFF, 0x42, 3)
	if loc.Kind != LocationContainer {
		t.Fatalf("expected container location")
	}
	if loc.ContainerID != 2 || loc.ContainerSlot != 3 {
		t.Fatalf("unexpected container decode: %+v", loc)
	}
}

func TestParseLogout(t *testing.T) {
	out := Parse([]byte{codec.OpCLogout}, ParserContext{})
	if out.Kind != OutcomeLogoutAllowed {
		t.Fatalf("expected logout allowed, got %v", out.Kind)
	}
}

func TestParseTalkOrdinary(t *testing.T) {
	w := codec.NewWriterWithOpcode(codec.OpCTalk)
	w.WriteU8(codec.TalkSay)
	w.WriteString("hello world")
	out := Parse(w.Bytes(), ParserContext{SpeakerIsGM: false})
	if out.Kind != OutcomeTalk || out.Text != "hello world" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestParseTalkAdminTokenRejectedForNonGM(t *testing.T) {
	w := codec.NewWriterWithOpcode(codec.OpCTalk)
	w.WriteU8(codec.TalkSay)
	w.WriteString("!shutdown")
	out := Parse(w.Bytes(), ParserContext{SpeakerIsGM: false})
	if out.Kind != OutcomeLog {
		t.Fatalf("expected log rejection, got %v", out.Kind)
	}
}

func TestParseTalkAdminTokenAcceptedForGM(t *testing.T) {
	w := codec.NewWriterWithOpcode(codec.OpCTalk)
	w.WriteU8(codec.TalkSay)
	w.WriteString("!tp 10 20 7")
	out := Parse(w.Bytes(), ParserContext{SpeakerIsGM: true})
	if out.Kind != OutcomeAdmin || out.Admin != AdminTeleport {
		t.Fatalf("expected admin teleport, got %+v", out)
	}
	if out.AdminArgX != 10 || out.AdminArgY != 20 || out.AdminArgZ != 7 {
		t.Fatalf("unexpected teleport args: %+v", out)
	}
}

func TestParseMoveItemBetweenInventoryAndTile(t *testing.T) {
	w := codec.NewWriterWithOpcode(codec.OpCMoveItem)
	w.WriteU16(0xFFFF)
	w.WriteU16(3)
	w.WriteU8(0)
	w.WriteU16(100)
	w.WriteU8(0)
	w.WriteU16(50)
	w.WriteU16(60)
	w.WriteU8(7)
	w.WriteU8(1)
	out := Parse(w.Bytes(), ParserContext{})
	if out.Kind != OutcomeMoveItem {
		t.Fatalf("expected move item outcome, got %v", out.Kind)
	}
	if out.From.Kind != LocationInventory || out.From.InventorySlot != 3 {
		t.Fatalf("unexpected from location: %+v", out.From)
	}
	if out.To.Kind != LocationTile || out.To.Position.X != 50 {
		t.Fatalf("unexpected to location: %+v", out.To)
	}
}

func TestParseRejectsTrailingBytes(t *testing.T) {
	w := codec.NewWriterWithOpcode(codec.OpCLogout)
	w.WriteU8(0xAA)
	out := Parse(w.Bytes(), ParserContext{})
	if out.Kind != OutcomeIgnored {
		t.Fatalf("expected ignored due to trailing bytes, got %v", out.Kind)
	}
}

func TestParseUnknownOpcodeIgnored(t *testing.T) {
	out := Parse([]byte{0xEE}, ParserContext{})
	if out.Kind != OutcomeIgnored {
		t.Fatalf("expected ignored, got %v", out.Kind)
	}
}

func TestParseTurnIsDistinctFromCardinalMove(t *testing.T) {
	turn := Parse([]byte{codec.OpCTurn, uint8(model.DirNorth)}, ParserContext{})
	if turn.Kind != OutcomeMoveUse || !turn.IsTurn {
		t.Fatalf("expected a turn outcome, got %+v", turn)
	}

	move := Parse([]byte{codec.OpCMoveNorth}, ParserContext{})
	if move.Kind != OutcomeMoveUse || move.IsTurn {
		t.Fatalf("expected a cardinal move outcome, got %+v", move)
	}
}
