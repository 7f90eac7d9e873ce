package codec

import (
	"testing"

	"github.com/tibiaserver/server/internal/model"
)

func TestPrimitivesRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU8(0x42)
	w.WriteU16(0x1234)
	w.WriteU32(0xDEADBEEF)
	w.WriteU64(0x0102030405060708)
	w.WriteString("hello")

	data := append([]byte{0x99}, w.Bytes()...)
	r := NewReader(data)
	if r.Opcode() != 0x99 {
		t.Fatalf("opcode mismatch")
	}
	if got := r.ReadU8(); got != 0x42 {
		t.Fatalf("u8 mismatch: %x", got)
	}
	if got := r.ReadU16(); got != 0x1234 {
		t.Fatalf("u16 mismatch: %x", got)
	}
	if got := r.ReadU32(); got != 0xDEADBEEF {
		t.Fatalf("u32 mismatch: %x", got)
	}
	if got := r.ReadU64(); got != 0x0102030405060708 {
		t.Fatalf("u64 mismatch: %x", got)
	}
	if got := r.ReadString(); got != "hello" {
		t.Fatalf("string mismatch: %q", got)
	}
}

func TestOutfitRoundTrip(t *testing.T) {
	cases := []model.Outfit{
		{LookType: 128, Head: 1, Body: 2, Legs: 3, Feet: 4, Addons: 1},
		{LookType: 0, LookItem: 2000},
	}
	for _, o := range cases {
		w := NewWriter()
		w.WriteOutfit(o)
		r := NewReader(append([]byte{0}, w.Bytes()...))
		got := r.ReadOutfit()
		if got != o {
			t.Fatalf("outfit mismatch: got %+v want %+v", got, o)
		}
	}
}

func TestHealthPercent(t *testing.T) {
	cases := []struct {
		health, max uint32
		want        uint8
	}{
		{50, 100, 50},
		{100, 100, 100},
		{150, 100, 100},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := model.HealthPercent(c.health, c.max); got != c.want {
			t.Fatalf("HealthPercent(%d,%d) = %d, want %d", c.health, c.max, got, c.want)
		}
	}
}

func TestFloorRangeUndergroundAndSurface(t *testing.T) {
	start, end, step := model.FloorRange(10)
	if start != 8 || end != 12 || step != 1 {
		t.Fatalf("underground floor range wrong: %d %d %d", start, end, step)
	}
	start, end, step = model.FloorRange(5)
	if start != 7 || end != 0 || step != -1 {
		t.Fatalf("surface floor range wrong: %d %d %d", start, end, step)
	}
}

func TestFloorRangeCapsAtMaxFloor(t *testing.T) {
	start, end, step := model.FloorRange(14)
	if start != 12 || end != model.MaxFloor || step != 1 {
		t.Fatalf("capped floor range wrong: %d %d %d", start, end, step)
	}
}

func TestMapOriginSaturatesAtEdges(t *testing.T) {
	origin := model.MapOrigin(model.Position{X: 2, Y: 1, Z: 7})
	if origin.X != 0 || origin.Y != 0 {
		t.Fatalf("expected saturated origin, got %+v", origin)
	}
}

func TestStackPositionOrdering(t *testing.T) {
	ids := []model.CreatureId{5, 9, 20}
	if pos := model.StackPosition(3, ids, 9); pos != 4 {
		t.Fatalf("expected stack pos 4, got %d", pos)
	}
	if pos := model.StackPosition(3, ids, 999); pos != -1 {
		t.Fatalf("expected -1 for absent creature, got %d", pos)
	}
}

func TestWriteMapDescriptionEmptyViewport(t *testing.T) {
	w := NewWriter()
	center := model.Position{X: 100, Y: 100, Z: 7}
	WriteMapDescription(w, center, func(model.Position) []MapThing { return nil })
	if len(w.Bytes()) == 0 {
		t.Fatalf("expected non-empty packet")
	}
	if w.Bytes()[0] != OpMapDescription {
		t.Fatalf("expected opcode 0x64, got %x", w.Bytes()[0])
	}
}

func TestWriteMapDescriptionSkipRunSaturates(t *testing.T) {
	w := NewWriter()
	center := model.Position{X: 100, Y: 100, Z: 7}
	WriteMapDescription(w, center, func(model.Position) []MapThing { return nil })
	r := NewReader(w.Bytes())
	_ = r.ReadPosition()
	skip := r.ReadU16()
	if skip&skipRunMask != skipRunMask {
		t.Fatalf("expected skip-run marker, got %x", skip)
	}
	if int(skip&0xFF) > model.MapWidth*model.MapHeight-1 && skip&0xFF != 0xFF {
		t.Fatalf("skip count should saturate at 255, got %d", skip&0xFF)
	}
}

func TestWriteMapThingSingleItemThenSkip(t *testing.T) {
	w := NewWriter()
	center := model.Position{X: 100, Y: 100, Z: 7}
	target := model.MapOrigin(center)
	WriteMapDescription(w, center, func(p model.Position) []MapThing {
		if p == target {
			return []MapThing{{Item: model.ItemStack{TypeID: 123}}}
		}
		return nil
	})
	r := NewReader(w.Bytes())
	_ = r.ReadPosition()
	// first floor starts at z=7..0 (surface); first tile should hold our item.
	typeID := r.ReadU16()
	if typeID != 123 {
		t.Fatalf("expected item type 123 at origin, got %d", typeID)
	}
}
