package replay

import (
	"testing"

	"github.com/tibiaserver/server/internal/model"
)

func TestAppendAndSinceInOrder(t *testing.T) {
	h := NewHistory()
	for i := model.GameTick(1); i <= 5; i++ {
		h.Append(TickOutcome{Tick: i})
	}
	out, gap := h.Since(2, 5)
	if gap != nil {
		t.Fatalf("unexpected gap: %+v", gap)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	for i, o := range out {
		if o.Tick != model.GameTick(3+i) {
			t.Fatalf("expected tick %d at index %d, got %d", 3+i, i, o.Tick)
		}
	}
}

func TestEvictionReportsGap(t *testing.T) {
	h := NewHistory()
	for i := model.GameTick(1); i <= HistoryTicks+10; i++ {
		h.Append(TickOutcome{Tick: i})
	}
	_, gap := h.Since(0, HistoryTicks+10)
	if gap == nil {
		t.Fatalf("expected gap after eviction")
	}
	if gap.OldestAvailable != 11 {
		t.Fatalf("expected oldest available 11, got %d", gap.OldestAvailable)
	}
}

func TestNewestTracksLastAppend(t *testing.T) {
	h := NewHistory()
	h.Append(TickOutcome{Tick: 1})
	h.Append(TickOutcome{Tick: 2})
	if h.Newest() != 2 {
		t.Fatalf("expected newest 2, got %d", h.Newest())
	}
}
