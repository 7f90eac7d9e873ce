// Package replay implements GlobalTickReplayHistory: a bounded ring of
// frozen per-tick Outcomes that session loops replay to catch each viewer
// up between packet reads (spec.md §4.7). Grounded on the donor's
// internal/world state-snapshot discipline, generalized from "no locking
// needed, single goroutine" to the explicit sync.RWMutex spec.md §5
// requires so catch-up reads never serialize against each other.
package replay

import (
	"sync"

	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/worldstate"
)

// HistoryTicks is GLOBAL_REPLAY_HISTORY_TICKS.
const HistoryTicks = 64

// TickOutcome is one frozen record of everything a tick produced.
type TickOutcome struct {
	Tick model.GameTick

	Conditions    []worldstate.ConditionOutcome
	StatusUpdates []worldstate.StatusEffectOutcome
	SkillOutcomes []worldstate.SkillOutcome
	NPCMoves      []worldstate.MonsterMoveOutcome
	MonsterMoves  []worldstate.MonsterMoveOutcome
	MonsterCombat []worldstate.MonsterCombatOutcome
	MapRefreshes  []worldstate.MapRefreshOutcome
	RaidSpawns    []worldstate.RaidOutcome
	HouseEvents   []worldstate.HouseOutcome
}

// History is a bounded ring buffer of the most recent HistoryTicks
// TickOutcomes.
type History struct {
	mu      sync.RWMutex
	entries [HistoryTicks]TickOutcome
	count   int
	next    int // write cursor
	oldest  model.GameTick
	newest  model.GameTick
}

// NewHistory builds an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records a new tick outcome, evicting the oldest entry once the
// ring is full.
func (h *History) Append(o TickOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.next] = o
	h.next = (h.next + 1) % HistoryTicks
	if h.count < HistoryTicks {
		h.count++
	}
	if h.count == 1 {
		h.oldest = o.Tick
	} else if h.count == HistoryTicks {
		// the slot we just overwrote was the previous oldest
		h.oldest = h.entries[h.next].Tick
	}
	h.newest = o.Tick
}

// Gap is returned by Since when lastApplied predates the oldest retained
// entry: the caller has fallen further behind than the ring can replay.
type Gap struct {
	OldestAvailable model.GameTick
}

// Since returns every retained entry with tick in (lastApplied, now], in
// tick order, or a Gap if lastApplied is older than the oldest entry.
func (h *History) Since(lastApplied, now model.GameTick) ([]TickOutcome, *Gap) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return nil, nil
	}
	if lastApplied+1 < h.oldest {
		return nil, &Gap{OldestAvailable: h.oldest}
	}

	var out []TickOutcome
	start := (h.next - h.count + HistoryTicks) % HistoryTicks
	for i := 0; i < h.count; i++ {
		idx := (start + i) % HistoryTicks
		e := h.entries[idx]
		if e.Tick > lastApplied && e.Tick <= now {
			out = append(out, e)
		}
	}
	return out, nil
}

// Newest returns the most recently appended tick number, or 0 if empty.
func (h *History) Newest() model.GameTick {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.newest
}
