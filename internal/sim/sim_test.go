package sim

import (
	"testing"
	"time"

	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/replay"
	"github.com/tibiaserver/server/internal/worldstate"
)

func TestRunnerExecutesSystemsInPhaseOrder(t *testing.T) {
	w := worldstate.New()
	history := replay.NewHistory()
	runner := NewRunner(history)

	runner.Register(&CronSystem{World: w})
	runner.Register(&ConditionsSystem{World: w})
	runner.Register(&MapRefreshSystem{World: w})

	var order []Phase
	runner.Register(recordingSystem{phase: PhaseHouses, record: &order})
	runner.Register(recordingSystem{phase: PhaseConditions, record: &order})

	runner.Tick(100 * time.Millisecond)

	if runner.CurrentTick() != 1 {
		t.Fatalf("expected tick 1, got %d", runner.CurrentTick())
	}
	if history.Newest() != 1 {
		t.Fatalf("expected history newest 1, got %d", history.Newest())
	}
	if len(order) != 2 || order[0] != PhaseConditions || order[1] != PhaseHouses {
		t.Fatalf("expected recording systems to run as [Conditions Houses], got %v", order)
	}
}

type recordingSystem struct {
	phase  Phase
	record *[]Phase
}

func (r recordingSystem) Phase() Phase { return r.phase }
func (r recordingSystem) Update(now model.GameTick, dt time.Duration, out *replay.TickOutcome) {
	*r.record = append(*r.record, r.phase)
}

func TestTickPhaseDoesNotAdvanceGlobalTick(t *testing.T) {
	w := worldstate.New()
	history := replay.NewHistory()
	runner := NewRunner(history)
	runner.Register(&ConditionsSystem{World: w})

	runner.TickPhase(PhaseConditions, 5, 100*time.Millisecond)

	if runner.CurrentTick() != 0 {
		t.Fatalf("expected TickPhase not to advance the global tick, got %d", runner.CurrentTick())
	}
	if history.Newest() != 0 {
		t.Fatalf("expected TickPhase not to write replay history")
	}
}
