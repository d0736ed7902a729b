package system

import (
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r *recorder) Phase() Phase { return r.phase }

func (r *recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorder{"render", PhaseOutput, &log})
	r.Register(&recorder{"spawn", PhaseSpawn, &log})
	r.Register(&recorder{"trail", PhaseTrail, &log})
	r.Register(&recorder{"particles", PhaseEffects, &log})
	r.Register(&recorder{"popups", PhaseEffects, &log})

	r.Tick(time.Second / 60)

	want := []string{"trail", "spawn", "particles", "popups", "render"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
}

func TestTickPhaseRunsOnlySelectedPhases(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorder{"render", PhaseOutput, &log})
	r.Register(&recorder{"physics", PhasePhysics, &log})
	r.Register(&recorder{"dispatch", PhaseDispatch, &log})

	r.TickPhase(time.Second/60, PhaseOutput, PhaseDispatch)

	if len(log) != 2 || log[0] != "dispatch" || log[1] != "render" {
		t.Fatalf("ran %v, want [dispatch render]", log)
	}
}

func TestRegisterAfterTickKeepsPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorder{"render", PhaseOutput, &log})
	r.Tick(time.Second / 60)
	r.Register(&recorder{"physics", PhasePhysics, &log})

	log = log[:0]
	r.Tick(time.Second / 60)
	if len(log) != 2 || log[0] != "physics" || log[1] != "render" {
		t.Fatalf("ran %v, want [physics render]", log)
	}
}

func TestRegisterRejectsUnknownPhase(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("phase out of range accepted")
		}
	}()
	var log []string
	NewRunner().Register(&recorder{"bogus", Phase(42), &log})
}
