package system

import (
	"fmt"
	"time"
)

// Runner holds systems bucketed by phase. A frame walks the buckets in
// phase order; within a bucket systems run in registration order.
type Runner struct {
	phases [phaseCount][]System
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to the bucket of its phase. It panics on a phase outside
// the declared range, which is a programming error.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || int(p) >= phaseCount {
		panic(fmt.Sprintf("system: register %T with invalid phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
}

// Tick runs one full frame.
func (r *Runner) Tick(dt time.Duration) {
	for _, bucket := range r.phases {
		for _, s := range bucket {
			s.Update(dt)
		}
	}
}

// TickPhase runs only the named phases, still in phase order whatever order
// they are given in. Outside Playing the frame dispatches events and
// renders but must not spawn, integrate or collide.
func (r *Runner) TickPhase(dt time.Duration, phases ...Phase) {
	var want [phaseCount]bool
	for _, p := range phases {
		if p >= 0 && int(p) < phaseCount {
			want[p] = true
		}
	}
	for p, bucket := range r.phases {
		if !want[p] {
			continue
		}
		for _, s := range bucket {
			s.Update(dt)
		}
	}
}
