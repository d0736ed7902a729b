package system

import (
	"time"

	"github.com/airslash/airslash/internal/core/event"
	coresys "github.com/airslash/airslash/internal/core/system"
)

// EventDispatchSystem delivers the previous frame's events at frame start.
// Phase 0 (Dispatch); runs in every status so GameOver and late feedback
// still reach their subscribers.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
