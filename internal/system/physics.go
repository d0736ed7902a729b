package system

import (
	"time"

	"github.com/airslash/airslash/internal/config"
	coresys "github.com/airslash/airslash/internal/core/system"
	"github.com/airslash/airslash/internal/world"
)

// PhysicsSystem integrates every falling object once per frame and drops
// the ones that fell past the bottom margin.
// Phase 4 (Physics).
//
// Integration is frame-coupled: gravity is added once per Update regardless
// of dt, matching the fixed 60 fps budget the tuning was made for.
type PhysicsSystem struct {
	state *world.State
	cfg   config.GameConfig

	pruned int
}

func NewPhysicsSystem(ws *world.State, cfg config.GameConfig) *PhysicsSystem {
	return &PhysicsSystem{state: ws, cfg: cfg}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(_ time.Duration) {
	limit := s.state.Height + s.cfg.OffscreenMargin
	kept := s.state.Objects[:0]
	for _, o := range s.state.Objects {
		o.Pos = o.Pos.Add(o.Vel)
		o.Vel.Y += s.cfg.Gravity
		o.Rotation += o.Spin
		if o.Pos.Y > limit {
			s.pruned++
			continue
		}
		kept = append(kept, o)
	}
	s.state.Objects = kept
}

// Pruned returns how many objects have left through the bottom since the
// last Reset.
func (s *PhysicsSystem) Pruned() int { return s.pruned }

// Reset zeroes the pruned counter. Called when a round starts.
func (s *PhysicsSystem) Reset() { s.pruned = 0 }
