package system

import (
	"time"

	coresys "github.com/airslash/airslash/internal/core/system"
	"github.com/airslash/airslash/internal/world"
)

// Drawer draws one frame of the simulation state.
type Drawer interface {
	Draw(ws *world.State)
}

// RenderSystem hands the state to the drawer once per frame.
// Phase 7 (Output); runs in every status so the pointer stays visible on
// the idle and game-over screens.
type RenderSystem struct {
	state  *world.State
	drawer Drawer
}

func NewRenderSystem(ws *world.State, d Drawer) *RenderSystem {
	return &RenderSystem{state: ws, drawer: d}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Update(_ time.Duration) {
	s.drawer.Draw(s.state)
}
