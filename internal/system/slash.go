package system

import (
	"math"
	"time"

	"github.com/airslash/airslash/internal/config"
	coresys "github.com/airslash/airslash/internal/core/system"
	"github.com/airslash/airslash/internal/tracking"
	"github.com/airslash/airslash/internal/world"
)

// SlashSystem turns raw fingertip samples into the slash trail.
// Phase 1 (Trail) ages the trail; Ingest runs whenever a sample arrives.
type SlashSystem struct {
	state  *world.State
	cfg    config.SlashConfig
	mirror bool

	last    world.Vec2
	hasLast bool
}

func NewSlashSystem(ws *world.State, cfg config.SlashConfig, mirror bool) *SlashSystem {
	return &SlashSystem{state: ws, cfg: cfg, mirror: mirror}
}

func (s *SlashSystem) Phase() coresys.Phase { return coresys.PhaseTrail }

// Update drops trail points whose age reached the trail lifetime.
func (s *SlashSystem) Update(_ time.Duration) {
	kept := s.state.Trail[:0]
	for _, p := range s.state.Trail {
		if s.state.Now.Sub(p.At) < s.cfg.TrailLifetime {
			kept = append(kept, p)
		}
	}
	s.state.Trail = kept
}

// Ingest applies one tracker sample received at now. The live pointer
// always follows the sample; the trail only grows while playing. A jump
// longer than the threshold is filled with evenly spaced points so a fast
// swipe leaves no gap for an object to slip through.
func (s *SlashSystem) Ingest(sample tracking.Sample, now time.Time) {
	if !sample.Detected {
		s.state.Pointer = nil
		s.hasLast = false
		return
	}

	p := s.ToPlayArea(sample)
	pointer := p
	s.state.Pointer = &pointer

	if s.state.Playing() {
		if s.hasLast {
			s.interpolate(s.last, p, now)
		}
		s.state.Trail = append(s.state.Trail, world.TrailPoint{Pos: p, At: now})
	}
	s.last = p
	s.hasLast = true
}

func (s *SlashSystem) interpolate(from, to world.Vec2, now time.Time) {
	dist := from.Dist(to)
	if dist <= s.cfg.JumpThreshold {
		return
	}
	steps := min(s.cfg.MaxInterpolated, int(math.Floor(dist/s.cfg.InterpolationStep)))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.state.Trail = append(s.state.Trail, world.TrailPoint{Pos: from.Lerp(to, t), At: now})
	}
}

// ToPlayArea maps a normalized sample to play-area coordinates, mirroring
// horizontally for a front-facing camera.
func (s *SlashSystem) ToPlayArea(sample tracking.Sample) world.Vec2 {
	x := sample.X
	if s.mirror {
		x = 1 - x
	}
	return world.Vec2{X: x * s.state.Width, Y: sample.Y * s.state.Height}
}

// ToggleMirror flips the horizontal mapping and returns the new setting.
func (s *SlashSystem) ToggleMirror() bool {
	s.mirror = !s.mirror
	s.hasLast = false
	return s.mirror
}

func (s *SlashSystem) Mirror() bool { return s.mirror }
