package system

import (
	"math/rand/v2"
	"time"

	"github.com/airslash/airslash/internal/config"
	coresys "github.com/airslash/airslash/internal/core/system"
	"github.com/airslash/airslash/internal/world"
)

// EffectsSystem ages particles and combo popups.
// Phase 6 (Effects).
type EffectsSystem struct {
	state *world.State
	cfg   config.EffectsConfig
}

func NewEffectsSystem(ws *world.State, cfg config.EffectsConfig) *EffectsSystem {
	return &EffectsSystem{state: ws, cfg: cfg}
}

func (s *EffectsSystem) Phase() coresys.Phase { return coresys.PhaseEffects }

func (s *EffectsSystem) Update(_ time.Duration) {
	particles := s.state.Particles[:0]
	for _, p := range s.state.Particles {
		p.Pos = p.Pos.Add(p.Vel)
		p.Vel.Y += s.cfg.ParticleGravity
		p.Life -= s.cfg.ParticleDecay
		if p.Life > 0 {
			particles = append(particles, p)
		}
	}
	s.state.Particles = particles

	popups := s.state.Popups[:0]
	for _, c := range s.state.Popups {
		c.Pos.Y -= s.cfg.PopupDrift
		c.Life -= s.cfg.PopupDecay
		if c.Life > 0 {
			popups = append(popups, c)
		}
	}
	s.state.Popups = popups
}

// Burst scatters a fixed-size ring of particles at pos.
func Burst(ws *world.State, rng *rand.Rand, cfg config.EffectsConfig, pos world.Vec2, color string) {
	for range cfg.BurstSize {
		ws.Particles = append(ws.Particles, world.Particle{
			Pos: pos,
			Vel: world.Vec2{
				X: (rng.Float64() - 0.5) * cfg.ParticleSpeed,
				Y: (rng.Float64() - 0.5) * cfg.ParticleSpeed,
			},
			Color: color,
			Life:  1,
			Size:  rng.Float64()*cfg.ParticleSizeSpread + cfg.ParticleSizeMin,
		})
	}
}
