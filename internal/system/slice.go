package system

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/core/event"
	coresys "github.com/airslash/airslash/internal/core/system"
	"github.com/airslash/airslash/internal/world"
)

// bombBurstColor is the neutral particle color of a bomb hit.
const bombBurstColor = "#ffffff"

// SliceSystem resolves the newest trail segment against every slicable
// object. Phase 5 (Collision).
//
// Hit test: the trail's leading point inside the object's circle. Objects
// traversed entirely between two samples can be missed; the interpolation in
// SlashSystem keeps that rare.
type SliceSystem struct {
	state  *world.State
	score  config.ScoreConfig
	fx     config.EffectsConfig
	combo  *ComboSystem
	rng    *rand.Rand
	bus    *event.Bus
	log    *zap.Logger
	halves []world.FallingObject
}

func NewSliceSystem(ws *world.State, score config.ScoreConfig, fx config.EffectsConfig, combo *ComboSystem, rng *rand.Rand, bus *event.Bus, log *zap.Logger) *SliceSystem {
	return &SliceSystem{
		state:  ws,
		score:  score,
		fx:     fx,
		combo:  combo,
		rng:    rng,
		bus:    bus,
		log:    log,
		halves: make([]world.FallingObject, 0, 8),
	}
}

func (s *SliceSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

func (s *SliceSystem) Update(_ time.Duration) {
	n := len(s.state.Trail)
	if n < 2 {
		return
	}
	from, to := s.state.Trail[n-2].Pos, s.state.Trail[n-1].Pos

	kept := s.state.Objects[:0]
	for _, o := range s.state.Objects {
		if o.Slicable() && s.TrySlice(&o, from, to) {
			continue
		}
		kept = append(kept, o)
	}
	s.state.Objects = append(kept, s.halves...)
	s.halves = s.halves[:0]
}

// TrySlice tests o against the newest trail segment and applies a hit:
// score, particles, combo, and for fruit two half-variants that join the
// active set at the end of the current Update. The caller removes o when
// TrySlice reports true.
//
// Only the leading point of the segment is tested against the object
// circle; interpolation keeps consecutive points close enough.
func (s *SliceSystem) TrySlice(o *world.FallingObject, _, to world.Vec2) bool {
	if o.Pos.Dist(to) >= o.Radius {
		return false
	}
	o.Sliced = true

	if o.Kind == world.KindBomb {
		s.state.Session.Score = max(0, s.state.Session.Score-s.score.BombPenalty)
		Burst(s.state, s.rng, s.fx, o.Pos, bombBurstColor)
		s.combo.Break()
		event.Emit(s.bus, event.BombSliced{ObjectID: o.ID, Pos: o.Pos, Score: s.state.Session.Score})
		s.log.Debug("切到炸彈", zap.Uint32("id", uint32(o.ID)), zap.Int("score", s.state.Session.Score))
		return true
	}

	s.state.Session.Score += s.score.FruitPoints
	Burst(s.state, s.rng, s.fx, o.Pos, o.Color)
	s.combo.Hit(s.state.Now, o.Pos)
	s.halves = append(s.halves,
		o.Half(s.state.NextObjectID(), world.SideLeft, s.fx.HalfPush, s.fx.HalfLift, s.fx.HalfSpin),
		o.Half(s.state.NextObjectID(), world.SideRight, s.fx.HalfPush, s.fx.HalfLift, s.fx.HalfSpin),
	)
	event.Emit(s.bus, event.FruitSliced{ObjectID: o.ID, Template: o.Template, Pos: o.Pos, Score: s.state.Session.Score})
	return true
}
