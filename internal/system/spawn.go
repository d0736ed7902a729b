package system

import (
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/core/event"
	coresys "github.com/airslash/airslash/internal/core/system"
	"github.com/airslash/airslash/internal/data"
	"github.com/airslash/airslash/internal/world"
)

// SpawnSystem launches batches of fruit from below the play area.
// Phase 3 (Spawn). A batch of 1..MaxBatch is issued whenever the time since
// the last batch exceeds a randomized interval, which is re-rolled after
// every batch.
type SpawnSystem struct {
	state  *world.State
	cfg    config.GameConfig
	fruits *data.FruitTable
	rng    *rand.Rand
	bus    *event.Bus
	log    *zap.Logger

	lastSpawn time.Time
	interval  time.Duration
}

func NewSpawnSystem(ws *world.State, cfg config.GameConfig, fruits *data.FruitTable, rng *rand.Rand, bus *event.Bus, log *zap.Logger) *SpawnSystem {
	s := &SpawnSystem{
		state:  ws,
		cfg:    cfg,
		fruits: fruits,
		rng:    rng,
		bus:    bus,
		log:    log,
	}
	s.interval = s.rollInterval()
	return s
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *SpawnSystem) Update(_ time.Duration) {
	if s.state.Now.Sub(s.lastSpawn) <= s.interval {
		return
	}
	s.SpawnBatch(1 + s.rng.IntN(s.cfg.MaxBatch))
	s.lastSpawn = s.state.Now
	s.interval = s.rollInterval()
}

// Reset restarts the interval clock at now. Called when a round starts.
func (s *SpawnSystem) Reset(now time.Time) {
	s.lastSpawn = now
	s.interval = s.rollInterval()
}

// Interval returns the wait currently required before the next batch.
func (s *SpawnSystem) Interval() time.Duration { return s.interval }

// SpawnBatch adds count new objects and returns how many were added. The
// play area must have positive dimensions; otherwise nothing is spawned.
func (s *SpawnSystem) SpawnBatch(count int) int {
	if !s.state.ValidArea() {
		s.log.Warn("遊戲區域尚未設定尺寸，略過生成",
			zap.Float64("width", s.state.Width), zap.Float64("height", s.state.Height))
		return 0
	}
	bombs := 0
	for range count {
		obj := s.newObject()
		if obj.Kind == world.KindBomb {
			bombs++
		}
		s.state.Objects = append(s.state.Objects, obj)
	}
	event.Emit(s.bus, event.ObjectsSpawned{Count: count, Bombs: bombs})
	return count
}

func (s *SpawnSystem) newObject() world.FallingObject {
	tmpl := s.fruits.Bomb()
	if s.rng.Float64() >= s.cfg.BombChance {
		fruits := s.fruits.Fruits()
		tmpl = fruits[s.rng.IntN(len(fruits))]
	}

	w, h := s.state.Width, s.state.Height
	// Launch speed for an apex targetHeight above the start, independent of
	// the gravity constant.
	targetHeight := h * (s.cfg.ApexMin + s.rng.Float64()*s.cfg.ApexSpread)
	vy := -math.Sqrt(2 * s.cfg.Gravity * targetHeight)
	x := w*s.cfg.SpawnMargin + s.rng.Float64()*w*(1-2*s.cfg.SpawnMargin)

	return world.FallingObject{
		ID:       s.state.NextObjectID(),
		Pos:      world.Vec2{X: x, Y: h + s.cfg.SpawnDepth},
		Vel:      world.Vec2{X: (s.rng.Float64() - 0.5) * 2 * s.cfg.HorizontalSpeed, Y: vy},
		Radius:   s.cfg.ObjectRadius,
		Kind:     tmpl.ObjectKind(),
		Template: tmpl.Name,
		Glyph:    tmpl.Rune(),
		Color:    tmpl.Color,
		Rotation: s.rng.Float64() * 2 * math.Pi,
		Spin:     (s.rng.Float64() - 0.5) * 2 * s.cfg.SpinSpeed,
	}
}

func (s *SpawnSystem) rollInterval() time.Duration {
	spread := s.cfg.SpawnIntervalMax - s.cfg.SpawnIntervalMin
	return s.cfg.SpawnIntervalMin + time.Duration(s.rng.Float64()*float64(spread))
}
