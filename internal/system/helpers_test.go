package system

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/core/event"
	"github.com/airslash/airslash/internal/world"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func newPlayingState() *world.State {
	ws := world.NewState(1000, 800)
	ws.Session.Status = world.StatusPlaying
	ws.Now = t0
	return ws
}

func newRNG() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

// fixture wires the collision and combo systems the way the game does.
type fixture struct {
	cfg   *config.Config
	ws    *world.State
	bus   *event.Bus
	combo *ComboSystem
	slice *SliceSystem
}

func newFixture() *fixture {
	cfg := config.Defaults()
	ws := newPlayingState()
	bus := event.NewBus()
	combo := NewComboSystem(ws, cfg.Combo, bus, zap.NewNop())
	slice := NewSliceSystem(ws, cfg.Score, cfg.Effects, combo, newRNG(), bus, zap.NewNop())
	return &fixture{cfg: cfg, ws: ws, bus: bus, combo: combo, slice: slice}
}

func (f *fixture) addObject(kind world.Kind, x, y float64) world.ObjectID {
	id := f.ws.NextObjectID()
	f.ws.Objects = append(f.ws.Objects, world.FallingObject{
		ID:       id,
		Pos:      world.Vec2{X: x, Y: y},
		Vel:      world.Vec2{X: 2, Y: -5},
		Radius:   f.cfg.Game.ObjectRadius,
		Kind:     kind,
		Template: "apple",
		Glyph:    'A',
		Color:    "#ef4444",
	})
	return id
}

// swipe puts a two-point trail ending at (x, y).
func (f *fixture) swipe(x, y float64) {
	f.ws.Trail = append(f.ws.Trail[:0],
		world.TrailPoint{Pos: world.Vec2{X: x - 30, Y: y - 30}, At: f.ws.Now},
		world.TrailPoint{Pos: world.Vec2{X: x, Y: y}, At: f.ws.Now},
	)
}

// drain delivers every event emitted so far.
func (f *fixture) drain() {
	f.bus.SwapBuffers()
	f.bus.DispatchAll()
}
