package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/core/event"
	"github.com/airslash/airslash/internal/tracking"
	"github.com/airslash/airslash/internal/world"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSource struct {
	mu      sync.Mutex
	fn      func(tracking.Sample)
	started bool
	stopped bool
}

func (s *fakeSource) OnSample(fn func(tracking.Sample)) { s.fn = fn }

func (s *fakeSource) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *fakeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

type fakeFlavor struct {
	scores  []int
	deliver func(string)
}

func (f *fakeFlavor) Request(score int, deliver func(string)) {
	f.scores = append(f.scores, score)
	f.deliver = deliver
}

type countingDrawer struct{ frames int }

func (d *countingDrawer) Draw(*world.State) { d.frames++ }

type harness struct {
	game   *Game
	clock  *fakeClock
	source *fakeSource
	flavor *fakeFlavor
	drawer *countingDrawer
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Defaults()
	cfg.Game.BombChance = 0
	if mutate != nil {
		mutate(cfg)
	}
	h := &harness{
		clock:  &fakeClock{now: t0},
		source: &fakeSource{},
		flavor: &fakeFlavor{},
		drawer: &countingDrawer{},
	}
	h.game = New(Deps{
		Config: cfg,
		Rand:   rand.New(rand.NewPCG(1, 2)),
		Source: h.source,
		Drawer: h.drawer,
		Flavor: h.flavor,
		Now:    h.clock.Now,
	})
	return h
}

func TestNewStartsIdle(t *testing.T) {
	h := newHarness(t, nil)
	ws := h.game.State()
	if ws.Session.Status != world.StatusIdle {
		t.Fatalf("status = %s, want idle", ws.Session.Status)
	}
	if ws.Message != config.Defaults().Flavor.IdleMessage {
		t.Errorf("message = %q, want idle message", ws.Message)
	}
	if h.source.fn == nil {
		t.Error("source callback not registered")
	}
}

func TestStartResetsRound(t *testing.T) {
	h := newHarness(t, nil)
	g := h.game
	g.Resize(1000, 800)

	ws := g.State()
	ws.Session = world.Session{Status: world.StatusGameOver, Score: 17}
	ws.Particles = append(ws.Particles, world.Particle{})
	ws.Combo.Count = 2

	if !g.Start() {
		t.Fatal("Start from game over was ignored")
	}
	if ws.Session.Status != world.StatusPlaying || ws.Session.Score != 0 || ws.Session.TimeRemaining != 30 {
		t.Fatalf("session = %+v, want playing, 0 points, 30s", ws.Session)
	}
	if len(ws.Objects) != 2 {
		t.Errorf("objects = %d, want initial batch of 2", len(ws.Objects))
	}
	if len(ws.Particles) != 0 || ws.Combo.Count != 0 {
		t.Errorf("transient state survived start: %d particles, combo %d", len(ws.Particles), ws.Combo.Count)
	}
}

func TestStartIgnoredWhilePlaying(t *testing.T) {
	h := newHarness(t, nil)
	g := h.game
	g.Resize(1000, 800)
	g.Start()
	g.State().Session.Score = 9

	if g.Start() {
		t.Fatal("second Start accepted while playing")
	}
	if g.State().Session.Score != 9 {
		t.Errorf("score = %d, want 9 untouched", g.State().Session.Score)
	}
}

func TestStartWithoutPlayArea(t *testing.T) {
	h := newHarness(t, nil)
	if !h.game.Start() {
		t.Fatal("Start refused")
	}
	if n := len(h.game.State().Objects); n != 0 {
		t.Errorf("objects = %d, want none before the area is sized", n)
	}
}

func TestStartEmitsGameStarted(t *testing.T) {
	h := newHarness(t, nil)
	var got []event.GameStarted
	event.Subscribe(h.game.Bus(), func(e event.GameStarted) { got = append(got, e) })

	h.game.Start()
	h.game.Frame()

	if len(got) != 1 || got[0].Duration != 30 {
		t.Fatalf("GameStarted = %+v, want one with duration 30", got)
	}
}

func TestCountdownEndsRound(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Game.Duration = 3 })
	g := h.game
	g.Resize(1000, 800)
	g.Start()
	g.State().Session.Score = 4

	var over []event.GameOver
	event.Subscribe(g.Bus(), func(e event.GameOver) { over = append(over, e) })

	g.Countdown()
	g.Countdown()
	if !g.State().Playing() {
		t.Fatal("round ended early")
	}
	g.Countdown()

	ws := g.State()
	if ws.Session.Status != world.StatusGameOver {
		t.Fatalf("status = %s, want game over", ws.Session.Status)
	}
	if len(ws.Objects) != 0 || len(ws.Trail) != 0 {
		t.Errorf("objects or trail survived game over")
	}
	if len(h.flavor.scores) != 1 || h.flavor.scores[0] != 4 {
		t.Errorf("flavor requests = %v, want [4]", h.flavor.scores)
	}

	g.Countdown()
	if len(h.flavor.scores) != 1 {
		t.Errorf("countdown after game over requested flavor again")
	}

	g.Frame()
	if len(over) != 1 || over[0].Score != 4 {
		t.Errorf("GameOver events = %+v, want one with score 4", over)
	}
}

func TestEndGameFinalizesCombo(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		want   int
		popups int
	}{
		{"chain at threshold scores bonus", 3, 8, 1},
		{"short chain scores nothing", 2, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			g := h.game
			g.Resize(1000, 800)
			g.Start()
			ws := g.State()
			ws.Session.Score = 5
			ws.Combo = world.ComboState{Count: tt.count, LastHit: t0, LastPos: world.Vec2{X: 400, Y: 300}}

			g.EndGame()

			if ws.Session.Score != tt.want {
				t.Errorf("score = %d, want %d", ws.Session.Score, tt.want)
			}
			if len(ws.Popups) != tt.popups {
				t.Errorf("popups = %d, want %d", len(ws.Popups), tt.popups)
			}
			if h.flavor.scores[0] != tt.want {
				t.Errorf("flavor score = %d, want %d", h.flavor.scores[0], tt.want)
			}
		})
	}
}

func TestFrameOutsideRoundOnlyDraws(t *testing.T) {
	h := newHarness(t, nil)
	g := h.game
	g.Resize(1000, 800)
	ws := g.State()
	ws.Objects = append(ws.Objects, world.FallingObject{
		ID: ws.NextObjectID(), Pos: world.Vec2{X: 500, Y: 400}, Radius: 90, Kind: world.KindFruit,
	})

	g.Frame()
	g.Frame()

	if h.drawer.frames != 2 {
		t.Errorf("drawn frames = %d, want 2", h.drawer.frames)
	}
	if ws.Objects[0].Pos.Y != 400 {
		t.Errorf("object moved to y=%g while idle", ws.Objects[0].Pos.Y)
	}
}

func TestSwipeSlicesFruit(t *testing.T) {
	h := newHarness(t, nil)
	g := h.game
	g.Resize(1000, 800)
	g.Start()
	ws := g.State()
	ws.Objects = append(ws.Objects, world.FallingObject{
		ID: ws.NextObjectID(), Pos: world.Vec2{X: 500, Y: 400}, Radius: 90,
		Kind: world.KindFruit, Template: "apple", Color: "#ef4444",
	})

	g.HandleSample(tracking.Sample{Detected: true, X: 0.4, Y: 0.5})
	g.HandleSample(tracking.Sample{Detected: true, X: 0.5, Y: 0.5})
	if ws.Pointer == nil || ws.Pointer.X != 500 {
		t.Fatalf("pointer = %v, want x=500", ws.Pointer)
	}

	g.Frame()

	if ws.Session.Score != 1 {
		t.Fatalf("score = %d, want 1", ws.Session.Score)
	}
	halves := 0
	for _, o := range ws.Objects {
		if o.IsHalf() {
			halves++
		}
	}
	if halves != 2 {
		t.Errorf("halves = %d, want 2", halves)
	}
	if ws.Combo.Count != 1 {
		t.Errorf("combo = %d, want 1", ws.Combo.Count)
	}
}

func TestToggleInputSourceMirrors(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Input.Source = config.SourceTCP })
	g := h.game
	g.Resize(1000, 800)

	g.HandleSample(tracking.Sample{Detected: true, X: 0.25, Y: 0.5})
	if x := g.State().Pointer.X; x != 750 {
		t.Fatalf("mirrored pointer x = %g, want 750", x)
	}
	if g.ToggleInputSource() {
		t.Fatal("mirror still on after toggle")
	}
	g.HandleSample(tracking.Sample{Detected: true, X: 0.25, Y: 0.5})
	if x := g.State().Pointer.X; x != 250 {
		t.Errorf("pointer x = %g, want 250", x)
	}
}

func TestSamplesDroppedWhenQueueFull(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Input.QueueSize = 2 })
	for range 5 {
		h.source.fn(tracking.Sample{Detected: true, X: 0.5, Y: 0.5})
	}
	if got := h.game.Dropped(); got != 3 {
		t.Errorf("dropped = %d, want 3", got)
	}
}

func TestFlavorReplyIsQueued(t *testing.T) {
	h := newHarness(t, nil)
	g := h.game
	g.Start()
	g.EndGame()

	h.flavor.deliver("好刀法")
	select {
	case msg := <-g.messages:
		if msg != "好刀法" {
			t.Errorf("message = %q", msg)
		}
	default:
		t.Fatal("flavor reply not queued")
	}
}

func TestRunAppliesCommandsUntilQuit(t *testing.T) {
	h := newHarness(t, nil)
	g := h.game
	g.Send(Command{Kind: CmdResize, Width: 640, Height: 480})
	g.Send(Command{Kind: CmdStart})
	g.Send(Command{Kind: CmdQuit})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	ws := g.State()
	if ws.Width != 640 || ws.Height != 480 {
		t.Errorf("area = %gx%g, want 640x480", ws.Width, ws.Height)
	}
	if !ws.Playing() {
		t.Error("start command not applied")
	}
	if !h.source.started || !h.source.stopped {
		t.Errorf("source started=%v stopped=%v, want both", h.source.started, h.source.stopped)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.game.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	h.source.mu.Lock()
	defer h.source.mu.Unlock()
	if !h.source.stopped {
		t.Error("source not stopped")
	}
}

// sliceFruitAt drops a fruit at the centre of a 1000x800 area and swipes
// through it at offset from t0.
func sliceFruitAt(h *harness, offset time.Duration) {
	h.clock.now = t0.Add(offset)
	ws := h.game.State()
	ws.Objects = append(ws.Objects, world.FallingObject{
		ID: ws.NextObjectID(), Pos: world.Vec2{X: 500, Y: 400}, Radius: 90,
		Kind: world.KindFruit, Template: "apple", Color: "#ef4444",
	})
	h.game.HandleSample(tracking.Sample{Detected: true, X: 0.4, Y: 0.5})
	h.game.HandleSample(tracking.Sample{Detected: true, X: 0.5, Y: 0.5})
	h.game.Frame()
}

// Hits at 0, 200 and 380ms form one chain; the round ending right after
// awards the bonus of 3 and leaves its popup on the game-over screen.
func TestRoundEndAwardsPendingCombo(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Game.Duration = 1 })
	g := h.game
	g.Resize(1000, 800)
	g.Start()

	var finished []event.ComboFinished
	event.Subscribe(g.Bus(), func(e event.ComboFinished) { finished = append(finished, e) })

	for _, at := range []time.Duration{0, 200 * time.Millisecond, 380 * time.Millisecond} {
		sliceFruitAt(h, at)
	}
	ws := g.State()
	if ws.Session.Score != 3 || ws.Combo.Count != 3 {
		t.Fatalf("score=%d combo=%d before end, want 3 and 3", ws.Session.Score, ws.Combo.Count)
	}

	g.Countdown()

	if ws.Session.Status != world.StatusGameOver {
		t.Fatalf("status = %s, want game over", ws.Session.Status)
	}
	if ws.Session.Score != 6 {
		t.Errorf("score = %d, want 6", ws.Session.Score)
	}
	if len(ws.Popups) != 1 || ws.Popups[0].Count != 3 {
		t.Fatalf("popups = %+v, want one with count 3", ws.Popups)
	}
	if len(ws.Objects) != 0 || len(ws.Particles) != 0 {
		t.Errorf("objects=%d particles=%d, want cleared", len(ws.Objects), len(ws.Particles))
	}

	g.Frame()
	if len(finished) != 1 || finished[0].Bonus != 3 {
		t.Errorf("ComboFinished = %+v, want one with bonus 3", finished)
	}
}

func TestPrunedCountsPerRound(t *testing.T) {
	h := newHarness(t, nil)
	g := h.game
	g.Resize(1000, 800)
	g.Start()
	ws := g.State()
	ws.Objects = append(ws.Objects, world.FallingObject{
		ID: ws.NextObjectID(), Pos: world.Vec2{X: 500, Y: 1199}, Vel: world.Vec2{Y: 5}, Radius: 90,
	})
	g.Frame()
	if g.Pruned() != 1 {
		t.Fatalf("pruned = %d, want 1", g.Pruned())
	}

	g.EndGame()
	g.Start()
	if g.Pruned() != 0 {
		t.Errorf("pruned after restart = %d, want 0", g.Pruned())
	}
}

func TestRoundOverLogLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := config.Defaults()
	cfg.Game.BombChance = 0
	g := New(Deps{
		Config: cfg,
		Rand:   rand.New(rand.NewPCG(1, 2)),
		Now:    (&fakeClock{now: t0}).Now,
		Log:    zap.New(core),
	})
	g.Resize(1000, 800)
	g.Start()
	ws := g.State()
	ws.Objects = append(ws.Objects, world.FallingObject{
		ID: ws.NextObjectID(), Pos: world.Vec2{X: 500, Y: 1199}, Vel: world.Vec2{Y: 5}, Radius: 90,
	})
	g.Frame()
	ws.Session.Score = 7
	g.EndGame()

	over := logs.FilterMessage("回合結束").All()
	if len(over) != 1 {
		t.Fatalf("round-over entries = %d, want 1", len(over))
	}
	fields := over[0].ContextMap()
	if fields["score"] != int64(7) || fields["pruned"] != int64(1) || fields["dropped_samples"] != int64(0) {
		t.Errorf("fields = %v", fields)
	}
	if logs.FilterMessage("回合開始").Len() != 1 {
		t.Errorf("round-start entry missing")
	}
}
