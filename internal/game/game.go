// Package game drives a round: it owns the simulation state, runs the
// phase-ordered systems once per frame on a single goroutine, and applies
// tracker samples, UI commands and flavor replies between frames.
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/core/event"
	coresys "github.com/airslash/airslash/internal/core/system"
	"github.com/airslash/airslash/internal/data"
	"github.com/airslash/airslash/internal/system"
	"github.com/airslash/airslash/internal/tracking"
	"github.com/airslash/airslash/internal/world"
)

// FlavorService produces the end-of-round message asynchronously.
type FlavorService interface {
	Request(score int, deliver func(string))
}

// Deps collects what a Game needs. Only Config is required.
type Deps struct {
	Config *config.Config
	Fruits *data.FruitTable
	Bus    *event.Bus
	Rand   *rand.Rand
	Source tracking.Source
	Drawer system.Drawer
	Flavor FlavorService
	Now    func() time.Time
	Log    *zap.Logger
}

type Game struct {
	cfg    *config.Config
	state  *world.State
	bus    *event.Bus
	runner *coresys.Runner

	spawn   *system.SpawnSystem
	slash   *system.SlashSystem
	combo   *system.ComboSystem
	physics *system.PhysicsSystem

	source tracking.Source
	flavor FlavorService
	now    func() time.Time
	log    *zap.Logger

	frameDT  time.Duration
	samples  chan tracking.Sample
	commands chan Command
	messages chan string
	dropped  atomic.Int64
}

const (
	commandQueue = 16
	messageQueue = 4
)

func New(d Deps) *Game {
	cfg := d.Config
	if d.Fruits == nil {
		d.Fruits = data.DefaultFruitTable()
	}
	if d.Bus == nil {
		d.Bus = event.NewBus()
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	ws := world.NewState(0, 0)
	ws.Message = cfg.Flavor.IdleMessage

	g := &Game{
		cfg:      cfg,
		state:    ws,
		bus:      d.Bus,
		runner:   coresys.NewRunner(),
		source:   d.Source,
		flavor:   d.Flavor,
		now:      d.Now,
		log:      d.Log,
		frameDT:  time.Second / time.Duration(cfg.Game.FrameRate),
		samples:  make(chan tracking.Sample, max(cfg.Input.QueueSize, 1)),
		commands: make(chan Command, commandQueue),
		messages: make(chan string, messageQueue),
	}

	// A mouse is already in screen space; only a camera needs mirroring.
	mirror := cfg.Input.Mirror && cfg.Input.Source != config.SourceMouse

	g.combo = system.NewComboSystem(ws, cfg.Combo, d.Bus, d.Log)
	g.slash = system.NewSlashSystem(ws, cfg.Slash, mirror)
	g.spawn = system.NewSpawnSystem(ws, cfg.Game, d.Fruits, d.Rand, d.Bus, d.Log)
	g.physics = system.NewPhysicsSystem(ws, cfg.Game)

	g.runner.Register(system.NewEventDispatchSystem(d.Bus))
	g.runner.Register(g.slash)
	g.runner.Register(g.combo)
	g.runner.Register(g.spawn)
	g.runner.Register(g.physics)
	g.runner.Register(system.NewSliceSystem(ws, cfg.Score, cfg.Effects, g.combo, d.Rand, d.Bus, d.Log))
	g.runner.Register(system.NewEffectsSystem(ws, cfg.Effects))
	if d.Drawer != nil {
		g.runner.Register(system.NewRenderSystem(ws, d.Drawer))
	}

	if g.source != nil {
		g.source.OnSample(g.enqueueSample)
	}
	return g
}

// State exposes the simulation state. Only the loop goroutine may touch it
// while Run is active.
func (g *Game) State() *world.State { return g.state }

func (g *Game) Bus() *event.Bus { return g.bus }

// Dropped returns how many tracker samples were discarded because the loop
// fell behind.
func (g *Game) Dropped() int64 { return g.dropped.Load() }

// Pruned returns how many objects fell out of the play area this round.
func (g *Game) Pruned() int { return g.physics.Pruned() }

// Start begins a round from Idle or GameOver. It reports false while a
// round is already running.
func (g *Game) Start() bool {
	if g.state.Playing() {
		return false
	}
	now := g.now()
	g.state.Now = now
	g.state.ClearTransient()
	g.state.Session = world.Session{
		Status:        world.StatusPlaying,
		Score:         0,
		TimeRemaining: g.cfg.Game.Duration,
	}
	g.spawn.Reset(now)
	g.physics.Reset()
	if g.state.ValidArea() {
		g.spawn.SpawnBatch(g.cfg.Game.InitialBatch)
	}
	event.Emit(g.bus, event.GameStarted{Duration: g.cfg.Game.Duration})
	g.log.Info("回合開始", zap.Int("duration", g.cfg.Game.Duration))
	return true
}

// Countdown is the once-per-second timer tick.
func (g *Game) Countdown() {
	if !g.state.Playing() {
		return
	}
	g.state.Session.TimeRemaining--
	if g.state.Session.TimeRemaining <= 0 {
		g.EndGame()
	}
}

// EndGame closes the round: a pending combo is finalized, transient state
// is cleared and one flavor request is fired for the final score. The
// popup of a chain finalized here survives the clear so the game-over
// screen still shows it.
func (g *Game) EndGame() {
	if !g.state.Playing() {
		return
	}
	g.state.Now = g.now()
	popup, bonus := g.combo.Finalize()
	g.state.ClearTransient()
	if bonus {
		g.state.Popups = append(g.state.Popups, popup)
	}
	g.state.Session.Status = world.StatusGameOver
	g.state.Session.TimeRemaining = 0

	score := g.state.Session.Score
	event.Emit(g.bus, event.GameOver{Score: score})
	g.log.Info("回合結束",
		zap.Int("score", score),
		zap.Int("pruned", g.Pruned()),
		zap.Int64("dropped_samples", g.Dropped()))

	if g.flavor != nil {
		g.flavor.Request(score, g.deliverMessage)
	}
}

// Frame runs one simulation frame. Outside a round only event dispatch and
// output run, so the pointer stays live on the idle and game-over screens.
func (g *Game) Frame() {
	g.state.Now = g.now()
	if g.state.Playing() {
		g.runner.Tick(g.frameDT)
		return
	}
	g.runner.TickPhase(g.frameDT, coresys.PhaseDispatch, coresys.PhaseOutput)
}

func (g *Game) HandleSample(s tracking.Sample) {
	g.slash.Ingest(s, g.now())
}

// ToggleInputSource flips the horizontal mirroring of tracker input.
func (g *Game) ToggleInputSource() bool {
	mirror := g.slash.ToggleMirror()
	g.log.Info("切換輸入鏡像", zap.Bool("mirror", mirror))
	return mirror
}

// Resize sets the play-area bounds used by spawning and pruning.
func (g *Game) Resize(width, height float64) {
	g.state.Resize(width, height)
	g.log.Debug("遊戲區域尺寸變更", zap.Float64("width", width), zap.Float64("height", height))
}

// Send queues a command for the loop. It reports false when the queue is
// full and the command was dropped.
func (g *Game) Send(cmd Command) bool {
	select {
	case g.commands <- cmd:
		return true
	default:
		g.log.Warn("指令佇列已滿，捨棄指令", zap.Stringer("cmd", cmd.Kind))
		return false
	}
}

func (g *Game) enqueueSample(s tracking.Sample) {
	select {
	case g.samples <- s:
	default:
		g.dropped.Add(1)
	}
}

func (g *Game) deliverMessage(msg string) {
	select {
	case g.messages <- msg:
	default:
		g.log.Warn("評語佇列已滿，捨棄評語")
	}
}

// apply runs a command on the loop goroutine and reports whether it asks
// the loop to stop.
func (g *Game) apply(cmd Command) (started, quit bool) {
	switch cmd.Kind {
	case CmdStart:
		return g.Start(), false
	case CmdToggleInput:
		g.ToggleInputSource()
	case CmdResize:
		g.Resize(cmd.Width, cmd.Height)
	case CmdQuit:
		return false, true
	}
	return false, false
}

// Run is the game loop. It starts the tracking source, then serves frames,
// the countdown, samples, commands and flavor replies until a quit command
// (nil) or ctx is done (ctx.Err()). The source is stopped on return.
func (g *Game) Run(ctx context.Context) error {
	if g.source != nil {
		if err := g.source.Start(ctx); err != nil {
			return fmt.Errorf("start tracking: %w", err)
		}
		defer func() {
			if err := g.source.Stop(); err != nil {
				g.log.Warn("停止追蹤失敗", zap.Error(err))
			}
		}()
	}

	frame := time.NewTicker(g.frameDT)
	defer frame.Stop()
	second := time.NewTicker(time.Second)
	defer second.Stop()

	for {
		select {
		case <-frame.C:
			g.Frame()
		case <-second.C:
			g.Countdown()
		case s := <-g.samples:
			g.HandleSample(s)
		case cmd := <-g.commands:
			started, quit := g.apply(cmd)
			if quit {
				return nil
			}
			if started {
				// The first countdown tick comes a full second after start.
				second.Reset(time.Second)
			}
		case msg := <-g.messages:
			g.state.Message = msg
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
