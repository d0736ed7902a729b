// Package audio plays short synthesized cues for game events.
package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/core/event"
)

// Player mixes event cues into the speaker. Without a working speaker it
// stays silent and only counts cues.
type Player struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	active bool
	cues   atomic.Int64
	log    *zap.Logger
}

// NewPlayer opens the speaker when audio is enabled. A failed speaker init
// is logged and leaves the player silent.
func NewPlayer(cfg config.AudioConfig, log *zap.Logger) *Player {
	p := &Player{rate: beep.SampleRate(cfg.SampleRate), mixer: &beep.Mixer{}, log: log}
	if !cfg.Enabled {
		return p
	}
	if err := speaker.Init(p.rate, p.rate.N(50*time.Millisecond)); err != nil {
		log.Warn("音效初始化失敗，改為靜音", zap.Error(err))
		return p
	}
	speaker.Play(p.mixer)
	p.active = true
	return p
}

// Subscribe attaches the cues to game events.
func (p *Player) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(event.FruitSliced) { p.Play(SliceSound(p.rate)) })
	event.Subscribe(bus, func(event.BombSliced) { p.Play(BombSound(p.rate)) })
	event.Subscribe(bus, func(e event.ComboFinished) { p.Play(ComboSound(p.rate, e.Count)) })
	event.Subscribe(bus, func(event.GameOver) { p.Play(GameOverSound(p.rate)) })
}

func (p *Player) Play(s beep.Streamer) {
	p.cues.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Cues returns how many cues were requested, audible or not.
func (p *Player) Cues() int64 {
	return p.cues.Load()
}

func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.active = false
}
