package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/config"
	"github.com/airslash/airslash/internal/core/event"
	coresys "github.com/airslash/airslash/internal/core/system"
	"github.com/airslash/airslash/internal/world"
)

// ComboSystem tracks chains of fruit slices.
// Phase 2 (Combo) finalizes a chain once the window lapses without a hit.
//
// A hit within the window of the previous one extends the chain; otherwise
// the pending chain is finalized and a new one starts at 1. Finalizing a
// chain of Threshold or more awards a bonus equal to its length and leaves
// a popup above the last hit. A bomb breaks the chain with no bonus.
type ComboSystem struct {
	state *world.State
	cfg   config.ComboConfig
	bus   *event.Bus
	log   *zap.Logger
}

func NewComboSystem(ws *world.State, cfg config.ComboConfig, bus *event.Bus, log *zap.Logger) *ComboSystem {
	return &ComboSystem{state: ws, cfg: cfg, bus: bus, log: log}
}

func (s *ComboSystem) Phase() coresys.Phase { return coresys.PhaseCombo }

func (s *ComboSystem) Update(_ time.Duration) {
	c := &s.state.Combo
	if c.Count > 0 && s.state.Now.Sub(c.LastHit) >= s.cfg.Window {
		s.Finalize()
	}
}

// Hit records a fruit slice at now and pos.
func (s *ComboSystem) Hit(now time.Time, pos world.Vec2) {
	c := &s.state.Combo
	if c.Count > 0 && now.Sub(c.LastHit) < s.cfg.Window {
		c.Count++
	} else {
		s.Finalize()
		c.Count = 1
	}
	c.LastHit = now
	c.LastPos = pos
}

// Break forfeits the running chain.
func (s *ComboSystem) Break() {
	s.state.Combo.Count = 0
}

// Finalize closes the running chain. When the chain reached the threshold
// its bonus is added to the score and the created popup is returned.
func (s *ComboSystem) Finalize() (world.Popup, bool) {
	c := &s.state.Combo
	count := c.Count
	c.Count = 0
	if count < s.cfg.Threshold {
		return world.Popup{}, false
	}

	bonus := count
	s.state.Session.Score += bonus
	popup := world.Popup{
		Pos:   world.Vec2{X: c.LastPos.X, Y: c.LastPos.Y - s.cfg.PopupRise},
		Count: count,
		Life:  1,
	}
	s.state.Popups = append(s.state.Popups, popup)
	event.Emit(s.bus, event.ComboFinished{Count: count, Bonus: bonus, Pos: popup.Pos})
	s.log.Debug("連擊結算", zap.Int("count", count), zap.Int("score", s.state.Session.Score))
	return popup, true
}
