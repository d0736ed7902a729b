package tracking

import (
	"context"
	"sync"
)

// MouseSource stands in for a camera tracker: the terminal feeds it mouse
// positions in cells.
type MouseSource struct {
	emitter

	hideOnRelease bool

	mu      sync.Mutex
	active  bool
	pressed bool
}

func NewMouseSource(hideOnRelease bool) *MouseSource {
	return &MouseSource{hideOnRelease: hideOnRelease}
}

func (m *MouseSource) Start(context.Context) error {
	m.mu.Lock()
	m.active = true
	m.mu.Unlock()
	return nil
}

func (m *MouseSource) Stop() error {
	m.mu.Lock()
	m.active = false
	m.pressed = false
	m.mu.Unlock()
	return nil
}

// Feed reports the mouse over cell (col, row) of a cols x rows screen. The
// sample is taken at the cell center.
func (m *MouseSource) Feed(col, row, cols, rows int, pressed bool) {
	if cols <= 0 || rows <= 0 {
		return
	}
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	released := m.pressed && !pressed
	m.pressed = pressed
	m.mu.Unlock()

	if m.hideOnRelease && !pressed {
		if released {
			m.emit(NoHand)
		}
		return
	}
	m.emit(Sample{
		Detected: true,
		X:        clamp01((float64(col) + 0.5) / float64(cols)),
		Y:        clamp01((float64(row) + 0.5) / float64(rows)),
	})
}

// Leave reports that the pointer left the window.
func (m *MouseSource) Leave() {
	m.mu.Lock()
	active := m.active
	m.pressed = false
	m.mu.Unlock()
	if active {
		m.emit(NoHand)
	}
}
