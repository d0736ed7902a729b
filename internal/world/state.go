package world

import "time"

// State is the simulation context of one game. It is owned by the loop
// goroutine and passed to every step; nothing else reads or writes it.
type State struct {
	Width, Height float64
	Now           time.Time

	Session Session

	Objects   []FallingObject
	Particles []Particle
	Trail     []TrailPoint
	Combo     ComboState
	Popups    []Popup

	// Pointer is the live fingertip indicator; nil when no hand is visible.
	Pointer *Vec2

	// Message is the idle / game-over display text.
	Message string

	nextID ObjectID
}

func NewState(width, height float64) *State {
	return &State{
		Width:     width,
		Height:    height,
		Objects:   make([]FallingObject, 0, 32),
		Particles: make([]Particle, 0, 256),
		Trail:     make([]TrailPoint, 0, 64),
		Popups:    make([]Popup, 0, 4),
	}
}

// NextObjectID allocates an id unique within this state.
func (s *State) NextObjectID() ObjectID {
	s.nextID++
	return s.nextID
}

// ValidArea reports whether the play area has positive dimensions; spawning
// and boundary checks require it.
func (s *State) ValidArea() bool {
	return s.Width > 0 && s.Height > 0
}

func (s *State) Resize(width, height float64) {
	s.Width, s.Height = width, height
}

// ClearTransient drops every object, particle, trail point, popup and the
// combo chain. Called on every transition into Playing and into GameOver.
func (s *State) ClearTransient() {
	s.Objects = s.Objects[:0]
	s.Particles = s.Particles[:0]
	s.Trail = s.Trail[:0]
	s.Popups = s.Popups[:0]
	s.Combo = ComboState{}
}

func (s *State) Playing() bool {
	return s.Session.Status == StatusPlaying
}
