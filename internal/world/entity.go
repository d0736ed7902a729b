package world

import (
	"math"
	"time"
)

// Vec2 is a point or velocity in play-area units (pixels of the virtual
// canvas, y growing downward).
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Lerp returns the point a fraction t of the way from v to o.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

type ObjectID uint32

type Kind uint8

const (
	KindFruit Kind = iota
	KindBomb
)

func (k Kind) String() string {
	if k == KindBomb {
		return "bomb"
	}
	return "fruit"
}

// Side marks which half of a sliced fruit an object is. SideNone is a whole
// object.
type Side uint8

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// FallingObject is a fruit, a bomb, or a decorative half of a sliced fruit.
type FallingObject struct {
	ID       ObjectID
	Pos      Vec2
	Vel      Vec2
	Radius   float64
	Kind     Kind
	Template string // fruit table entry name
	Glyph    rune
	Color    string // "#rrggbb"
	Sliced   bool
	Rotation float64
	Spin     float64 // radians per frame
	Side     Side
}

func (o *FallingObject) IsHalf() bool { return o.Side != SideNone }

// Slicable reports whether the object still takes part in collision tests.
func (o *FallingObject) Slicable() bool { return !o.Sliced && o.Side == SideNone }

// Half builds one half-variant of o. Only the value's own shape is copied;
// the half is born sliced so it never re-enters collision.
func (o *FallingObject) Half(id ObjectID, side Side, push, lift, spin float64) FallingObject {
	dir := 1.0
	if side == SideLeft {
		dir = -1
	}
	return FallingObject{
		ID:       id,
		Pos:      o.Pos,
		Vel:      Vec2{X: o.Vel.X + dir*push, Y: o.Vel.Y - lift},
		Radius:   o.Radius,
		Kind:     o.Kind,
		Template: o.Template,
		Glyph:    o.Glyph,
		Color:    o.Color,
		Sliced:   true,
		Rotation: o.Rotation,
		Spin:     dir * spin,
		Side:     side,
	}
}

type Particle struct {
	Pos   Vec2
	Vel   Vec2
	Color string
	Life  float64 // (0,1]
	Size  float64
}

type TrailPoint struct {
	Pos Vec2
	At  time.Time
}

// ComboState is the running chain of fruit slices.
type ComboState struct {
	Count   int
	LastHit time.Time
	LastPos Vec2
}

// Popup is the floating "N combo" feedback.
type Popup struct {
	Pos   Vec2
	Count int
	Life  float64
}

type Status uint8

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusGameOver
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

type Session struct {
	Status        Status
	Score         int
	TimeRemaining int // seconds
}
