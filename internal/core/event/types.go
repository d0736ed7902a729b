package event

import "github.com/airslash/airslash/internal/world"

type GameStarted struct {
	Duration int // seconds
}

// GameOver is emitted once when the countdown reaches zero; Score already
// includes any combo bonus finalized at the end of the round.
type GameOver struct {
	Score int
}

type FruitSliced struct {
	ObjectID world.ObjectID
	Template string
	Pos      world.Vec2
	Score    int // score after the slice
}

type BombSliced struct {
	ObjectID world.ObjectID
	Pos      world.Vec2
	Score    int
}

// ComboFinished is emitted when a chain at or above the threshold is
// finalized and its bonus awarded.
type ComboFinished struct {
	Count int
	Bonus int
	Pos   world.Vec2
}

type ObjectsSpawned struct {
	Count int
	Bombs int
}
