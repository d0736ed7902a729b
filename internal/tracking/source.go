// Package tracking adapts external fingertip trackers to a single push-style
// capability: a Source delivers normalized samples to one callback.
package tracking

import "context"

// Sample is one tracker result. X and Y are normalized to [0,1] of the
// capture frame and only meaningful when Detected is true.
type Sample struct {
	Detected bool
	X, Y     float64
}

// NoHand is the sample reported when the tracker sees no hand.
var NoHand = Sample{}

// Source is a tracking session. The callback may be invoked from any
// goroutine the adapter owns; callers that need single-threaded delivery
// queue samples themselves.
type Source interface {
	OnSample(fn func(Sample))
	Start(ctx context.Context) error
	Stop() error
}
