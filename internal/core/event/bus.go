package event

import (
	"reflect"
	"sync"
)

// Bus queues game events and hands them to typed subscribers one frame
// later. Emit and the dispatch calls belong to the loop goroutine;
// Subscribe may run from setup code on any goroutine.
type Bus struct {
	subMu sync.Mutex
	subs  map[reflect.Type][]func(any)

	pending []envelope // emitted this frame
	ready   []envelope // being delivered
}

type envelope struct {
	kind    reflect.Type
	payload any
}

func NewBus() *Bus {
	return &Bus{subs: make(map[reflect.Type][]func(any))}
}

func kindOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Emit queues ev for delivery after the next SwapBuffers.
func Emit[T any](b *Bus, ev T) {
	b.pending = append(b.pending, envelope{kind: kindOf[T](), payload: ev})
}

// Subscribe adds fn as a handler for every event of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	k := kindOf[T]()
	b.subs[k] = append(b.subs[k], func(v any) { fn(v.(T)) })
}

// SwapBuffers makes this frame's events ready and reuses the delivered
// slice for the next frame.
func (b *Bus) SwapBuffers() {
	b.ready, b.pending = b.pending, b.ready[:0]
}

// DispatchAll delivers the ready events in emission order. Events emitted
// by handlers wait for the next swap.
func (b *Bus) DispatchAll() {
	for _, e := range b.ready {
		for _, h := range b.subs[e.kind] {
			h(e.payload)
		}
	}
}

// Pending reports how many events wait for the next swap.
func (b *Bus) Pending() int {
	return len(b.pending)
}
