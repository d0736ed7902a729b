package tracking

import "sync"

// emitter holds the single sample callback of a source. Adapters embed it to
// satisfy OnSample.
type emitter struct {
	mu sync.RWMutex
	fn func(Sample)
}

func (e *emitter) OnSample(fn func(Sample)) {
	e.mu.Lock()
	e.fn = fn
	e.mu.Unlock()
}

func (e *emitter) emit(s Sample) {
	e.mu.RLock()
	fn := e.fn
	e.mu.RUnlock()
	if fn != nil {
		fn(s)
	}
}

// clamp01 keeps a tracker coordinate inside the capture frame.
func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
