package event

import "testing"

type ping struct{ n int }
type pong struct{ s string }

func TestEmitIsDeliveredAfterSwap(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.n) })

	Emit(b, ping{1})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("event delivered before swap: %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("got %v, want [1]", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event delivered twice: %v", got)
	}
}

func TestDispatchPreservesEmissionOrderAcrossTypes(t *testing.T) {
	b := NewBus()
	var order []string
	Subscribe(b, func(p ping) { order = append(order, "ping") })
	Subscribe(b, func(p pong) { order = append(order, "pong:"+p.s) })

	Emit(b, pong{"a"})
	Emit(b, ping{1})
	Emit(b, pong{"b"})
	if b.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", b.Pending())
	}
	b.SwapBuffers()
	b.DispatchAll()

	want := []string{"pong:a", "ping", "pong:b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestHandlerEmitLandsInNextFrame(t *testing.T) {
	b := NewBus()
	var pongs int
	Subscribe(b, func(p ping) { Emit(b, pong{"echo"}) })
	Subscribe(b, func(p pong) { pongs++ })

	Emit(b, ping{1})
	b.SwapBuffers()
	b.DispatchAll()
	if pongs != 0 {
		t.Fatalf("echo delivered in the same frame")
	}
	b.SwapBuffers()
	b.DispatchAll()
	if pongs != 1 {
		t.Fatalf("pongs = %d, want 1", pongs)
	}
}
