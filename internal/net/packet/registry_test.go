package packet

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestRegistryStateGate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got []byte
	reg.Register(C_OPCODE_SAMPLE, 1, func(_ any, r *Reader) error {
		got = append(got, r.ReadC())
		return nil
	}, StateStreaming)

	frame := []byte{C_OPCODE_SAMPLE, 7}
	if err := reg.Dispatch(nil, StateHandshake, frame); !errors.Is(err, ErrWrongState) {
		t.Fatalf("handshake dispatch = %v, want %v", err, ErrWrongState)
	}
	if err := reg.Dispatch(nil, StateStreaming, frame); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("handler saw %v", got)
	}
}

func TestRegistryMultipleStates(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	calls := 0
	reg.Register(C_OPCODE_NO_HAND, 0, func(any, *Reader) error { calls++; return nil },
		StateHandshake, StateStreaming)

	for _, s := range []SessionState{StateHandshake, StateStreaming} {
		if err := reg.Dispatch(nil, s, []byte{C_OPCODE_NO_HAND}); err != nil {
			t.Errorf("%s: %v", s, err)
		}
	}
	if err := reg.Dispatch(nil, StateDisconnecting, []byte{C_OPCODE_NO_HAND}); !errors.Is(err, ErrWrongState) {
		t.Errorf("disconnecting: err = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRegistryRejectsShortPayload(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	called := false
	reg.Register(C_OPCODE_SAMPLE, 5, func(any, *Reader) error { called = true; return nil }, StateStreaming)

	err := reg.Dispatch(nil, StateStreaming, []byte{C_OPCODE_SAMPLE, 1, 0, 0})
	if !errors.Is(err, ErrShortPayload) {
		t.Fatalf("err = %v, want %v", err, ErrShortPayload)
	}
	if called {
		t.Error("handler ran on a short payload")
	}
}

func TestRegistryIgnoresUnknownOpcode(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Dispatch(nil, StateStreaming, []byte{0xEE}); err != nil {
		t.Fatalf("unknown opcode: %v", err)
	}
	if err := reg.Dispatch(nil, StateStreaming, nil); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("empty frame: err = %v", err)
	}
}

func TestRegistryHandlerFailures(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	errBad := errors.New("bad sample")
	reg.Register(C_OPCODE_SAMPLE, 0, func(any, *Reader) error { return errBad }, StateStreaming)
	reg.Register(C_OPCODE_NO_HAND, 0, func(any, *Reader) error { panic("boom") }, StateStreaming)

	if err := reg.Dispatch(nil, StateStreaming, []byte{C_OPCODE_SAMPLE}); !errors.Is(err, errBad) {
		t.Fatalf("err = %v, want %v", err, errBad)
	}
	if err := reg.Dispatch(nil, StateStreaming, []byte{C_OPCODE_NO_HAND}); err == nil {
		t.Fatalf("panic not reported")
	}
}

func TestReaderWriter(t *testing.T) {
	w := NewWriter(C_OPCODE_SAMPLE)
	w.WriteC(1)
	w.WriteH(0x1234)
	w.WriteH(0xFFFF)

	r := NewReader(w.Bytes())
	if r.Opcode() != C_OPCODE_SAMPLE {
		t.Fatalf("opcode = %d", r.Opcode())
	}
	if c, h, h2 := r.ReadC(), r.ReadH(), r.ReadH(); c != 1 || h != 0x1234 || h2 != 0xFFFF {
		t.Fatalf("read %d %#x %#x", c, h, h2)
	}
	if r.Short() || r.Remaining() != 0 {
		t.Fatalf("short=%v remaining=%d", r.Short(), r.Remaining())
	}
	if r.ReadH() != 0 || !r.Short() {
		t.Fatalf("read past end not flagged")
	}
}
