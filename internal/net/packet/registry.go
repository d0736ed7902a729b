package packet

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SessionState is the protocol phase of a tracker connection.
type SessionState uint8

const (
	StateHandshake SessionState = iota // awaiting C_OPCODE_HELLO
	StateStreaming                     // version accepted, samples flow
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStreaming:
		return "streaming"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

var (
	ErrEmptyFrame   = errors.New("empty frame")
	ErrWrongState   = errors.New("opcode not allowed in session state")
	ErrShortPayload = errors.New("payload shorter than opcode requires")
)

// HandlerFunc handles one frame. The session is opaque so this package
// stays independent of the transport. Any error is a protocol violation.
type HandlerFunc func(sess any, r *Reader) error

type route struct {
	fn     HandlerFunc
	minLen int
	states uint8 // bit per SessionState
}

// Registry routes frames by opcode. A route fixes the session states the
// opcode is legal in and the payload length its handler may rely on.
type Registry struct {
	routes [256]*route
	log    *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{log: log}
}

// Register routes opcode to fn. Frames whose payload (bytes after the
// opcode) is shorter than minLen are rejected before fn runs.
func (reg *Registry) Register(opcode byte, minLen int, fn HandlerFunc, states ...SessionState) {
	rt := &route{fn: fn, minLen: minLen}
	for _, s := range states {
		rt.states |= 1 << s
	}
	reg.routes[opcode] = rt
}

// Dispatch runs the handler for data[0]. Unknown opcodes are skipped so
// newer trackers can talk to older games.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFrame
	}
	opcode := data[0]
	rt := reg.routes[opcode]
	if rt == nil {
		reg.log.Debug("略過未知操作碼", zap.Uint8("opcode", opcode), zap.Stringer("state", state))
		return nil
	}
	if rt.states&(1<<state) == 0 {
		return fmt.Errorf("opcode %d in %s: %w", opcode, state, ErrWrongState)
	}
	if n := len(data) - 1; n < rt.minLen {
		return fmt.Errorf("opcode %d: %d of %d bytes: %w", opcode, n, rt.minLen, ErrShortPayload)
	}
	return reg.call(rt.fn, sess, NewReader(data), opcode)
}

func (reg *Registry) call(fn HandlerFunc, sess any, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("封包處理器 panic", zap.Uint8("opcode", opcode), zap.Any("panic", rec))
			err = fmt.Errorf("opcode %d: handler panic: %v", opcode, rec)
		}
	}()
	if err := fn(sess, r); err != nil {
		return fmt.Errorf("opcode %d: %w", opcode, err)
	}
	return nil
}
