package net

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/net/packet"
)

// writeTimeout bounds a single frame write to a tracker.
const writeTimeout = 5 * time.Second

// FrameHandler receives every frame a session reads, on that session's read
// goroutine.
type FrameHandler func(s *Session, payload []byte)

// Session is one tracker connection. Reads and writes each run on their own
// goroutine; the handler decides what a frame means.
type Session struct {
	ID   uint64
	IP   string
	conn net.Conn

	state atomic.Int32 // packet.SessionState

	OutQueue chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second frame limiter, touched only by readLoop.
	maxPerSec int
	count     int
	resetAt   int64

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, outSize, maxPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:        id,
		IP:        conn.RemoteAddr().String(),
		conn:      conn,
		OutQueue:  make(chan []byte, outSize),
		closeCh:   make(chan struct{}),
		maxPerSec: maxPerSec,
		log:       log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateHandshake))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start launches the reader and writer goroutines.
func (s *Session) Start(handle FrameHandler) {
	go s.readLoop(handle)
	go s.writeLoop()
}

// Send queues a frame payload. A tracker that stops reading is dropped
// rather than allowed to stall the caller.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		s.log.Warn("輸出佇列已滿，斷開緩慢的追蹤端")
		s.Close()
	}
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

func (s *Session) readLoop(handle FrameHandler) {
	defer s.Close()

	for {
		payload, err := ReadFrame(s.conn)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("讀取錯誤", zap.Error(err))
			}
			return
		}

		if s.maxPerSec > 0 {
			now := time.Now().Unix()
			if now != s.resetAt {
				s.count = 0
				s.resetAt = now
			}
			s.count++
			if s.count > s.maxPerSec {
				s.log.Warn("封包頻率超限，斷開連線", zap.Int("fps", s.count))
				return
			}
		}

		handle(s, payload)
		if s.closed.Load() {
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if len(data) > 0 {
				s.log.Debug("送出封包",
					zap.String("op", fmt.Sprintf("0x%02X(%d)", data[0], data[0])),
					zap.Int("len", len(data)),
				)
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := WriteFrame(s.conn, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("寫入錯誤", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
