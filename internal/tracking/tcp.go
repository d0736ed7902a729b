package tracking

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	gonet "github.com/airslash/airslash/internal/net"
	"github.com/airslash/airslash/internal/net/packet"
)

const (
	// tcpMaxFramesPerSecond disconnects a tracker that floods the loop.
	tcpMaxFramesPerSecond = 480
	tcpOutQueue           = 4
)

// TCPSource accepts native trackers speaking the framed binary protocol:
// C_OPCODE_HELLO first, then a stream of C_OPCODE_SAMPLE / C_OPCODE_NO_HAND.
type TCPSource struct {
	emitter

	addr string
	log  *zap.Logger
	reg  *packet.Registry

	mu       sync.Mutex
	srv      *gonet.Server
	sessions map[uint64]*gonet.Session
	done     chan struct{}
}

func NewTCPSource(addr string, log *zap.Logger) *TCPSource {
	s := &TCPSource{
		addr:     addr,
		log:      log,
		reg:      packet.NewRegistry(log),
		sessions: make(map[uint64]*gonet.Session),
	}
	s.reg.Register(packet.C_OPCODE_HELLO, 1, s.handleHello, packet.StateHandshake)
	s.reg.Register(packet.C_OPCODE_SAMPLE, 5, s.handleSample, packet.StateStreaming)
	s.reg.Register(packet.C_OPCODE_NO_HAND, 0, s.handleNoHand, packet.StateStreaming)
	return s
}

func (s *TCPSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return errors.New("tcp tracker already started")
	}

	srv, err := gonet.NewServer(s.addr, tcpOutQueue, tcpMaxFramesPerSecond, s.log)
	if err != nil {
		return fmt.Errorf("listen tcp tracker %s: %w", s.addr, err)
	}
	s.srv = srv
	s.done = make(chan struct{})

	go srv.AcceptLoop()
	go s.serve(ctx, srv, s.done)

	s.log.Info("TCP 追蹤伺服器監聽中", zap.String("addr", srv.Addr().String()))
	return nil
}

func (s *TCPSource) serve(ctx context.Context, srv *gonet.Server, done <-chan struct{}) {
	for {
		select {
		case sess := <-srv.NewSessions():
			s.mu.Lock()
			s.sessions[sess.ID] = sess
			s.mu.Unlock()
			sess.Start(s.handleFrame)
			go s.watch(sess)
		case <-ctx.Done():
			s.Stop()
			return
		case <-done:
			return
		}
	}
}

func (s *TCPSource) watch(sess *gonet.Session) {
	<-sess.Done()
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	s.emit(NoHand)
}

// Stop closes the listener and every tracker connection.
func (s *TCPSource) Stop() error {
	s.mu.Lock()
	srv := s.srv
	sessions := make([]*gonet.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	if srv != nil {
		close(s.done)
	}
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	srv.Shutdown()
	for _, sess := range sessions {
		sess.Close()
	}
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *TCPSource) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	return s.srv.Addr()
}

func (s *TCPSource) handleFrame(sess *gonet.Session, payload []byte) {
	if err := s.reg.Dispatch(sess, sess.State(), payload); err != nil {
		s.log.Warn("斷開違規的追蹤端", zap.Uint64("session", sess.ID), zap.Error(err))
		sess.Close()
	}
}

func (s *TCPSource) handleHello(sess any, r *packet.Reader) error {
	v := r.ReadC()
	if v != packet.ProtocolVersion {
		return fmt.Errorf("unsupported protocol version %d", v)
	}
	ss := sess.(*gonet.Session)
	ss.SetState(packet.StateStreaming)

	w := packet.NewWriter(packet.S_OPCODE_WELCOME)
	w.WriteC(packet.ProtocolVersion)
	ss.Send(w.Bytes())
	return nil
}

func (s *TCPSource) handleSample(_ any, r *packet.Reader) error {
	detected := r.ReadC()
	x, y := r.ReadH(), r.ReadH()
	if detected == 0 {
		s.emit(NoHand)
		return nil
	}
	s.emit(Sample{
		Detected: true,
		X:        float64(x) / packet.CoordScale,
		Y:        float64(y) / packet.CoordScale,
	})
	return nil
}

func (s *TCPSource) handleNoHand(any, *packet.Reader) error {
	s.emit(NoHand)
	return nil
}
