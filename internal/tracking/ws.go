package tracking

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/airslash/airslash/internal/net/packet"
)

const (
	wsReadLimit    = 64 << 10
	wsPongWait     = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteWait    = 10 * time.Second
)

// WSSource accepts browser or script trackers over WebSocket.
type WSSource struct {
	emitter

	addr string
	path string
	log  *zap.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	ln    net.Listener
	srv   *http.Server
	conns map[*wsConn]struct{}
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	*websocket.Conn
	wmu sync.Mutex
}

func (c *wsConn) write(messageType int, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.WriteMessage(messageType, data)
}

func NewWSSource(addr, path string, log *zap.Logger) *WSSource {
	return &WSSource{
		addr: addr,
		path: path,
		log:  log,
		upgrader: websocket.Upgrader{
			// Trackers run locally, often from a file:// page.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*wsConn]struct{}),
	}
}

func (s *WSSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return errors.New("websocket tracker already started")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen websocket tracker %s: %w", s.addr, err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.serveWS)
	s.ln = ln
	s.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	srv := s.srv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("WebSocket 追蹤伺服器停止", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.log.Info("WebSocket 追蹤伺服器監聽中", zap.String("addr", ln.Addr().String()), zap.String("path", s.path))
	return nil
}

// Stop closes the listener and every tracker connection.
func (s *WSSource) Stop() error {
	s.mu.Lock()
	srv := s.srv
	conns := make([]*wsConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	for _, c := range conns {
		c.Close()
	}
	return srv.Close()
}

// Addr returns the listening address, or nil before Start.
func (s *WSSource) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *WSSource) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket 升級失敗", zap.Error(err))
		return
	}
	c := &wsConn{Conn: ws}

	s.mu.Lock()
	if s.srv == nil {
		s.mu.Unlock()
		ws.Close()
		return
	}
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.Close()
		// A vanished tracker means no hand.
		s.emit(NoHand)
	}()

	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Info("WebSocket 追蹤端已連線")

	c.SetReadLimit(wsReadLimit)
	_ = c.SetReadDeadline(time.Now().Add(wsPongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.write(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			log.Debug("WebSocket 追蹤端已關閉", zap.Error(err))
			return
		}
		if err := s.handleMessage(c, msg); err != nil {
			log.Warn("追蹤訊息格式錯誤", zap.Error(err))
		}
	}
}

func (s *WSSource) handleMessage(c *wsConn, msg []byte) error {
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	switch env.T {
	case MsgSample:
		p, err := DecodePayload[SamplePayload](env)
		if err != nil {
			return err
		}
		s.emit(p.Sample())
	case MsgNoHand:
		s.emit(NoHand)
	case MsgHello:
		reply, err := Encode(MsgWelcome, HelloPayload{Version: packet.ProtocolVersion})
		if err != nil {
			return err
		}
		return c.write(websocket.TextMessage, reply)
	default:
		return fmt.Errorf("unknown message type %q", env.T)
	}
	return nil
}
