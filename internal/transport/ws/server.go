package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"swole.dev/internal/protocol"
	"swole.dev/internal/sim/tuning"
	"swole.dev/internal/sim/world"
)

type Server struct {
	reg      *world.Registry
	validate *protocol.Validator
	limits   tuning.SessionLimits
	log      *log.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	closing  bool
	sessions sync.WaitGroup
}

func NewServer(reg *world.Registry, v *protocol.Validator, limits tuning.SessionLimits, logger *log.Logger) *Server {
	s := &Server{
		reg:      reg,
		validate: v,
		limits:   limits,
		log:      logger,
		conns:    make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if !s.track(conn) {
			return
		}
		defer s.untrack(conn)

		sessionID, ok := s.handshake(conn)
		if !ok {
			return
		}
		s.log.Printf("session %s connected from %s", sessionID, r.RemoteAddr)
		defer s.log.Printf("session %s closed", sessionID)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, s.limits.MaxQueue)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(s.limits.WriteTimeout()))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						// Unblocks the reader's ReadMessage.
						_ = conn.Close()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			if d := s.limits.ReadTimeout(); d > 0 {
				_ = conn.SetReadDeadline(time.Now().Add(d))
			}
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			resp := s.Dispatch(msg)
			b, err := json.Marshal(resp)
			if err != nil {
				s.log.Printf("session %s: marshal %T: %v", sessionID, resp, err)
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close drops every live session and waits for their handlers to return.
// http.Server.Shutdown does not wait for hijacked connections, so call this
// before closing anything the registry writes to.
func (s *Server) Close() {
	s.mu.Lock()
	s.closing = true
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.sessions.Wait()
}

func (s *Server) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.sessions.Add(1)
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.sessions.Done()
}

func (s *Server) handshake(conn *websocket.Conn) (string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", false
	}
	if base.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", false
	}
	if err := s.validate.Validate(protocol.TypeHello, msg); err != nil {
		closeWith(conn, "bad HELLO")
		return "", false
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		Worlds:          worldRefs(s.reg.Worlds()),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", false
	}
	return welcome.SessionID, true
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
