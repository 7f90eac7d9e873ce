// server.go implements the login endpoint's own accept loop: a single
// request in, a single reply out, then close, grounded on the status
// endpoint's single-shot-per-connection shape (internal/status/server.go)
// since both are stateless request/response protocols layered on the same
// length-prefixed transport.Conn the game endpoint uses.
package login

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/transport"
)

const requestTimeout = 10 * time.Second

// legacyVersionThreshold separates clients old enough to want the donor's
// single combined reply packet (client version below the threshold) from
// newer clients that get a dedicated character-list packet. The split is
// by client version alone: the transport a request arrived on (TCP or
// WebSocket) is not consulted.
const legacyVersionThreshold = 860

var (
	errWrongOpcode      = errors.New("login: expected login request opcode")
	errMalformedRequest = errors.New("login: malformed login request")
)

// acceptFunc abstracts one transport's Accept, since *transport.TCPListener
// and *transport.WebSocketListener each return their own concrete Conn
// type rather than transport.Conn directly.
type acceptFunc func() (transport.Conn, error)

// Server runs the login endpoint: one Flow.Attempt call per connection.
// Two Servers are normally run side by side — one over TCP, one over
// WebSocket — sharing the same Flow, mirroring how the game endpoint runs
// both transports over one worldstate.World.
type Server struct {
	accept acceptFunc
	close  func() error
	flow   *Flow
	log    *zap.Logger
}

// NewTCPServer builds a login Server over a bound TCPListener.
func NewTCPServer(ln *transport.TCPListener, flow *Flow, log *zap.Logger) *Server {
	return &Server{
		accept: func() (transport.Conn, error) { return ln.Accept() },
		close:  ln.Close,
		flow:   flow,
		log:    log,
	}
}

// NewWebSocketServer builds a login Server over a bound WebSocketListener.
func NewWebSocketServer(ln *transport.WebSocketListener, flow *Flow, log *zap.Logger) *Server {
	return &Server{
		accept: func() (transport.Conn, error) { return ln.Accept() },
		close:  ln.Close,
		flow:   flow,
		log:    log,
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.close()
}

// AcceptLoop runs in its own goroutine until the listener is closed.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn transport.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	payload, err := conn.ReadPacket(ctx)
	cancel()
	if err != nil {
		return
	}

	account, password, clientVersion, err := parseLoginRequest(payload)
	if err != nil {
		s.log.Debug("login: malformed request", zap.Error(err), zap.String("peer", conn.RemoteAddr()))
		return
	}

	result, queuePos, err := s.flow.Attempt(peerHost(conn.RemoteAddr()), account, password)
	if err != nil {
		s.log.Warn("login: attempt failed", zap.Error(err), zap.String("account", account))
		result = ResultBadCredentials
	}

	writeCtx, writeCancel := context.WithTimeout(context.Background(), requestTimeout)
	defer writeCancel()

	if result != ResultSuccess {
		_ = conn.WritePacket(writeCtx, buildLoginResultPacket(result, queuePos))
		return
	}

	sel, ok := s.flow.registry.Peek(peerHost(conn.RemoteAddr()))
	if !ok {
		_ = conn.WritePacket(writeCtx, buildLoginResultPacket(ResultBadCredentials, 0))
		return
	}

	if clientVersion < legacyVersionThreshold {
		_ = conn.WritePacket(writeCtx, buildLegacySuccessPacket(sel))
		return
	}
	if err := conn.WritePacket(writeCtx, buildLoginResultPacket(ResultSuccess, 0)); err != nil {
		return
	}
	_ = conn.WritePacket(writeCtx, buildCharacterListPacket(sel))
}

func peerHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func parseLoginRequest(payload []byte) (account, password string, clientVersion uint16, err error) {
	r := codec.NewReader(payload)
	if r.Opcode() != codec.OpCLoginRequest {
		return "", "", 0, errWrongOpcode
	}
	clientVersion = r.ReadU16()
	account = r.ReadString()
	password = r.ReadString()
	if r.Err() != nil || account == "" {
		return "", "", 0, errMalformedRequest
	}
	return account, password, clientVersion, nil
}
