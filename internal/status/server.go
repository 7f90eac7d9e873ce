// Package status implements the standalone Status XML/Info endpoint
// (spec.md §4.9): a small dual-mode listener answering world metadata
// queries, separate from the game transport. Grounded on the donor's
// internal/net/server.go AcceptLoop (plain net.Listener accept loop,
// per-connection goroutine) but single-shot per connection — read one
// request, write one response, close — rather than session-held.
package status

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
	maxRequest   = 512
)

// SnapshotFunc supplies the current world metadata for one request.
type SnapshotFunc func() Snapshot

// Server is the status endpoint's accept loop.
type Server struct {
	listener       net.Listener
	log            *zap.Logger
	snapshot       SnapshotFunc
	online         OnlineCheck
	legacyEncoding string

	peak atomic.Uint32
}

// NewServer binds bindAddr and returns a Server ready for AcceptLoop.
func NewServer(bindAddr string, snapshot SnapshotFunc, online OnlineCheck, legacyEncoding string, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{listener: ln, log: log, snapshot: snapshot, online: online, legacyEncoding: legacyEncoding}, nil
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}

// AcceptLoop runs in its own goroutine until the listener is closed.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

// bumpPeak records an online-player count observation and raises Peak via
// a compare-and-swap retry loop, grounded on the donor's atomic.Uint64
// session-id counter idiom (Server.nextID in internal/net/server.go).
func (s *Server) bumpPeak(online int) int {
	v := uint32(online)
	for {
		cur := s.peak.Load()
		if v <= cur {
			return int(cur)
		}
		if s.peak.CompareAndSwap(cur, v) {
			return int(v)
		}
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	buf := make([]byte, maxRequest)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}
	req := buf[:n]

	snap := s.snapshot()
	peak := s.bumpPeak(snap.PlayersOnline)

	var reply []byte
	if looksLikeHTTPGet(req) {
		xmlBody, err := buildInfoXML(snap, peak, s.legacyEncoding)
		if err != nil {
			s.log.Warn("status: build info xml", zap.Error(err))
			return
		}
		reply = wrapHTTPResponse(xmlBody)
	} else {
		reply, err = handleRequest(req, snap, peak, s.legacyEncoding, s.online)
		if err != nil {
			s.log.Debug("status: malformed request", zap.Error(err), zap.String("peer", conn.RemoteAddr().String()))
			return
		}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, _ = conn.Write(reply)
}
