package transport

import (
	"context"
	"net"
	"net/http"

	"github.com/coder/websocket"
)

// WebSocketListener runs an HTTP/1.1 Upgrade endpoint alongside the TCP
// listener (spec.md §4.2/§6), grounded on the retrieved henry MMO server's
// network.StartWebSocketServer pattern (its own goroutine, shared Conn
// contract). Binary frames carry one or more back-to-back length-prefixed
// packets; client frames MUST be masked, which the library enforces.
type WebSocketListener struct {
	ln      net.Listener
	srv     *http.Server
	conns   chan *WebSocketConn
	originAllowlist []string
}

// ListenWebSocket binds addr and starts serving HTTP Upgrade requests.
// originAllowlist is optional; empty means no origin constraint.
func ListenWebSocket(addr string, originAllowlist []string) (*WebSocketListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l := &WebSocketListener{
		ln:              ln,
		conns:           make(chan *WebSocketConn, 64),
		originAllowlist: originAllowlist,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleUpgrade)
	l.srv = &http.Server{Handler: mux}
	go l.srv.Serve(ln)
	return l, nil
}

func (l *WebSocketListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{
		OriginPatterns: l.originAllowlist,
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		return
	}
	select {
	case l.conns <- &WebSocketConn{c: c, remote: r.RemoteAddr}:
	default:
		c.Close(websocket.StatusTryAgainLater, "server busy")
	}
}

// Accept blocks until a new WebSocket session has completed its upgrade
// handshake, or the listener is closed.
func (l *WebSocketListener) Accept() (*WebSocketConn, error) {
	c, ok := <-l.conns
	if !ok {
		return nil, net.ErrClosed
	}
	return c, nil
}

// Close stops the HTTP server and listener.
func (l *WebSocketListener) Close() error {
	close(l.conns)
	return l.srv.Close()
}

func (l *WebSocketListener) Addr() string {
	return l.ln.Addr().String()
}

// WebSocketConn is a Conn backed by a coder/websocket connection. Each
// binary frame may carry one or more back-to-back length-prefixed
// packets (spec.md §6); frames are buffered and drained packet-by-packet.
type WebSocketConn struct {
	c      *websocket.Conn
	remote string

	pending []byte // undrained bytes from the last frame read
}

func (wc *WebSocketConn) ReadPacket(ctx context.Context) ([]byte, error) {
	for {
		if len(wc.pending) >= 2 {
			payloadLen := int(wc.pending[0]) | int(wc.pending[1])<<8
			if payloadLen == 0 || payloadLen > MaxPacketBytes {
				return nil, errFrameLen
			}
			if len(wc.pending) >= 2+payloadLen {
				pkt := wc.pending[2 : 2+payloadLen]
				wc.pending = wc.pending[2+payloadLen:]
				out := make([]byte, len(pkt))
				copy(out, pkt)
				return out, nil
			}
		}

		typ, data, err := wc.c.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrTimeout
			}
			return nil, err
		}
		if typ != websocket.MessageBinary {
			continue
		}
		wc.pending = append(wc.pending, data...)
	}
}

func (wc *WebSocketConn) WritePacket(ctx context.Context, payload []byte) error {
	buf := make([]byte, 2+len(payload))
	buf[0] = byte(len(payload))
	buf[1] = byte(len(payload) >> 8)
	copy(buf[2:], payload)
	return wc.c.Write(ctx, websocket.MessageBinary, buf)
}

func (wc *WebSocketConn) RemoteAddr() string {
	return wc.remote
}

func (wc *WebSocketConn) Close() error {
	return wc.c.Close(websocket.StatusNormalClosure, "")
}

var errFrameLen = &frameLenError{}

type frameLenError struct{}

func (*frameLenError) Error() string { return "transport: invalid websocket frame length" }
