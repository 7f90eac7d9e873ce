package transport

import (
	"context"
	"net"
	"time"
)

// TCPListener accepts plain TCP connections, grounded on the donor's
// internal/net/server.go AcceptLoop shape.
type TCPListener struct {
	ln net.Listener
}

// ListenTCP binds addr for plain TCP connections.
func ListenTCP(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln}, nil
}

// Accept blocks until a new connection arrives or the listener is closed.
func (l *TCPListener) Accept() (*TCPConn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return &TCPConn{nc: c}, nil
}

// Close stops accepting new connections.
func (l *TCPListener) Close() error {
	return l.ln.Close()
}

// Addr returns the bound address.
func (l *TCPListener) Addr() string {
	return l.ln.Addr().String()
}

// TCPConn is a Conn backed by a raw net.Conn, using the length-prefixed
// framing in frame.go. Reads deliberately block up to the context deadline
// rather than dropping packets — matching the donor's "blocking InQueue
// prevents desync" session.go comment — and surface a deadline exceed as
// the distinct ErrTimeout outcome, never a hard error.
type TCPConn struct {
	nc net.Conn
}

func (c *TCPConn) ReadPacket(ctx context.Context) ([]byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.nc.SetReadDeadline(dl)
	} else {
		_ = c.nc.SetReadDeadline(time.Time{})
	}
	data, err := readFrame(c.nc)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, ErrTimeout
		}
		return nil, err
	}
	return data, nil
}

func (c *TCPConn) WritePacket(ctx context.Context, payload []byte) error {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.nc.SetWriteDeadline(dl)
	} else {
		_ = c.nc.SetWriteDeadline(time.Time{})
	}
	return writeFrame(c.nc, payload)
}

func (c *TCPConn) RemoteAddr() string {
	return c.nc.RemoteAddr().String()
}

func (c *TCPConn) Close() error {
	return c.nc.Close()
}
