// Package transport implements the uniform packet transport contract
// shared by plain TCP and WebSocket connections (spec.md §4.2/§6):
// "read one length-prefixed packet or report timeout", "write one
// length-prefixed packet". Grounded on the donor's internal/net package
// (codec.go framing, session.go's per-session goroutine shape), with
// TCP framing corrected to this protocol's length convention (the length
// prefix here is the payload length only, not length-including-header).
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPacketBytes bounds a single frame's payload size.
const MaxPacketBytes = 16384

// ErrTimeout is returned by ReadPacket when no packet arrived before the
// deadline. It is a distinct outcome, not an error, so callers can tick
// idle connections instead of disconnecting them (spec.md §4.2).
var ErrTimeout = errors.New("transport: read timeout")

// ErrRateLimited names a rate-limit refusal. No Conn in this package
// returns it: RateLimiter.Allow reports a refusal as false and leaves the
// response to its caller.
var ErrRateLimited = errors.New("transport: rate limited")

// Conn is the uniform contract both transports implement.
type Conn interface {
	ReadPacket(ctx context.Context) ([]byte, error)
	WritePacket(ctx context.Context, payload []byte) error
	RemoteAddr() string
	Close() error
}

// readFrame reads one TCP frame: u16 LE length, then exactly that many
// payload bytes (spec.md §6).
func readFrame(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	payloadLen := int(binary.LittleEndian.Uint16(header[:]))
	if payloadLen == 0 || payloadLen > MaxPacketBytes {
		return nil, fmt.Errorf("transport: invalid frame length %d", payloadLen)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("transport: read frame payload: %w", err)
	}
	return payload, nil
}

// writeFrame writes one TCP frame: u16 LE length, then the payload.
func writeFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPacketBytes {
		return fmt.Errorf("transport: payload too large: %d", len(payload))
	}
	var header [2]byte
	binary.LittleEndian.PutUint16(header[:], uint16(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
