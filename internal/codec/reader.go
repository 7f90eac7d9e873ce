// Package codec implements the wire-level PacketReader/PacketWriter pair:
// little-endian primitives, length-prefixed strings, and the
// viewport-aware map/creature serializers. Grounded on
// internal/net/packet/{reader,writer}.go's method-per-primitive shape
// (see DESIGN.md), adapted to this protocol's string and primitive set.
package codec

import "errors"

// ErrShortRead is returned when a read would run past the end of the buffer.
var ErrShortRead = errors.New("codec: short read")

// Reader decodes a single packet payload, starting after the opcode byte.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader wraps data (the full payload, including its opcode byte) for
// reading. The opcode itself is available via Opcode(); subsequent reads
// start right after it.
func NewReader(data []byte) *Reader {
	r := &Reader{data: data}
	if len(data) > 0 {
		r.off = 1
	}
	return r
}

// Opcode returns the packet's first byte, or 0 if the buffer is empty.
func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Err is set the first time a read runs past the buffer end; all further
// reads return zero values once set, matching the donor's "never panic on
// malformed packets" discipline.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.err = ErrShortRead
		return false
	}
	return true
}

func (r *Reader) ReadU8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *Reader) ReadU16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := uint16(r.data[r.off]) | uint16(r.data[r.off+1])<<8
	r.off += 2
	return v
}

func (r *Reader) ReadU32() uint32 {
	if !r.need(4) {
		return 0
	}
	b := r.data[r.off : r.off+4]
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	r.off += 4
	return v
}

func (r *Reader) ReadU64() uint64 {
	if !r.need(8) {
		return 0
	}
	b := r.data[r.off : r.off+8]
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	r.off += 8
	return v
}

// ReadString reads a u16 length prefix followed by that many raw UTF-8 bytes.
func (r *Reader) ReadString() string {
	n := int(r.ReadU16())
	if n == 0 || !r.need(n) {
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

func (r *Reader) ReadBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}
