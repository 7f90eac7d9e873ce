package transport

import (
	"bytes"
	"testing"
	"time"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	var buf bytes.Buffer
	if err := writeFrame(&buf, payload); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	got, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %v want %v", got, payload)
	}
}

func TestReadFrameRejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF}) // 65535 > MaxPacketBytes
	if _, err := readFrame(&buf); err == nil {
		t.Fatalf("expected error for oversized frame")
	}
}

func TestRateLimiterCapsAt200PerSecond(t *testing.T) {
	rl := NewRateLimiter(200)
	frozen := time.Now()
	rl.now = func() time.Time { return frozen }
	rl.windowStart = frozen

	allowed := 0
	for i := 0; i < 250; i++ {
		if rl.Allow() {
			allowed++
		}
	}
	if allowed != 200 {
		t.Fatalf("expected exactly 200 allowed, got %d", allowed)
	}
}

func TestRateLimiterResetsNextSecond(t *testing.T) {
	rl := NewRateLimiter(1)
	frozen := time.Now()
	rl.now = func() time.Time { return frozen }
	rl.windowStart = frozen

	if !rl.Allow() {
		t.Fatalf("expected first packet allowed")
	}
	if rl.Allow() {
		t.Fatalf("expected second packet rate-limited within the same second")
	}
	frozen = frozen.Add(time.Second + time.Millisecond)
	if !rl.Allow() {
		t.Fatalf("expected packet allowed after window rolls over")
	}
}
