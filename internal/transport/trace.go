package transport

import (
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"
)

// TracePacketsEnabled reports whether TIBIA_PACKET_TRACE is set, matching
// spec.md §6's environment toggle.
func TracePacketsEnabled() bool {
	return os.Getenv("TIBIA_PACKET_TRACE") != ""
}

const traceHexLimit = 4096

// Tracer appends one line per packet read/written on a connection to
// log/packet_trace_<kind>_<id>.log, with a microsecond timestamp,
// direction, length, and up to 4096 hex bytes (truncation annotated).
type Tracer struct {
	mu   sync.Mutex
	file *os.File
}

// NewTracer opens (creating as needed) the trace file for one connection.
func NewTracer(kind string, id uint64) (*Tracer, error) {
	if err := os.MkdirAll("log", 0o755); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("log/packet_trace_%s_%d.log", kind, id)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Tracer{file: f}, nil
}

// Record appends one trace line for a read or write of data.
func (t *Tracer) Record(direction string, data []byte) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	truncated := false
	shown := data
	if len(shown) > traceHexLimit {
		shown = shown[:traceHexLimit]
		truncated = true
	}
	line := fmt.Sprintf("%s %s len=%d %s", time.Now().Format("15:04:05.000000"), direction, len(data), hex.EncodeToString(shown))
	if truncated {
		line += " (truncated)"
	}
	fmt.Fprintln(t.file, line)
}

// Close releases the underlying file.
func (t *Tracer) Close() error {
	if t == nil {
		return nil
	}
	return t.file.Close()
}
