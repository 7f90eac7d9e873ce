package status

import (
	"fmt"
	"time"

	"github.com/tibiaserver/server/internal/codec"
)

const (
	// OpInfo is the legacy whole-document request: opcode 0xFF followed by
	// the literal ASCII body "info".
	OpInfo byte = 0xFF
	// OpSubsections requests a subset of fields, named by a bitmask.
	OpSubsections byte = 0x01
)

// Mask bits select which subsections OpSubsections answers with, written
// in this fixed order regardless of which bits are set (spec.md §4.9:
// "encode the requested subsections in a fixed order").
const (
	MaskUptime        uint16 = 1 << 0
	MaskAddress       uint16 = 1 << 1
	MaskOwner         uint16 = 1 << 2
	MaskMOTD          uint16 = 1 << 3
	MaskPlayers       uint16 = 1 << 4
	MaskMap           uint16 = 1 << 5
	MaskSoftware      uint16 = 1 << 6
	MaskPlayerStatus  uint16 = 1 << 7
)

// OnlineCheck answers whether name is presently an online player, backing
// the Player-Status mask bit.
type OnlineCheck func(name string) bool

// handleRequest parses one raw (non-HTTP) request body and returns the raw
// reply bytes. legacyEncoding and onlineCheck come from the Server that
// owns this request.
func handleRequest(body []byte, snap Snapshot, peak int, legacyEncoding string, online OnlineCheck) ([]byte, error) {
	r := codec.NewReader(body)
	switch r.Opcode() {
	case OpInfo:
		if r.Remaining() != 4 || string(r.ReadBytes(4)) != "info" {
			return nil, fmt.Errorf("status: malformed info request")
		}
		return buildInfoXML(snap, peak, legacyEncoding)

	case OpSubsections:
		mask := r.ReadU16()
		w := codec.NewWriter()
		writeSubsections(w, mask, snap, peak)
		if mask&MaskPlayerStatus != 0 {
			name := r.ReadString()
			if r.Err() != nil {
				return nil, fmt.Errorf("status: malformed player-status request: %w", r.Err())
			}
			isOnline := online != nil && online(name)
			w.WriteU8(boolByte(isOnline))
		}
		if r.Err() != nil {
			return nil, fmt.Errorf("status: malformed subsections request: %w", r.Err())
		}
		return w.Bytes(), nil

	default:
		return nil, fmt.Errorf("status: unknown opcode 0x%02X", r.Opcode())
	}
}

func writeSubsections(w *codec.Writer, mask uint16, snap Snapshot, peak int) {
	if mask&MaskUptime != 0 {
		w.WriteString(time.Since(snap.StartTime).Round(time.Second).String())
	}
	if mask&MaskAddress != 0 {
		w.WriteString(snap.IP)
		w.WriteU16(uint16(snap.Port))
	}
	if mask&MaskOwner != 0 {
		w.WriteString(snap.Owner)
	}
	if mask&MaskMOTD != 0 {
		w.WriteString(snap.MOTD)
	}
	if mask&MaskPlayers != 0 {
		w.WriteU16(uint16(snap.PlayersOnline))
		w.WriteU16(uint16(peak))
		w.WriteU16(uint16(snap.PlayersMax))
	}
	if mask&MaskMap != 0 {
		w.WriteString(snap.MapName)
	}
	if mask&MaskSoftware != 0 {
		w.WriteString(snap.Software)
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
