package login

import "github.com/tibiaserver/server/internal/codec"

// resultCode maps a Result to the wire byte clients check, grounded on the
// donor's handler/auth.go named result-code constants (loginOK,
// loginWrongPass, loginAccountInUse, ...).
func resultCode(r Result) byte {
	switch r {
	case ResultSuccess:
		return 0x00
	case ResultWaitlist:
		return 0x01
	case ResultAccountBanned:
		return 0x02
	case ResultAccountNotAssigned:
		return 0x03
	default:
		return 0xFF
	}
}

// buildLoginResultPacket builds the standalone result packet sent before a
// modern client's separate character-list packet, or alone on failure.
func buildLoginResultPacket(r Result, queuePosition int) []byte {
	w := codec.NewWriterWithOpcode(codec.OpLoginResult)
	w.WriteU8(resultCode(r))
	w.WriteU16(uint16(queuePosition))
	return w.Bytes()
}

// buildCharacterListPacket builds the modern character-list reply.
func buildCharacterListPacket(sel LoginSelection) []byte {
	w := codec.NewWriterWithOpcode(codec.OpCharacterList)
	w.WriteU8(uint8(len(sel.Characters)))
	for _, c := range sel.Characters {
		w.WriteString(c.Name)
		w.WriteString(c.WorldName)
		w.WriteString(c.WorldAddress)
	}
	return w.Bytes()
}

// buildLegacySuccessPacket combines the result and character list into one
// packet for older raw-TCP clients, grounded on the donor's single-packet
// S_LoginResult + S_CharPacks sequence predating the modern split.
func buildLegacySuccessPacket(sel LoginSelection) []byte {
	w := codec.NewWriterWithOpcode(codec.OpLoginResult)
	w.WriteU8(resultCode(ResultSuccess))
	w.WriteU16(0)
	w.WriteU8(uint8(len(sel.Characters)))
	for _, c := range sel.Characters {
		w.WriteString(c.Name)
		w.WriteString(c.WorldName)
		w.WriteString(c.WorldAddress)
	}
	return w.Bytes()
}
