package codec

import "github.com/tibiaserver/server/internal/model"

// WriteTalk writes a 0xAA talk packet: speaker id, speaker name, talk
// type, then a variant payload selected by talk type (spec.md §4.1).
func WriteTalk(w *Writer, speakerID model.CreatureId, speakerName string, talkType uint8, pos model.Position, channelID uint16, argument uint32, text string) {
	w.WriteU8(OpTalk)
	w.WriteU32(uint32(speakerID))
	w.WriteString(speakerName)
	w.WriteU8(talkType)

	switch talkType {
	case TalkSay, TalkWhisper, TalkYell, TalkSay2, TalkWhisper2:
		w.WritePosition(pos)
		w.WriteString(text)
	case TalkChannelY, TalkChannelR, TalkChannelW, TalkChannelM:
		w.WriteU16(channelID)
		w.WriteString(text)
	case TalkPrivate, TalkBroadcast, TalkRVR1, TalkRVR2, TalkRVR3, TalkPrivateNpc:
		if talkType == TalkBroadcast {
			w.WriteU32(argument)
		}
		w.WriteString(text)
	default:
		w.WriteString(text)
	}
}
