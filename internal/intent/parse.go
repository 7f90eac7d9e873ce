package intent

import (
	"strconv"
	"strings"

	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/model"
)

// ParserContext carries the facts a pure parser needs beyond the packet
// bytes themselves: whether the speaker holds admin rights, so talk-derived
// admin commands can be recognized without consulting world state.
type ParserContext struct {
	SpeakerIsGM bool
}

// Parse decodes one client packet into an Outcome. It never mutates any
// shared state; malformed or unrecognized packets decode to OutcomeIgnored.
func Parse(payload []byte, ctx ParserContext) Outcome {
	if len(payload) == 0 {
		return Outcome{Kind: OutcomeIgnored}
	}
	r := codec.NewReader(payload)
	op := r.Opcode()

	var out Outcome
	switch op {
	case codec.OpCLogout:
		out = Outcome{Kind: OutcomeLogoutAllowed}

	case codec.OpCAutoWalk, codec.OpCMoveNorth, codec.OpCMoveEast, codec.OpCMoveSouth, codec.OpCMoveWest:
		out = parseMove(r, op)

	case codec.OpCTurn:
		out = Outcome{Kind: OutcomeMoveUse, StackPos: r.ReadU8(), IsTurn: true}

	case codec.OpCMoveItem:
		out = parseMoveItem(r)

	case codec.OpCUseObject:
		out = parseUseObject(r)

	case codec.OpCLookAtThing, codec.OpCLookAtCreature:
		out = parseLook(r)

	case codec.OpCRefreshField:
		out = Outcome{Kind: OutcomeRefreshField, From: Location{Kind: LocationTile, Position: r.ReadPosition()}}

	case codec.OpCRefreshContainer:
		out = Outcome{Kind: OutcomeRefreshContainer, ContainerID: model.ContainerId(r.ReadU8())}

	case codec.OpCCloseContainer:
		out = Outcome{Kind: OutcomeCloseContainer, ContainerID: model.ContainerId(r.ReadU8())}

	case codec.OpCUpContainer:
		out = Outcome{Kind: OutcomeOpenContainer, ContainerID: model.ContainerId(r.ReadU8())}

	case codec.OpCTalk:
		out = parseTalk(r, ctx)

	case codec.OpCBuddyAdd:
		out = Outcome{Kind: OutcomeBuddyAdd, BuddyName: r.ReadString()}

	case codec.OpCBuddyRemove:
		out = Outcome{Kind: OutcomeBuddyRemove, BuddyName: r.ReadString()}

	case codec.OpCEditText:
		out = Outcome{Kind: OutcomeEditText, EditID: r.ReadU16(), EditBody: r.ReadString()}

	case codec.OpCEditList:
		out = Outcome{Kind: OutcomeEditList, EditID: r.ReadU16(), EditBody: r.ReadString()}

	case codec.OpCChannelOpen:
		out = Outcome{Kind: OutcomeChannelOpen, ChannelID: r.ReadU16()}

	case codec.OpCChannelClose:
		out = Outcome{Kind: OutcomeChannelClose, ChannelID: r.ReadU16()}

	case codec.OpCPrivateTalk:
		out = Outcome{Kind: OutcomeChannelPrivate, ReceiverName: r.ReadString()}

	case codec.OpCShopLook:
		out = Outcome{Kind: OutcomeShopRequest, Shop: ShopLook}
	case codec.OpCShopBuy:
		out = Outcome{Kind: OutcomeShopRequest, Shop: ShopBuy, ItemID: model.ItemTypeId(r.ReadU16()), Count: r.ReadU8()}
	case codec.OpCShopSell:
		out = Outcome{Kind: OutcomeShopRequest, Shop: ShopSell, ItemID: model.ItemTypeId(r.ReadU16()), Count: r.ReadU8()}
	case codec.OpCShopClose:
		out = Outcome{Kind: OutcomeShopRequest, Shop: ShopClose}

	case codec.OpCTradeRequest:
		out = Outcome{Kind: OutcomeTradeRequest, Trade: TradeRequestOffer, From: Location{Kind: LocationTile, Position: r.ReadPosition()}, StackPos: r.ReadU8()}
	case codec.OpCTradeLook:
		out = Outcome{Kind: OutcomeTradeRequest, Trade: TradeLook}
	case codec.OpCTradeAccept:
		out = Outcome{Kind: OutcomeTradeRequest, Trade: TradeAccept}
	case codec.OpCTradeClose:
		out = Outcome{Kind: OutcomeTradeRequest, Trade: TradeClose}

	case codec.OpCPartyInvite:
		out = Outcome{Kind: OutcomePartyRequest, Party: PartyInvite, PartyTarget: model.PlayerId(r.ReadU32())}
	case codec.OpCPartyJoin:
		out = Outcome{Kind: OutcomePartyRequest, Party: PartyJoin, PartyTarget: model.PlayerId(r.ReadU32())}
	case codec.OpCPartyRevoke:
		out = Outcome{Kind: OutcomePartyRequest, Party: PartyRevoke, PartyTarget: model.PlayerId(r.ReadU32())}
	case codec.OpCPartyPassLeader:
		out = Outcome{Kind: OutcomePartyRequest, Party: PartyPassLeadership, PartyTarget: model.PlayerId(r.ReadU32())}
	case codec.OpCPartyLeave:
		out = Outcome{Kind: OutcomePartyRequest, Party: PartyLeave}
	case codec.OpCPartyShareExp:
		out = Outcome{Kind: OutcomePartyRequest, Party: PartyShareExp}

	case codec.OpCOutfitRequest:
		out = Outcome{Kind: OutcomeOutfitRequest}
	case codec.OpCOutfitSet:
		out = Outcome{Kind: OutcomeOutfitSet, Outfit: r.ReadOutfit()}

	default:
		return Outcome{Kind: OutcomeIgnored}
	}

	if r.Err() != nil || r.Remaining() != 0 {
		return Outcome{Kind: OutcomeIgnored}
	}
	return out
}

func parseMove(r *codec.Reader, op byte) Outcome {
	switch op {
	case codec.OpCMoveNorth:
		return Outcome{Kind: OutcomeMoveUse, From: Location{Kind: LocationTile}, StackPos: uint8(model.DirNorth)}
	case codec.OpCMoveEast:
		return Outcome{Kind: OutcomeMoveUse, From: Location{Kind: LocationTile}, StackPos: uint8(model.DirEast)}
	case codec.OpCMoveSouth:
		return Outcome{Kind: OutcomeMoveUse, From: Location{Kind: LocationTile}, StackPos: uint8(model.DirSouth)}
	case codec.OpCMoveWest:
		return Outcome{Kind: OutcomeMoveUse, From: Location{Kind: LocationTile}, StackPos: uint8(model.DirWest)}
	default:
		path := make([]model.Direction, 0, r.Remaining())
		for r.Remaining() > 0 {
			path = append(path, model.Direction(r.ReadU8()))
		}
		return Outcome{Kind: OutcomeMoveUse, Path: path}
	}
}

func parseMoveItem(r *codec.Reader) Outcome {
	fromX, fromY, fromZ := r.ReadU16(), r.ReadU16(), r.ReadU8()
	from := DecodeLocation(fromX, fromY, fromZ)
	itemID := model.ItemTypeId(r.ReadU16())
	stackPos := r.ReadU8()
	toX, toY, toZ := r.ReadU16(), r.ReadU16(), r.ReadU8()
	to := DecodeLocation(toX, toY, toZ)
	count := r.ReadU8()
	return Outcome{
		Kind:     OutcomeMoveItem,
		From:     from,
		To:       to,
		ItemID:   itemID,
		StackPos: stackPos,
		Count:    count,
	}
}

func parseUseObject(r *codec.Reader) Outcome {
	x, y, z := r.ReadU16(), r.ReadU16(), r.ReadU8()
	from := DecodeLocation(x, y, z)
	itemID := model.ItemTypeId(r.ReadU16())
	stackPos := r.ReadU8()
	return Outcome{Kind: OutcomeMoveUse, From: from, ItemID: itemID, StackPos: stackPos}
}

func parseLook(r *codec.Reader) Outcome {
	x, y, z := r.ReadU16(), r.ReadU16(), r.ReadU8()
	loc := DecodeLocation(x, y, z)
	itemID := model.ItemTypeId(r.ReadU16())
	stackPos := r.ReadU8()
	return Outcome{Kind: OutcomeLook, From: loc, ItemID: itemID, StackPos: stackPos}
}

func parseTalk(r *codec.Reader, ctx ParserContext) Outcome {
	talkType := r.ReadU8()
	var channelID uint16
	var receiver string
	switch talkType {
	case codec.TalkChannelY, codec.TalkChannelR, codec.TalkChannelW, codec.TalkChannelM:
		channelID = r.ReadU16()
	case codec.TalkPrivate, codec.TalkPrivateNpc:
		receiver = r.ReadString()
	}
	text := r.ReadString()

	if action, ok := parseAdminToken(text); ok {
		if !ctx.SpeakerIsGM {
			return Outcome{Kind: OutcomeLog, LogMessage: "You do not have admin rights."}
		}
		action.Kind = OutcomeAdmin
		return action
	}

	return Outcome{Kind: OutcomeTalk, TalkType: talkType, ChannelID: channelID, ReceiverName: receiver, Text: text}
}

// parseAdminToken recognizes a leading "!command" token in talk text and
// decodes it into an Admin Outcome shell (Kind is set by the caller once
// the gm check passes). Unrecognized "!..." tokens are not admin commands.
func parseAdminToken(text string) (Outcome, bool) {
	if !strings.HasPrefix(text, "!") {
		return Outcome{}, false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Outcome{}, false
	}
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "!kick":
		if len(args) < 1 {
			return Outcome{}, false
		}
		return Outcome{Admin: AdminKick, AdminTarget: args[0]}, true
	case "!online":
		return Outcome{Admin: AdminOnlineList}, true
	case "!tp":
		if len(args) < 3 {
			return Outcome{}, false
		}
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		z, errZ := strconv.Atoi(args[2])
		if errX != nil || errY != nil || errZ != nil {
			return Outcome{}, false
		}
		return Outcome{Admin: AdminTeleport, AdminArgX: int32(x), AdminArgY: int32(y), AdminArgZ: int32(z)}, true
	case "!restart":
		return Outcome{Admin: AdminRestart}, true
	case "!shutdown":
		return Outcome{Admin: AdminShutdown}, true
	case "!house":
		if len(args) < 1 {
			return Outcome{}, false
		}
		switch args[0] {
		case "guests":
			return Outcome{Admin: AdminHouseGuests}, true
		case "subowners":
			return Outcome{Admin: AdminHouseSubowners}, true
		default:
			return Outcome{}, false
		}
	case "!log":
		return Outcome{Admin: AdminLog, LogMessage: strings.TrimSpace(strings.TrimPrefix(text, "!log"))}, true
	case "!disconnect":
		return Outcome{Admin: AdminDisconnectSelf}, true
	default:
		return Outcome{}, false
	}
}
