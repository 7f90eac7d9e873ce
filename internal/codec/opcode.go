package codec

// Server -> client opcodes. A complete, byte-exact table is mandatory
// because clients depend on exact wire values (spec.md §4.1).
const (
	OpMapDescription byte = 0x64
	OpMapRowNorth    byte = 0x65
	OpMapRowEast     byte = 0x66
	OpMapRowSouth    byte = 0x67
	OpMapRowWest     byte = 0x68
	OpFieldData      byte = 0x69
	OpTileAddThing   byte = 0x6A
	OpTileChangeThing byte = 0x6B
	OpTileRemoveThing byte = 0x6C
	OpMoveCreature   byte = 0x6D
	OpContainerOpen  byte = 0x6E
	OpContainerClose byte = 0x6F
	OpContainerAddItem byte = 0x70
	OpContainerTransformItem byte = 0x71
	OpContainerRemoveItem byte = 0x72
	OpInventorySet   byte = 0x78
	OpInventoryReset byte = 0x79
	OpShopOpen       byte = 0x7A
	OpShopGoods      byte = 0x7B
	OpShopClose      byte = 0x7C
	OpTradeOwn       byte = 0x7D
	OpTradeOther     byte = 0x7E
	OpTradeClose     byte = 0x7F
	OpCreatureHealth byte = 0x8C
	OpCreatureLight  byte = 0x8D
	OpCreatureOutfit byte = 0x8E
	OpCreatureSpeed  byte = 0x8F
	OpCreatureSkull  byte = 0x90
	OpCreatureParty  byte = 0x91
	OpPlayerData     byte = 0xA0
	OpPlayerSkills   byte = 0xA1
	OpPlayerState    byte = 0xA2
	OpPlayerClearTarget byte = 0xA3
	OpEditText       byte = 0x96
	OpEditList       byte = 0x97
	OpTalk           byte = 0xAA
	OpChannelList    byte = 0xAB
	OpChannelOpen    byte = 0xAC
	OpChannelPrivate byte = 0xAD
	OpMessage        byte = 0xB4
	OpSnapback       byte = 0xB5
	OpOutfitDialog   byte = 0xC8
	OpBuddyData      byte = 0xD2
	OpBuddyAdd       byte = 0xD3
	OpBuddyStatus    byte = 0xD4
	OpWorldLight     byte = 0x82
	OpGraphicalEffect byte = 0x83
	OpTextualEffect  byte = 0x84
	OpMissileEffect  byte = 0x85
	OpFloorChangeUp  byte = 0xBE
	OpFloorChangeDown byte = 0xBF
	OpInit           byte = 0x0A
	OpRights         byte = 0x0B
	OpPing           byte = 0x1E
	OpLoginResult    byte = 0x0F
	OpCharacterList  byte = 0x10
)

// Client -> server opcodes.
const (
	OpCLoginRequest      byte = 0x01
	OpCGameLogin         byte = 0x0A
	OpCLogout            byte = 0x14
	OpCMoveNorth         byte = 0x65
	OpCMoveEast          byte = 0x66
	OpCMoveSouth         byte = 0x67
	OpCMoveWest          byte = 0x68
	OpCAutoWalk          byte = 0x64
	OpCTurn              byte = 0x6F
	OpCMoveItem          byte = 0x78
	OpCUseObject         byte = 0x82
	OpCLookAtCreature    byte = 0x8D
	OpCLookAtThing       byte = 0x8C
	OpCRefreshField      byte = 0x7A
	OpCRefreshContainer  byte = 0x7B
	OpCCloseContainer    byte = 0x7C
	OpCUpContainer       byte = 0x7D
	OpCTalk              byte = 0x96
	OpCBuddyAdd          byte = 0xDC
	OpCBuddyRemove       byte = 0xDD
	OpCEditText          byte = 0x97
	OpCEditList          byte = 0x98
	OpCChannelOpen       byte = 0xAA
	OpCChannelClose      byte = 0xAB
	OpCPrivateTalk       byte = 0xAC
	OpCShopLook          byte = 0x7E
	OpCShopBuy           byte = 0x7F
	OpCShopSell          byte = 0x80
	OpCShopClose         byte = 0x81
	OpCTradeRequest      byte = 0x7A
	OpCTradeLook         byte = 0x7B
	OpCTradeAccept       byte = 0x7C
	OpCTradeClose        byte = 0x7D
	OpCPartyInvite       byte = 0xA0
	OpCPartyJoin         byte = 0xA1
	OpCPartyRevoke       byte = 0xA2
	OpCPartyPassLeader   byte = 0xA3
	OpCPartyLeave        byte = 0xA4
	OpCPartyShareExp     byte = 0xA5
	OpCOutfitRequest     byte = 0xD2
	OpCOutfitSet         byte = 0xD3
)

// Talk packet (0xAA) talk_type variants, grouped per payload shape
// (spec.md §4.1).
const (
	TalkSay      uint8 = 0x01
	TalkWhisper  uint8 = 0x02
	TalkYell     uint8 = 0x03
	TalkPrivate  uint8 = 0x04
	TalkChannelY uint8 = 0x05
	TalkBroadcast uint8 = 0x06
	TalkRVR1     uint8 = 0x07
	TalkRVR2     uint8 = 0x08
	TalkRVR3     uint8 = 0x09
	TalkChannelR uint8 = 0x0A
	TalkPrivateNpc uint8 = 0x0B
	TalkChannelW uint8 = 0x0C
	TalkMonster  uint8 = 0x0D
	TalkChannelM uint8 = 0x0E
	TalkSay2     uint8 = 0x10
	TalkWhisper2 uint8 = 0x11
)

// Creature marker values preceding a creature's fields in map/tile packets.
const (
	CreatureMarkerNew   uint16 = 0x0061
	CreatureMarkerKnown uint16 = 0x0062
)

// SkipRun encodes "this many subsequent tiles are empty" as a single u16.
const skipRunMask uint16 = 0xFF00

func skipRunValue(skip int) uint16 {
	if skip > 0xFF {
		skip = 0xFF
	}
	return skipRunMask | uint16(skip)
}
