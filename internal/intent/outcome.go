package intent

import "github.com/tibiaserver/server/internal/model"

// OutcomeKind tags the variant carried by an Outcome, following the tagged-
// union data-modeling convention used for model.SpellEffect (spec.md §9).
type OutcomeKind uint8

const (
	OutcomeIgnored OutcomeKind = iota
	OutcomeSpellCast
	OutcomeMoveUse
	OutcomeLook
	OutcomeMoveItem
	OutcomeRefreshField
	OutcomeRefreshContainer
	OutcomeOpenContainer
	OutcomeCloseContainer
	OutcomeLogoutAllowed
	OutcomeLogoutBlocked
	OutcomeAdmin
	OutcomeTalk
	OutcomeBuddyAdd
	OutcomeBuddyRemove
	OutcomeEditText
	OutcomeEditList
	OutcomeChannelOpen
	OutcomeChannelClose
	OutcomeChannelPrivate
	OutcomeShopRequest
	OutcomeTradeRequest
	OutcomePartyRequest
	OutcomeOutfitRequest
	OutcomeOutfitSet
	OutcomeLog
)

// AdminAction is the decoded admin sub-command (talk-derived, spec.md §4.4).
type AdminAction uint8

const (
	AdminDisconnectSelf AdminAction = iota
	AdminOnlineList
	AdminLog
	AdminShutdown
	AdminRestart
	AdminTeleport
	AdminHouseGuests
	AdminHouseSubowners
	AdminKick
)

// ShopAction is the decoded shop sub-request.
type ShopAction uint8

const (
	ShopLook ShopAction = iota
	ShopBuy
	ShopSell
	ShopClose
)

// TradeAction is the decoded trade sub-request.
type TradeAction uint8

const (
	TradeRequestOffer TradeAction = iota
	TradeLook
	TradeAccept
	TradeClose
)

// PartyAction is the decoded party sub-request.
type PartyAction uint8

const (
	PartyInvite PartyAction = iota
	PartyJoin
	PartyRevoke
	PartyPassLeadership
	PartyLeave
	PartyShareExp
)

// Outcome is the parser's single public output type: a tagged union over
// every possible decoded client intent. Only the field(s) relevant to Kind
// are populated.
type Outcome struct {
	Kind OutcomeKind

	// SpellCast / Talk
	Words   string
	Text    string
	TalkType uint8
	ChannelID uint16
	ReceiverName string

	// MoveUse / Look / MoveItem
	From   Location
	To     Location
	StackPos uint8
	ItemID model.ItemTypeId
	Count  uint8
	Path   []model.Direction
	// IsTurn distinguishes an in-place turn (OpCTurn) from a cardinal step:
	// both decode StackPos as a Direction with an otherwise empty Location.
	IsTurn bool

	// Container ops
	ContainerID model.ContainerId

	// Logout
	LogoutReason string

	// Admin
	Admin       AdminAction
	AdminArgX   int32
	AdminArgY   int32
	AdminArgZ   int32
	AdminTarget string

	// Buddy / channel / shop / trade / party
	BuddyName string
	Shop      ShopAction
	Trade     TradeAction
	Party     PartyAction
	PartyTarget model.PlayerId

	// Outfit
	Outfit model.Outfit

	// EditText / EditList
	EditID   uint16
	EditBody string

	// Log (non-mutating rejection message, e.g. admin-rights denial)
	LogMessage string
}
