package worldstate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tibiaserver/server/internal/model"
)

// Channel is a chat channel: either a well-known public channel (keyed by
// its protocol id) or a private channel owned by one player.
type Channel struct {
	ID      uint16
	Name    string
	OwnerID model.PlayerId
	Members map[model.PlayerId]struct{}
}

// ChannelListFor returns every public channel plus id's own private
// channel, if it has one, ordered by id. Private channels owned by other
// players are not listed, even when id is a member of them.
func (w *World) ChannelListFor(id model.PlayerId) []Channel {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []Channel
	for _, ch := range w.channels {
		out = append(out, *ch)
	}
	if priv, ok := w.privateChannels[id]; ok {
		out = append(out, *priv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EnsurePrivateChannel creates (or returns) id's private channel.
func (w *World) EnsurePrivateChannel(id model.PlayerId, ownerName string) Channel {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.privateChannels[id]
	if !ok {
		ch = &Channel{
			ID:      privateChannelBaseID + uint16(id),
			Name:    fmt.Sprintf("%s's Channel", ownerName),
			OwnerID: id,
			Members: map[model.PlayerId]struct{}{id: {}},
		}
		w.privateChannels[id] = ch
	}
	return *ch
}

const privateChannelBaseID uint16 = 0x4000

// InviteToPrivateChannel adds target to owner's private channel.
func (w *World) InviteToPrivateChannel(owner, target model.PlayerId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.privateChannels[owner]
	if !ok || ch.OwnerID != owner {
		return errors.New("invite_to_private_channel: no such channel")
	}
	ch.Members[target] = struct{}{}
	return nil
}

// ExcludeFromPrivateChannel removes target from owner's private channel.
func (w *World) ExcludeFromPrivateChannel(owner, target model.PlayerId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.privateChannels[owner]
	if !ok || ch.OwnerID != owner {
		return errors.New("exclude_from_private_channel: no such channel")
	}
	delete(ch.Members, target)
	return nil
}

// ChannelNameFor resolves a channel id's display name.
func (w *World) ChannelNameFor(chID uint16) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.channels[chID]; ok {
		return ch.Name, true
	}
	for _, ch := range w.privateChannels {
		if ch.ID == chID {
			return ch.Name, true
		}
	}
	return "", false
}

// PrivateChannelOwner resolves the owning player of a private channel id.
func (w *World) PrivateChannelOwner(chID uint16) (model.PlayerId, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.privateChannels {
		if ch.ID == chID {
			return ch.OwnerID, true
		}
	}
	return 0, false
}

// NPCTalkResponses asks an NPC's conversation state for its reply lines to
// a player's text, consuming its SpeechQueue FIFO-style.
func (w *World) NPCTalkResponses(npcID model.CreatureId, playerID model.PlayerId, now model.GameTick) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	npc, ok := w.npcs[npcID]
	if !ok {
		return nil
	}
	npc.FocusedPlayer = playerID
	npc.FocusExpiresAt = now + 300
	if len(npc.SpeechQueue) == 0 {
		return nil
	}
	lines := npc.SpeechQueue
	npc.SpeechQueue = nil
	return lines
}

// ---- Shop ----

// ShopOffer is one line of a shop's buy/sell catalog.
type ShopOffer struct {
	ItemID  model.ItemTypeId
	BuyPrice  int32
	SellPrice int32
	Name      string
}

// ShopLook returns an NPC's current catalog (an external content-loader
// concern populates the NPC's catalog before this is called).
func (w *World) ShopLook(npcID model.CreatureId, catalog func(model.CreatureId) []ShopOffer) []ShopOffer {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.npcs[npcID]; !ok {
		return nil
	}
	return catalog(npcID)
}

// ShopBuy removes gold from the buyer's inventory counting function and
// adds count units of item to their backpack slot, failing with an
// error on insufficient funds (resolved by the caller's gold-counting
// collaborator since currency representation is a content concern).
func (w *World) ShopBuy(buyer model.PlayerId, item model.ItemTypeId, count uint8, price int32, hasFunds func(model.PlayerId, int32) bool, spend func(model.PlayerId, int32)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[buyer]
	if !ok {
		return errors.New("shop_buy: unknown player")
	}
	total := price * int32(count)
	if !hasFunds(buyer, total) {
		return errors.New("you do not have enough money")
	}
	spend(buyer, total)
	backpack := p.Inventory[model.SlotBackpack]
	if backpack == nil || !backpack.IsContainer() {
		return errors.New("you need an open backpack")
	}
	backpack.Contents = append(backpack.Contents, model.ItemStack{TypeID: item, Count: uint16(count), Stackable: true})
	return nil
}

// ShopSell is the inverse of ShopBuy: removes count units of item from the
// seller's backpack and credits them via the caller's collaborator.
func (w *World) ShopSell(seller model.PlayerId, item model.ItemTypeId, count uint8, price int32, credit func(model.PlayerId, int32)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[seller]
	if !ok {
		return errors.New("shop_sell: unknown player")
	}
	backpack := p.Inventory[model.SlotBackpack]
	if backpack == nil {
		return errors.New("you have nothing to sell")
	}
	remaining := int32(count)
	kept := backpack.Contents[:0]
	for _, stack := range backpack.Contents {
		if stack.TypeID == item && remaining > 0 {
			if int32(stack.Count) <= remaining {
				remaining -= int32(stack.Count)
				continue
			}
			stack.Count -= uint16(remaining)
			remaining = 0
		}
		kept = append(kept, stack)
	}
	backpack.Contents = kept
	if remaining > 0 {
		return errors.New("you do not have that many")
	}
	credit(seller, price*int32(count))
	return nil
}

// ShopClose is a pure acknowledgement; nothing mutates.
func (w *World) ShopClose(model.PlayerId) {}

// ---- Trade ----

// Trade is the two-sided trade-offer state (spec.md §4.5 Trade state
// machine).
type Trade struct {
	InitiatorID model.PlayerId
	PartnerID   model.PlayerId
	InitiatorItem *model.ItemStack
	PartnerItem   *model.ItemStack
	InitiatorAccepted bool
	PartnerAccepted   bool
}

// TradeRequest begins (or joins) a trade between initiator and partner
// over an item at (pos, stackPos).
func (w *World) TradeRequest(initiator, partner model.PlayerId, pos model.Position, stackPos int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	tile, ok := w.tiles[pos]
	if !ok || stackPos < 0 || stackPos >= len(tile.Items) {
		return ErrNoTarget
	}
	item := tile.Items[stackPos]
	t := &Trade{InitiatorID: initiator, PartnerID: partner, InitiatorItem: &item}
	w.trades[initiator] = t
	w.trades[partner] = t
	if p, ok := w.players[initiator]; ok {
		p.TradeState = model.TradeOffered
		p.TradePartnerID = partner
	}
	if p, ok := w.players[partner]; ok {
		p.TradeState = model.TradeOffered
		p.TradePartnerID = initiator
	}
	return nil
}

// TradeItemForLook previews the counterpart's offered item for the trade
// dialog, without mutating anything.
func (w *World) TradeItemForLook(viewer model.PlayerId) (*model.ItemStack, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.trades[viewer]
	if !ok {
		return nil, false
	}
	if t.InitiatorID == viewer {
		return t.PartnerItem, t.PartnerItem != nil
	}
	return t.InitiatorItem, t.InitiatorItem != nil
}

// TradeAccept marks viewer's side accepted; once both sides have accepted,
// the trade is resolved atomically and both Player.Inventory slots swap.
func (w *World) TradeAccept(viewer model.PlayerId) (accepted bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.trades[viewer]
	if !ok {
		return false, errors.New("trade_accept: no active trade")
	}
	if t.InitiatorID == viewer {
		t.InitiatorAccepted = true
	} else {
		t.PartnerAccepted = true
	}
	if !t.InitiatorAccepted || !t.PartnerAccepted {
		return false, nil
	}
	w.resolveTrade(t)
	return true, nil
}

func (w *World) resolveTrade(t *Trade) {
	a, aok := w.players[t.InitiatorID]
	b, bok := w.players[t.PartnerID]
	if aok && bok {
		if t.PartnerItem != nil {
			a.Inventory[model.SlotBackpack] = t.PartnerItem
		}
		if t.InitiatorItem != nil {
			b.Inventory[model.SlotBackpack] = t.InitiatorItem
		}
		a.TradeState = model.TradeNone
		b.TradeState = model.TradeNone
	}
	delete(w.trades, t.InitiatorID)
	delete(w.trades, t.PartnerID)
}

// TradeClose cancels any trade viewer is part of.
func (w *World) TradeClose(viewer model.PlayerId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.trades[viewer]
	if !ok {
		return
	}
	if p, ok := w.players[t.InitiatorID]; ok {
		p.TradeState = model.TradeNone
	}
	if p, ok := w.players[t.PartnerID]; ok {
		p.TradeState = model.TradeNone
	}
	delete(w.trades, t.InitiatorID)
	delete(w.trades, t.PartnerID)
}

// ---- Party ----

// Party is a group of players sharing experience if SharedExp is set.
type Party struct {
	ID        uint32
	LeaderID  model.PlayerId
	Members   map[model.PlayerId]struct{}
	Invited   map[model.PlayerId]struct{}
	SharedExp bool
}

// PartyInvite invites target to leader's party, creating the party if
// leader doesn't have one yet.
func (w *World) PartyInvite(leader, target model.PlayerId) (uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[leader]
	if !ok {
		return 0, errors.New("party_invite: unknown player")
	}
	var party *Party
	if p.PartyID != 0 {
		party, ok = w.parties[p.PartyID]
		if !ok || party.LeaderID != leader {
			return 0, errors.New("party_invite: not the leader")
		}
	} else {
		party = &Party{
			ID:       w.nextPartyID,
			LeaderID: leader,
			Members:  map[model.PlayerId]struct{}{leader: {}},
			Invited:  map[model.PlayerId]struct{}{},
		}
		w.nextPartyID++
		w.parties[party.ID] = party
		p.PartyID = party.ID
	}
	party.Invited[target] = struct{}{}
	return party.ID, nil
}

// PartyJoin accepts an invitation.
func (w *World) PartyJoin(partyID uint32, target model.PlayerId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	party, ok := w.parties[partyID]
	if !ok {
		return errors.New("party_join: no such party")
	}
	if _, invited := party.Invited[target]; !invited {
		return errors.New("party_join: not invited")
	}
	delete(party.Invited, target)
	party.Members[target] = struct{}{}
	if p, ok := w.players[target]; ok {
		p.PartyID = partyID
	}
	return nil
}

// PartyRevoke withdraws an outstanding invitation.
func (w *World) PartyRevoke(leader, target model.PlayerId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[leader]
	if !ok || p.PartyID == 0 {
		return errors.New("party_revoke: no party")
	}
	party := w.parties[p.PartyID]
	delete(party.Invited, target)
	return nil
}

// PartyPassLeadership transfers leadership of the caller's party.
func (w *World) PartyPassLeadership(current, next model.PlayerId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[current]
	if !ok || p.PartyID == 0 {
		return errors.New("party_pass_leadership: no party")
	}
	party := w.parties[p.PartyID]
	if party.LeaderID != current {
		return errors.New("party_pass_leadership: not the leader")
	}
	if _, member := party.Members[next]; !member {
		return errors.New("party_pass_leadership: target not in party")
	}
	party.LeaderID = next
	return nil
}

// PartyLeave removes a member from their party, disbanding it if empty.
func (w *World) PartyLeave(member model.PlayerId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[member]
	if !ok || p.PartyID == 0 {
		return errors.New("party_leave: no party")
	}
	party := w.parties[p.PartyID]
	delete(party.Members, member)
	p.PartyID = 0
	if len(party.Members) == 0 {
		delete(w.parties, party.ID)
	} else if party.LeaderID == member {
		for m := range party.Members {
			party.LeaderID = m
			break
		}
	}
	return nil
}

// SetSharedExp toggles a party's shared-experience flag; only the leader
// may call this successfully.
func (w *World) SetSharedExp(leader model.PlayerId, enabled bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[leader]
	if !ok || p.PartyID == 0 {
		return errors.New("set_shared_exp: no party")
	}
	party := w.parties[p.PartyID]
	if party.LeaderID != leader {
		return errors.New("set_shared_exp: not the leader")
	}
	party.SharedExp = enabled
	return nil
}
