package session

import (
	"go.uber.org/zap"

	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/intent"
	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/worldstate"
)

// dispatch implements step 4 of the loop body: translate one decoded
// Outcome into world mutation and the resulting wire packets. The bool
// return reports whether the session should close after this step.
func (s *session) dispatch(out intent.Outcome, now model.GameTick) (bool, error) {
	switch out.Kind {
	case intent.OutcomeIgnored:
		return false, nil

	case intent.OutcomeLog:
		if out.LogMessage == "" {
			return false, nil
		}
		return false, s.writePacket(buildMessagePacket(out.LogMessage))

	case intent.OutcomeLogoutAllowed:
		return s.handleLogoutRequest(now)

	case intent.OutcomeMoveUse:
		return false, s.handleMoveUse(out, now)

	case intent.OutcomeMoveItem:
		return false, s.handleMoveItem(out)

	case intent.OutcomeLook:
		return false, s.handleLook(out)

	case intent.OutcomeRefreshField:
		w := codec.NewWriter()
		codec.WriteFieldData(w, out.From.Position, s.deps.Things)
		return false, s.writePacket(w.Bytes())

	case intent.OutcomeRefreshContainer:
		return false, s.writePacket(buildContainerOpenPacket(model.OpenContainer{ID: out.ContainerID}))

	case intent.OutcomeOpenContainer:
		if err := s.deps.World.UpContainerForPlayer(s.playerID, out.ContainerID); err != nil {
			return false, s.writePacket(buildMessagePacket(err.Error()))
		}
		return false, s.writePacket(buildContainerOpenPacket(model.OpenContainer{ID: out.ContainerID}))

	case intent.OutcomeCloseContainer:
		if err := s.deps.World.CloseContainerForPlayer(s.playerID, out.ContainerID); err != nil {
			return false, s.writePacket(buildMessagePacket(err.Error()))
		}
		return false, s.writePacket(buildContainerClosePacket(out.ContainerID))

	case intent.OutcomeTalk:
		return false, s.handleTalk(out, now)

	case intent.OutcomeAdmin:
		return s.handleAdmin(out, now)

	case intent.OutcomeBuddyAdd:
		if target, ok := s.deps.World.PlayerByName(out.BuddyName); ok {
			if s.player.Buddies == nil {
				s.player.Buddies = map[model.PlayerId]struct{}{}
			}
			s.player.Buddies[target] = struct{}{}
		}
		return false, nil

	case intent.OutcomeBuddyRemove:
		if target, ok := s.deps.World.PlayerByName(out.BuddyName); ok {
			delete(s.player.Buddies, target)
		}
		return false, nil

	case intent.OutcomeEditText, intent.OutcomeEditList:
		// Sign/book contents are a content-loader concern (spec.md §1);
		// the packet is acknowledged without producing a reply.
		return false, nil

	case intent.OutcomeChannelOpen:
		return false, s.handleChannelOpen(out.ChannelID)

	case intent.OutcomeChannelClose:
		// No server acknowledgement packet exists for closing a channel;
		// the client drops it locally.
		return false, nil

	case intent.OutcomeChannelPrivate:
		ch := s.deps.World.EnsurePrivateChannel(s.playerID, s.player.Name)
		return false, s.writePacket(buildChannelOpenPacket(ch))

	case intent.OutcomeShopRequest:
		return false, s.handleShop(out)

	case intent.OutcomeTradeRequest:
		return false, s.handleTrade(out)

	case intent.OutcomePartyRequest:
		return false, s.handleParty(out)

	case intent.OutcomeOutfitRequest:
		return false, s.writePacket(buildOutfitDialogPacket(s.player.Outfit))

	case intent.OutcomeOutfitSet:
		s.player.Outfit = out.Outfit
		s.player.Pending.OutfitUpdates = append(s.player.Pending.OutfitUpdates, model.CreatureId(s.playerID))
		return false, nil
	}
	return false, nil
}

// handleLogoutRequest implements the PZ/no-logout/in-fight gating spec.md
// §4.8 step 9 and §4.3's user-visible messages describe.
func (s *session) handleLogoutRequest(now model.GameTick) (bool, error) {
	tile := s.deps.World.Tile(s.player.Position)
	switch {
	case tile.NoLogout:
		return false, s.writePacket(buildMessagePacket("You cannot logout here."))
	case s.player.InCombatUntil > now:
		return false, s.writePacket(buildMessagePacket("You cannot logout while in a fight."))
	case tile.Protection:
		return false, s.writePacket(buildMessagePacket("You must leave the protection zone to logout."))
	}
	return true, nil
}

// handleMoveUse covers the three shapes intent.Parse collapses into
// OutcomeMoveUse: an autowalk path, a cardinal step/turn, and a
// use-object request at a decoded Location.
func (s *session) handleMoveUse(out intent.Outcome, now model.GameTick) error {
	if len(out.Path) > 0 {
		return s.deps.World.SetAutowalk(s.playerID, out.Path)
	}
	if out.ItemID != 0 {
		return s.handleUseObject(out)
	}
	dir := model.Direction(out.StackPos)
	if out.IsTurn {
		return s.deps.World.TurnPlayer(s.playerID, dir)
	}
	moveOutcome, err := s.deps.World.MovePlayer(s.playerID, dir, now)
	if err != nil {
		if err == worldstate.ErrMovementCooldown {
			return nil
		}
		return s.writePacket(buildMessagePacket(err.Error()))
	}
	return s.emitMovement(moveOutcome)
}

// emitMovement writes the incremental move packet, or a floor-change plus
// resync when the step crossed a z layer (spec.md §4.8 step 5).
func (s *session) emitMovement(m worldstate.MoveOutcome) error {
	if m.FloorChanged {
		w := codec.NewWriter()
		codec.WriteFloorChange(w, m.MovingUp, m.To, s.deps.Things)
		if err := s.writePacket(w.Bytes()); err != nil {
			return err
		}
		full := codec.NewWriter()
		codec.WriteMapDescription(full, m.To, s.deps.Things)
		return s.writePacket(full.Bytes())
	}
	w := codec.NewWriter()
	codec.WriteMoveCreature(w, m.From, 0, m.To)
	return s.writePacket(w.Bytes())
}

func (s *session) handleUseObject(out intent.Outcome) error {
	switch out.From.Kind {
	case intent.LocationTile:
		// Using a backpack on the ground opens it; anything else is a
		// content-defined interaction (levers, doors) out of scope here.
		cid, already := s.deps.World.FindOpenContainerIDForPlayerSource(s.playerID, out.From.Position, int(out.StackPos))
		if already {
			return s.writePacket(buildContainerOpenPacket(model.OpenContainer{ID: cid}))
		}
		cid, err := s.deps.World.OpenContainerForPlayer(s.playerID, model.OpenContainer{
			SourceIsMap: true, MapPosition: out.From.Position, StackPos: int(out.StackPos),
		})
		if err != nil {
			return s.writePacket(buildMessagePacket(err.Error()))
		}
		return s.writePacket(buildContainerOpenPacket(model.OpenContainer{ID: cid}))
	case intent.LocationInventory:
		cid, err := s.deps.World.OpenContainerForPlayer(s.playerID, model.OpenContainer{
			SourceIsInventory: true, InventorySlot: out.From.InventorySlot,
		})
		if err != nil {
			return s.writePacket(buildMessagePacket(err.Error()))
		}
		return s.writePacket(buildContainerOpenPacket(model.OpenContainer{ID: cid}))
	case intent.LocationContainer:
		cid, err := s.deps.World.OpenContainerForPlayer(s.playerID, model.OpenContainer{
			SourceIsContainer: true, ParentContainerID: out.From.ContainerID, ParentSlot: int(out.From.ContainerSlot),
		})
		if err != nil {
			return s.writePacket(buildMessagePacket(err.Error()))
		}
		return s.writePacket(buildContainerOpenPacket(model.OpenContainer{ID: cid}))
	}
	return nil
}

func (s *session) handleMoveItem(out intent.Outcome) error {
	var err error
	switch {
	case out.From.Kind == intent.LocationInventory && out.To.Kind == intent.LocationInventory:
		err = s.deps.World.MoveInventoryItem(s.playerID, out.From.InventorySlot, out.To.InventorySlot)
	case out.From.Kind == intent.LocationInventory && out.To.Kind == intent.LocationTile:
		_, err = s.deps.World.DropToTile(s.playerID, out.From.InventorySlot, out.To.Position, uint16(out.Count))
	case out.From.Kind == intent.LocationTile && out.To.Kind == intent.LocationInventory:
		err = s.deps.World.PickupToInventorySlot(s.playerID, out.From.Position, int(out.StackPos), out.To.InventorySlot)
	case out.From.Kind == intent.LocationTile && out.To.Kind == intent.LocationTile:
		err = s.deps.World.MoveItemBetweenTiles(out.From.Position, int(out.StackPos), out.To.Position, uint16(out.Count))
	}
	if err != nil {
		return s.writePacket(buildMessagePacket(err.Error()))
	}
	return nil
}

func (s *session) handleLook(out intent.Outcome) error {
	var text string
	switch out.From.Kind {
	case intent.LocationTile:
		text = "You see something."
	case intent.LocationInventory:
		if stack := s.player.Inventory[out.From.InventorySlot]; stack != nil {
			text = "You see an item."
		} else {
			text = "You see nothing."
		}
	default:
		text = "You see nothing."
	}
	return s.writePacket(buildMessagePacket(text))
}

func (s *session) handleTalk(out intent.Outcome, now model.GameTick) error {
	if s.deps.SpellLookup != nil {
		if spell, ok := s.deps.SpellLookup(model.NormalizeWords(out.Text)); ok {
			report, err := s.deps.World.CastSpellWords(s.playerID, out.Text, s.player.Direction, now, s.deps.SpellLookup, s.deps.Calc)
			if err != nil {
				return s.writePacket(buildMessagePacket(err.Error()))
			}
			return s.emitSpellCast(report, spell)
		}
	}
	w := codec.NewWriter()
	codec.WriteTalk(w, model.CreatureId(s.playerID), s.player.Name, out.TalkType, s.player.Position, out.ChannelID, 0, out.Text)
	return s.writePacket(w.Bytes())
}

func (s *session) emitSpellCast(report worldstate.SpellCastReport, spell model.Spell) error {
	if report.DamageDealt > 0 || report.HealDone > 0 {
		if err := s.writePacket(buildHealthPacket(model.CreatureId(s.playerID), s.player.Health, s.player.MaxHealth)); err != nil {
			return err
		}
	}
	if report.NeedsResync {
		w := codec.NewWriter()
		codec.WriteMapDescription(w, s.player.Position, s.deps.Things)
		return s.writePacket(w.Bytes())
	}
	return nil
}

func (s *session) handleChannelOpen(channelID uint16) error {
	name, ok := s.deps.World.ChannelNameFor(channelID)
	if !ok {
		return s.writePacket(buildMessagePacket("You cannot open that channel."))
	}
	return s.writePacket(buildChannelOpenPacket(worldstate.Channel{ID: channelID, Name: name}))
}

func (s *session) handleShop(out intent.Outcome) error {
	switch out.Shop {
	case intent.ShopLook:
		offers := s.deps.World.ShopLook(model.CreatureId(0), s.deps.Catalog)
		return s.writePacket(buildShopGoodsPacket(offers))
	case intent.ShopBuy:
		if err := s.deps.World.ShopBuy(s.playerID, out.ItemID, out.Count, 0, s.deps.HasFunds, s.deps.Spend); err != nil {
			return s.writePacket(buildMessagePacket(err.Error()))
		}
		return nil
	case intent.ShopSell:
		if err := s.deps.World.ShopSell(s.playerID, out.ItemID, out.Count, 0, s.deps.Credit); err != nil {
			return s.writePacket(buildMessagePacket(err.Error()))
		}
		return nil
	case intent.ShopClose:
		s.deps.World.ShopClose(s.playerID)
		return s.writePacket(buildShopClosePacket())
	}
	return nil
}

func (s *session) handleTrade(out intent.Outcome) error {
	switch out.Trade {
	case intent.TradeRequestOffer:
		partner, ok := s.findTradePartner(out.From.Position)
		if !ok {
			return s.writePacket(buildMessagePacket("There is no one there to trade with."))
		}
		if err := s.deps.World.TradeRequest(s.playerID, partner, out.From.Position, int(out.StackPos)); err != nil {
			return s.writePacket(buildMessagePacket(err.Error()))
		}
		return nil
	case intent.TradeLook:
		item, ok := s.deps.World.TradeItemForLook(s.playerID)
		if !ok {
			return s.writePacket(buildMessagePacket("There is nothing offered yet."))
		}
		w := codec.NewWriterWithOpcode(codec.OpTradeOther)
		w.WriteItemStack(*item)
		return s.writePacket(w.Bytes())
	case intent.TradeAccept:
		accepted, err := s.deps.World.TradeAccept(s.playerID)
		if err != nil {
			return s.writePacket(buildMessagePacket(err.Error()))
		}
		if accepted {
			return s.writePacket(buildInventorySlotPacket(model.SlotBackpack, s.player.Inventory[model.SlotBackpack]))
		}
		return nil
	case intent.TradeClose:
		s.deps.World.TradeClose(s.playerID)
		return s.writePacket([]byte{codec.OpTradeClose})
	}
	return nil
}

// handleAdmin executes a "!command" talk-derived admin action (spec.md
// §4.4). Rights were already checked by the parser before this Outcome's
// Kind was set to OutcomeAdmin.
func (s *session) handleAdmin(out intent.Outcome, now model.GameTick) (bool, error) {
	switch out.Admin {
	case intent.AdminDisconnectSelf:
		return true, nil

	case intent.AdminOnlineList:
		names := s.deps.World.OnlinePlayerNames()
		text := "Online players: "
		for i, n := range names {
			if i > 0 {
				text += ", "
			}
			text += n
		}
		return false, s.writePacket(buildMessagePacket(text))

	case intent.AdminLog:
		if s.deps.Log != nil {
			s.deps.Log.Info("admin log", zap.String("player", s.player.Name), zap.String("message", out.LogMessage))
		}
		return false, nil

	case intent.AdminShutdown:
		if s.deps.Shutdown != nil {
			s.deps.Shutdown("admin shutdown by " + s.player.Name)
		}
		return false, nil

	case intent.AdminRestart:
		if s.deps.Shutdown != nil {
			s.deps.Shutdown("admin restart by " + s.player.Name)
		}
		return false, nil

	case intent.AdminTeleport:
		to := model.Position{X: uint16(out.AdminArgX), Y: uint16(out.AdminArgY), Z: uint8(out.AdminArgZ)}
		m, err := s.deps.World.TeleportPlayerAdmin(s.playerID, to)
		if err != nil {
			return false, s.writePacket(buildMessagePacket(err.Error()))
		}
		return false, s.emitMovement(m)

	case intent.AdminHouseGuests, intent.AdminHouseSubowners:
		// House membership lists are a content/persist concern (spec.md
		// §1); acknowledged without data until that collaborator exists.
		return false, s.writePacket(buildMessagePacket("No house here."))

	case intent.AdminKick:
		target, ok := s.deps.World.PlayerByName(out.AdminTarget)
		if !ok {
			return false, s.writePacket(buildMessagePacket("Player not found."))
		}
		s.deps.World.Remove(target, now, false)
		return false, nil
	}
	return false, nil
}

// findTradePartner resolves the creature standing at pos to a player id,
// since the wire-level trade request only names a tile and stack position.
func (s *session) findTradePartner(pos model.Position) (model.PlayerId, bool) {
	for _, id := range s.deps.World.NearbyCreatureIDs(pos) {
		if pid := model.PlayerId(id); pid != s.playerID {
			if p, ok := s.deps.World.Player(pid); ok && p.Position == pos {
				return pid, true
			}
		}
	}
	return 0, false
}

func (s *session) handleParty(out intent.Outcome) error {
	var err error
	switch out.Party {
	case intent.PartyInvite:
		_, err = s.deps.World.PartyInvite(s.playerID, out.PartyTarget)
	case intent.PartyJoin:
		err = s.deps.World.PartyJoin(s.player.PartyID, s.playerID)
	case intent.PartyRevoke:
		err = s.deps.World.PartyRevoke(s.playerID, out.PartyTarget)
	case intent.PartyPassLeadership:
		err = s.deps.World.PartyPassLeadership(s.playerID, out.PartyTarget)
	case intent.PartyLeave:
		err = s.deps.World.PartyLeave(s.playerID)
	case intent.PartyShareExp:
		err = s.deps.World.SetSharedExp(s.playerID, !s.player.SharedExp)
		if err == nil {
			s.player.SharedExp = !s.player.SharedExp
		}
	}
	if err != nil {
		return s.writePacket(buildMessagePacket(err.Error()))
	}
	return nil
}
