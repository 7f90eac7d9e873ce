package session

import (
	"errors"

	"github.com/tibiaserver/server/internal/codec"
	"github.com/tibiaserver/server/internal/model"
	"github.com/tibiaserver/server/internal/worldstate"
)

// parseGameLogin decodes the one client->server packet session setup
// reads: os and client version (read and discarded, not checked), the account
// credentials already verified by the login flow, and the character name
// to spawn. Account/password are re-read here only because the legacy
// client resends them on the game connection; the session trusts the
// SelectionRegistry over these values.
func parseGameLogin(payload []byte) (characterName string, err error) {
	r := codec.NewReader(payload)
	if r.Opcode() != codec.OpCGameLogin {
		return "", errors.New("session: expected GameLogin packet")
	}
	_ = r.ReadU16() // os
	_ = r.ReadU16() // version
	_ = r.ReadString() // account
	_ = r.ReadString() // password
	name := r.ReadString()
	if r.Err() != nil || name == "" {
		return "", errors.New("session: malformed GameLogin packet")
	}
	return name, nil
}

func buildInitPacket(id model.PlayerId) []byte {
	w := codec.NewWriterWithOpcode(codec.OpInit)
	w.WriteU32(uint32(id))
	return w.Bytes()
}

func buildRightsPacket(gm bool) []byte {
	w := codec.NewWriterWithOpcode(codec.OpRights)
	v := uint8(0)
	if gm {
		v = 1
	}
	w.WriteU8(v)
	return w.Bytes()
}

func buildWorldLightPacket() []byte {
	w := codec.NewWriterWithOpcode(codec.OpWorldLight)
	w.WriteU8(model.DefaultWorldLightLevel)
	w.WriteU8(model.DefaultWorldLightColor)
	return w.Bytes()
}

func buildPlayerDataPacket(p *model.Player) []byte {
	w := codec.NewWriterWithOpcode(codec.OpPlayerData)
	w.WriteU32(p.Health)
	w.WriteU32(p.MaxHealth)
	w.WriteU32(p.Mana)
	w.WriteU32(p.MaxMana)
	w.WriteU32(p.Level)
	w.WriteU64(p.Experience)
	w.WriteU8(p.Soul)
	w.WriteU32(p.Capacity)
	return w.Bytes()
}

func buildPlayerSkillsPacket(p *model.Player) []byte {
	w := codec.NewWriterWithOpcode(codec.OpPlayerSkills)
	for id := uint8(0); id < 7; id++ {
		sk := p.Skills[id]
		if sk == nil {
			w.WriteU16(0)
			w.WriteU16(0)
			continue
		}
		w.WriteU16(sk.Level)
		w.WriteU16(sk.Progress)
	}
	return w.Bytes()
}

func buildInventorySlotPacket(slot model.InventorySlot, stack *model.ItemStack) []byte {
	if stack == nil {
		w := codec.NewWriterWithOpcode(codec.OpInventoryReset)
		w.WriteU8(uint8(slot))
		return w.Bytes()
	}
	w := codec.NewWriterWithOpcode(codec.OpInventorySet)
	w.WriteU8(uint8(slot))
	w.WriteItemStack(*stack)
	return w.Bytes()
}

// buildBuddyDataPacket writes the buddy list's known names, resolved via
// the PlayerName collaborator (a player that has never logged in this
// process still resolves through persistence in production).
func buildBuddyDataPacket(p *model.Player, resolveName func(model.CreatureId) (string, bool)) []byte {
	w := codec.NewWriterWithOpcode(codec.OpBuddyData)
	names := make([]string, 0, len(p.Buddies))
	for id := range p.Buddies {
		if resolveName == nil {
			continue
		}
		if name, ok := resolveName(model.CreatureId(id)); ok {
			names = append(names, name)
		}
	}
	w.WriteU16(uint16(len(names)))
	for _, n := range names {
		w.WriteString(n)
	}
	return w.Bytes()
}

func buildContainerOpenPacket(oc model.OpenContainer) []byte {
	w := codec.NewWriterWithOpcode(codec.OpContainerOpen)
	w.WriteU8(uint8(oc.ID))
	return w.Bytes()
}

func buildContainerClosePacket(id model.ContainerId) []byte {
	w := codec.NewWriterWithOpcode(codec.OpContainerClose)
	w.WriteU8(uint8(id))
	return w.Bytes()
}

func buildChannelOpenPacket(ch worldstate.Channel) []byte {
	w := codec.NewWriterWithOpcode(codec.OpChannelOpen)
	w.WriteU16(ch.ID)
	w.WriteString(ch.Name)
	return w.Bytes()
}

func buildShopGoodsPacket(offers []worldstate.ShopOffer) []byte {
	w := codec.NewWriterWithOpcode(codec.OpShopGoods)
	w.WriteU8(uint8(len(offers)))
	for _, o := range offers {
		w.WriteU16(uint16(o.ItemID))
		w.WriteU32(uint32(o.SellPrice))
	}
	return w.Bytes()
}

func buildShopClosePacket() []byte {
	return []byte{codec.OpShopClose}
}

func buildOutfitDialogPacket(o model.Outfit) []byte {
	w := codec.NewWriterWithOpcode(codec.OpOutfitDialog)
	w.WriteOutfit(o)
	return w.Bytes()
}

func buildMessagePacket(text string) []byte {
	w := codec.NewWriterWithOpcode(codec.OpMessage)
	w.WriteU8(0)
	w.WriteString(text)
	return w.Bytes()
}

func buildPingPacket() []byte {
	return []byte{codec.OpPing}
}

func buildPlayerStatePacket(state uint8) []byte {
	w := codec.NewWriterWithOpcode(codec.OpPlayerState)
	w.WriteU8(state)
	return w.Bytes()
}

// Player state byte (spec.md §4.8): poisoned, burning, electrified,
// drunken, magic-shielded, slow, haste, in-combat packed into bits 0..7.
const (
	stateBitPoisoned uint8 = 1 << iota
	stateBitBurning
	stateBitElectrified
	stateBitDrunken
	stateBitMagicShielded
	stateBitSlow
	stateBitHaste
	stateBitInCombat
)

// packPlayerState computes the current 0xA2 byte. ok is always true; the
// caller only emits the packet when the value actually changed.
func packPlayerState(p *model.Player) (uint8, bool) {
	var v uint8
	if p.PoisonTicks > 0 {
		v |= stateBitPoisoned
	}
	if p.BurningTicks > 0 {
		v |= stateBitBurning
	}
	if p.ElectrifiedTicks > 0 {
		v |= stateBitElectrified
	}
	if p.DrunkenTicks > 0 {
		v |= stateBitDrunken
	}
	if p.MagicShieldTicks > 0 {
		v |= stateBitMagicShielded
	}
	if p.SlowUntil > 0 {
		v |= stateBitSlow
	}
	if p.HasteUntil > 0 {
		v |= stateBitHaste
	}
	if p.InCombatUntil > 0 {
		v |= stateBitInCombat
	}
	return v, true
}
