package worldstate

import (
	"errors"

	"github.com/tibiaserver/server/internal/model"
)

// ErrNoSuchContainer is returned when an operation names a container id
// the player does not currently have open.
var ErrNoSuchContainer = errors.New("no such open container")

// MoveInventoryItem moves an item between two fixed equipment slots,
// returning the ContainerUpdate-free delta (equipment changes are
// reflected via the caller re-reading Player.Inventory; no opcode needs a
// ContainerUpdate for equipment slots themselves).
func (w *World) MoveInventoryItem(id model.PlayerId, from, to model.InventorySlot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return errors.New("move_inventory_item: unknown player")
	}
	p.Inventory[from], p.Inventory[to] = p.Inventory[to], p.Inventory[from]
	p.Pending.DataUpdate = true
	return nil
}

// DropToTile removes count units of an item from an inventory slot and
// places it on the tile at pos. Items inside open containers cannot be
// dropped through it.
func (w *World) DropToTile(id model.PlayerId, slot model.InventorySlot, pos model.Position, count uint16) (*model.ContainerUpdate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil, errors.New("drop_to_tile: unknown player")
	}
	stack := p.Inventory[slot]
	if stack == nil {
		return nil, errors.New("drop_to_tile: empty slot")
	}
	moved := splitStack(stack, count)
	if stack.Count == 0 {
		p.Inventory[slot] = nil
	}
	tile := w.tileAt(pos)
	tile.Items = append(tile.Items, moved)
	p.Pending.DataUpdate = true
	return nil, nil
}

// PickupToInventorySlot moves stackPos from the tile at pos into slot.
func (w *World) PickupToInventorySlot(id model.PlayerId, pos model.Position, stackPos int, slot model.InventorySlot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return errors.New("pickup_to_inventory_slot: unknown player")
	}
	tile, ok := w.tiles[pos]
	if !ok || stackPos < 0 || stackPos >= len(tile.Items) {
		return errors.New("pickup_to_inventory_slot: no such item")
	}
	item := tile.Items[stackPos]
	tile.Items = append(tile.Items[:stackPos], tile.Items[stackPos+1:]...)
	p.Inventory[slot] = &item
	p.Pending.DataUpdate = true
	return nil
}

// MoveItemBetweenTiles relocates count units of the item at (from,
// fromStackPos) to the tile at to.
func (w *World) MoveItemBetweenTiles(from model.Position, fromStackPos int, to model.Position, count uint16) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	tile, ok := w.tiles[from]
	if !ok || fromStackPos < 0 || fromStackPos >= len(tile.Items) {
		return errors.New("move_item_between_tiles: no such item")
	}
	item := &tile.Items[fromStackPos]
	moved := splitStack(item, count)
	if item.Count == 0 {
		tile.Items = append(tile.Items[:fromStackPos], tile.Items[fromStackPos+1:]...)
	}
	dest := w.tileAt(to)
	dest.Items = append(dest.Items, moved)
	return nil
}

// RotateItem toggles a rotatable item's current shape (e.g. a lever or a
// container-less decorative object), tracked in Attributes["rotation"].
func (w *World) RotateItem(pos model.Position, stackPos int, variantCount int32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	tile, ok := w.tiles[pos]
	if !ok || stackPos < 0 || stackPos >= len(tile.Items) {
		return errors.New("rotate_item: no such item")
	}
	item := &tile.Items[stackPos]
	if item.Attributes == nil {
		item.Attributes = map[string]int32{}
	}
	item.Attributes["rotation"] = (item.Attributes["rotation"] + 1) % variantCount
	return nil
}

func splitStack(s *model.ItemStack, count uint16) model.ItemStack {
	if !s.Stackable || count >= s.Count {
		moved := *s
		s.Count = 0
		return moved
	}
	s.Count -= count
	return model.ItemStack{TypeID: s.TypeID, Count: count, Stackable: true}
}

// OpenContainerForPlayer opens a container sourced from an inventory slot,
// a parent container slot, or a map tile, assigning the next free
// ContainerId (0..MaxOpenContainers-1) and queuing a ContainerOpened
// update.
func (w *World) OpenContainerForPlayer(id model.PlayerId, oc model.OpenContainer) (model.ContainerId, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return 0, errors.New("open_container_for_player: unknown player")
	}
	if p.OpenContainers == nil {
		p.OpenContainers = map[model.ContainerId]*model.OpenContainer{}
	}
	cid, err := nextFreeContainerID(p.OpenContainers)
	if err != nil {
		return 0, err
	}
	oc.ID = cid
	p.OpenContainers[cid] = &oc
	p.Pending.MoveUseOutcomes = append(p.Pending.MoveUseOutcomes, model.MoveUseOutcome{
		ContainerUpdate: &model.ContainerUpdate{ContainerID: cid, Kind: model.ContainerOpened},
	})
	return cid, nil
}

func nextFreeContainerID(open map[model.ContainerId]*model.OpenContainer) (model.ContainerId, error) {
	for i := 0; i < model.MaxOpenContainers; i++ {
		cid := model.ContainerId(i)
		if _, taken := open[cid]; !taken {
			return cid, nil
		}
	}
	return 0, errors.New("open_container_for_player: no free container slots")
}

// CloseContainerForPlayer closes a player-opened container.
func (w *World) CloseContainerForPlayer(id model.PlayerId, cid model.ContainerId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return errors.New("close_container_for_player: unknown player")
	}
	if _, ok := p.OpenContainers[cid]; !ok {
		return ErrNoSuchContainer
	}
	delete(p.OpenContainers, cid)
	p.Pending.ContainerCloses = append(p.Pending.ContainerCloses, cid)
	return nil
}

// UpContainerForPlayer navigates a container view to its parent (or
// closes it if it has none).
func (w *World) UpContainerForPlayer(id model.PlayerId, cid model.ContainerId) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return errors.New("up_container_for_player: unknown player")
	}
	oc, ok := p.OpenContainers[cid]
	if !ok {
		return ErrNoSuchContainer
	}
	if !oc.SourceIsContainer {
		delete(p.OpenContainers, cid)
		p.Pending.ContainerCloses = append(p.Pending.ContainerCloses, cid)
		return nil
	}
	parent, ok := p.OpenContainers[oc.ParentContainerID]
	if !ok {
		delete(p.OpenContainers, cid)
		p.Pending.ContainerCloses = append(p.Pending.ContainerCloses, cid)
		return nil
	}
	p.OpenContainers[cid] = parent
	return nil
}

// FindOpenContainerIDForPlayerSource looks up whether a player already has
// a container open for the given map/inventory/container source, so a
// second "use" on the same backpack reuses the existing view.
func (w *World) FindOpenContainerIDForPlayerSource(id model.PlayerId, pos model.Position, stackPos int) (model.ContainerId, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return 0, false
	}
	for cid, oc := range p.OpenContainers {
		if oc.SourceIsMap && oc.MapPosition == pos && oc.StackPos == stackPos {
			return cid, true
		}
	}
	return 0, false
}

// CloseOutOfRangeMapContainers closes every container a player has open
// whose map source has left the player's viewport, called on every
// session-loop iteration from the session's pending-queue drain (spec.md
// §4.5 Container state machine).
func (w *World) CloseOutOfRangeMapContainers(id model.PlayerId) []model.ContainerId {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return nil
	}
	var closed []model.ContainerId
	for cid, oc := range p.OpenContainers {
		if oc.SourceIsMap && !oc.MapPosition.InViewport(p.Position) {
			delete(p.OpenContainers, cid)
			closed = append(closed, cid)
		}
	}
	return closed
}
