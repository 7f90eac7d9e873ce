// Package intent turns raw client packets into typed, pure outcomes: no
// parser here ever touches world state (spec.md §4.4). Grounded on the
// donor's internal/handler dispatch-by-opcode style, generalized from its
// single mutate-and-reply handlers into side-effect-free decoders whose
// results worldstate/sim later apply.
package intent

import "github.com/tibiaserver/server/internal/model"

// Location is a decoded from/to addressable slot: a tile position, an
// inventory slot, or a container slot.
type Location struct {
	Kind        LocationKind
	Position    model.Position
	InventorySlot uint8
	ContainerID   model.ContainerId
	ContainerSlot uint8
}

type LocationKind uint8

const (
	LocationTile LocationKind = iota
	LocationInventory
	LocationContainer
)

// invLocMarker is the wire sentinel x value meaning "not a tile".
const invLocMarker uint16 = 0xFFFF

// DecodeLocation converts the wire (x,y,z) triple into a Location, per
// spec.md §4.4: x==0xFFFF with y in [0,9] means an inventory slot; x==0xFFFF
// with y>=0x40 means a container slot (container_id = y-0x40, slot = z).
func DecodeLocation(x, y uint16, z uint8) Location {
	if x != invLocMarker {
		return Location{Kind: LocationTile, Position: model.Position{X: x, Y: y, Z: z}}
	}
	if y <= 9 {
		return Location{Kind: LocationInventory, InventorySlot: uint8(y)}
	}
	return Location{
		Kind:          LocationContainer,
		ContainerID:   model.ContainerId(y - 0x40),
		ContainerSlot: z,
	}
}
