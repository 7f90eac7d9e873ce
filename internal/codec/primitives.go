package codec

import "github.com/tibiaserver/server/internal/model"

// ReadPosition reads a (x:u16, y:u16, z:u8) position.
func (r *Reader) ReadPosition() model.Position {
	x := r.ReadU16()
	y := r.ReadU16()
	z := r.ReadU8()
	return model.Position{X: x, Y: y, Z: z}
}

// WritePosition writes a (x:u16, y:u16, z:u8) position.
func (w *Writer) WritePosition(p model.Position) {
	w.WriteU16(p.X)
	w.WriteU16(p.Y)
	w.WriteU8(p.Z)
}

// ReadOutfit reads a u8 look_type followed by either
// (head, body, legs, feet, addons) when look_type != 0, or a u16 look_item
// when look_type == 0.
func (r *Reader) ReadOutfit() model.Outfit {
	lookType := r.ReadU8()
	if lookType == 0 {
		return model.Outfit{LookItem: r.ReadU16()}
	}
	return model.Outfit{
		LookType: uint16(lookType),
		Head:     r.ReadU8(),
		Body:     r.ReadU8(),
		Legs:     r.ReadU8(),
		Feet:     r.ReadU8(),
		Addons:   r.ReadU8(),
	}
}

// WriteOutfit writes an Outfit. Callers should pass an already-snapshotted
// Outfit (see model.Outfit.Snapshot) so LookType always fits a u8.
func (w *Writer) WriteOutfit(o model.Outfit) {
	w.WriteU8(uint8(o.LookType))
	if o.LookType != 0 {
		w.WriteU8(o.Head)
		w.WriteU8(o.Body)
		w.WriteU8(o.Legs)
		w.WriteU8(o.Feet)
		w.WriteU8(o.Addons)
	} else {
		w.WriteU16(o.LookItem)
	}
}

// ReadItemStack reads a u16 item type, then a u8 count when hasCount is
// set (marking the stack Stackable), otherwise nothing (Count 1). Since the
// stackable/charge catalog is an external content-loader concern (spec.md
// §1), whether a count follows is decided by the caller's hasCount
// argument rather than guessed from the type id. Charge attributes are
// not read.
func (r *Reader) ReadItemStack(hasCount bool) model.ItemStack {
	typeID := model.ItemTypeId(r.ReadU16())
	stack := model.ItemStack{TypeID: typeID}
	if hasCount {
		stack.Count = uint16(r.ReadU8())
		stack.Stackable = true
	} else {
		stack.Count = 1
	}
	return stack
}

// WriteItemStack writes a u16 type id, then a u8 count (clamped to 255)
// only when the item is stackable; non-stackable items write the type id
// alone.
func (w *Writer) WriteItemStack(s model.ItemStack) {
	w.WriteU16(uint16(s.TypeID))
	if s.Stackable {
		count := s.Count
		if count > 0xFF {
			count = 0xFF
		}
		w.WriteU8(uint8(count))
	}
}
