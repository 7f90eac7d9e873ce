// Package content loads the world's static definitions — item templates,
// monster races, spells, and the map index — from YAML authoring files into
// the flat lookup tables the simulation and session packages consume.
// Populating these tables is an external collaborator concern (spec.md
// §1): the simulation only ever sees the resulting maps, never a file path.
package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tibiaserver/server/internal/model"
)

// ItemTemplate is one item type's static definition: everything a spawned
// model.ItemStack needs beyond its per-instance Count/Attributes.
type ItemTemplate struct {
	TypeID     model.ItemTypeId
	Name       string
	Stackable  bool
	Weight     uint16
	Container  bool
	Slots      uint8 // capacity when Container is true
	Charges    int32 // initial Attributes["charges"] for chargeable items, 0 if none
	LightLevel uint8
	LightColor uint8
}

type itemEntry struct {
	TypeID     model.ItemTypeId `yaml:"type_id"`
	Name       string           `yaml:"name"`
	Stackable  bool             `yaml:"stackable"`
	Weight     uint16           `yaml:"weight"`
	Container  bool             `yaml:"container"`
	Slots      uint8            `yaml:"slots"`
	Charges    int32            `yaml:"charges"`
	LightLevel uint8            `yaml:"light_level"`
	LightColor uint8            `yaml:"light_color"`
}

type itemListFile struct {
	Items []itemEntry `yaml:"items"`
}

// ItemTable is the loaded, by-id item-template lookup.
type ItemTable struct {
	byID map[model.ItemTypeId]*ItemTemplate
}

// Get returns an item template by type id, or nil if unknown.
func (t *ItemTable) Get(id model.ItemTypeId) *ItemTemplate {
	return t.byID[id]
}

// Count reports how many item templates were loaded.
func (t *ItemTable) Count() int {
	return len(t.byID)
}

// NewStack builds a fresh model.ItemStack from a template, applying its
// default charges attribute and, for containers, an empty Contents slice so
// model.ItemStack.IsContainer reports true immediately.
func (t *ItemTable) NewStack(id model.ItemTypeId, count uint16) (model.ItemStack, bool) {
	tpl, ok := t.byID[id]
	if !ok {
		return model.ItemStack{}, false
	}
	s := model.ItemStack{TypeID: id, Count: count, Stackable: tpl.Stackable}
	if tpl.Charges > 0 {
		s.Attributes = map[string]int32{"charges": tpl.Charges}
	}
	if tpl.Container {
		s.Contents = make([]model.ItemStack, 0, tpl.Slots)
	}
	return s, true
}

// LoadItemTable reads one item-list YAML file into an ItemTable, grounded
// on the donor's loadWeapons/loadArmors/loadEtcItems shape (read-file,
// unmarshal-list, index-by-id) collapsed to this domain's single flat
// ItemStack/Attributes model instead of the donor's three item categories.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read items: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("content: parse items: %w", err)
	}
	t := &ItemTable{byID: make(map[model.ItemTypeId]*ItemTemplate, len(f.Items))}
	for i := range f.Items {
		e := &f.Items[i]
		t.byID[e.TypeID] = &ItemTemplate{
			TypeID:     e.TypeID,
			Name:       e.Name,
			Stackable:  e.Stackable,
			Weight:     e.Weight,
			Container:  e.Container,
			Slots:      e.Slots,
			Charges:    e.Charges,
			LightLevel: e.LightLevel,
			LightColor: e.LightColor,
		}
	}
	return t, nil
}
