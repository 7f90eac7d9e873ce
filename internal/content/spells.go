package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tibiaserver/server/internal/model"
)

var effectKindByName = map[string]model.EffectKind{
	"damage":     model.EffectDamage,
	"healing":    model.EffectHealing,
	"field":      model.EffectField,
	"summon":     model.EffectSummon,
	"light":      model.EffectLight,
	"haste":      model.EffectHaste,
	"dispel":     model.EffectDispel,
	"outfit":     model.EffectOutfit,
	"challenge":  model.EffectChallenge,
	"levitate":   model.EffectLevitate,
	"raise_dead": model.EffectRaiseDead,
	"conjure":    model.EffectConjure,
	"antidote":   model.EffectAntidote,
	"rope":       model.EffectRope,
	"find":       model.EffectFind,
	"enchant":    model.EffectEnchant,
}

var spellKindByName = map[string]model.SpellKind{
	"instant": model.SpellInstant,
	"rune":    model.SpellRune,
	"conjure": model.SpellConjure,
}

var spellTargetByName = map[string]model.SpellTarget{
	"self":     model.TargetSelfOnly,
	"position": model.TargetPosition,
	"creature": model.TargetCreature,
}

type effectEntry struct {
	Kind             string           `yaml:"kind"`
	MinAmount        int32            `yaml:"min_amount"`
	MaxAmount        int32            `yaml:"max_amount"`
	AreaRadius       uint8            `yaml:"area_radius"`
	ResultItemOrRace model.ItemTypeId `yaml:"result_item_or_race"`
	LightLevel       uint8            `yaml:"light_level"`
	LightColor       uint8            `yaml:"light_color"`
	DurationTicks    uint32           `yaml:"duration_ticks"`
}

type spellEntry struct {
	ID            uint16      `yaml:"id"`
	Words         string      `yaml:"words"`
	Kind          string      `yaml:"kind"`
	Target        string      `yaml:"target"`
	ManaCost      uint16      `yaml:"mana_cost"`
	SoulCost      uint8       `yaml:"soul_cost"`
	LevelCost     uint16      `yaml:"level_cost"`
	MagicLevelReq uint16      `yaml:"magic_level_req"`
	Cooldown      uint32      `yaml:"cooldown"`
	GroupID       uint16      `yaml:"group_id"`
	GroupCooldown uint32      `yaml:"group_cooldown"`
	RuneTypeID    model.ItemTypeId `yaml:"rune_type_id"`
	Effect        *effectEntry `yaml:"effect"`
}

type spellListFile struct {
	Spells []spellEntry `yaml:"spells"`
}

// SpellTable is the loaded, by-id spell definition lookup, plus a
// normalized-words index used to resolve a typed incantation.
type SpellTable struct {
	byID     map[model.SpellId]*model.Spell
	byWords  map[string]*model.Spell
}

// Get resolves a spell by id.
func (t *SpellTable) Get(id model.SpellId) (model.Spell, bool) {
	s, ok := t.byID[id]
	if !ok {
		return model.Spell{}, false
	}
	return *s, true
}

// Resolve implements session.SpellLookup: normalized incantation -> spell.
func (t *SpellTable) Resolve(normalizedWords string) (model.Spell, bool) {
	s, ok := t.byWords[normalizedWords]
	if !ok {
		return model.Spell{}, false
	}
	return *s, true
}

// Count reports how many spells were loaded.
func (t *SpellTable) Count() int {
	return len(t.byID)
}

// LoadSpellTable reads one spell-list YAML file, grounded on the donor's
// flat yaml-tag-list loader shape but assembling this domain's tagged-union
// model.SpellEffect (see internal/model/spell.go) instead of the donor's
// flat per-category struct.
func LoadSpellTable(path string) (*SpellTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read spells: %w", err)
	}
	var f spellListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("content: parse spells: %w", err)
	}
	t := &SpellTable{
		byID:    make(map[model.SpellId]*model.Spell, len(f.Spells)),
		byWords: make(map[string]*model.Spell, len(f.Spells)),
	}
	for i := range f.Spells {
		e := &f.Spells[i]
		s := &model.Spell{
			ID:            model.SpellId(e.ID),
			Words:         e.Words,
			Kind:          spellKindByName[e.Kind],
			Target:        spellTargetByName[e.Target],
			ManaCost:      e.ManaCost,
			SoulCost:      e.SoulCost,
			LevelCost:     e.LevelCost,
			MagicLevelReq: e.MagicLevelReq,
			Cooldown:      model.GameTick(e.Cooldown),
			GroupID:       model.SpellGroupId(e.GroupID),
			GroupCooldown: model.GameTick(e.GroupCooldown),
			RuneTypeID:    e.RuneTypeID,
		}
		if e.Effect != nil {
			s.Effect = &model.SpellEffect{
				Kind:             effectKindByName[e.Effect.Kind],
				MinAmount:        e.Effect.MinAmount,
				MaxAmount:        e.Effect.MaxAmount,
				AreaRadius:       e.Effect.AreaRadius,
				ResultItemOrRace: e.Effect.ResultItemOrRace,
				LightLevel:       e.Effect.LightLevel,
				LightColor:       e.Effect.LightColor,
				DurationTicks:    model.GameTick(e.Effect.DurationTicks),
			}
		}
		t.byID[s.ID] = s
		t.byWords[model.NormalizeWords(s.Words)] = s
	}
	return t, nil
}
