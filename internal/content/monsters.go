package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tibiaserver/server/internal/model"
)

// MonsterTemplate is a monster race's static definition: everything
// SpawnMonster needs to build a fresh model.Monster instance.
type MonsterTemplate struct {
	RaceNumber uint32
	Name       string
	Health     uint32
	Skills     map[uint8]*model.Skill
	Damage     []model.DamageEntry
	Strategy   [4]uint8
	TalkLines  []string
	Spells     []model.SpellId
	Agro       bool
	Undead     bool
	Tameable   bool
	Outfit     model.Outfit
}

type skillEntry struct {
	SkillID  uint8  `yaml:"skill_id"`
	Level    uint16 `yaml:"level"`
	Progress uint16 `yaml:"progress"`
}

type damageEntry struct {
	Kind string `yaml:"kind"`
	Min  int32  `yaml:"min"`
	Max  int32  `yaml:"max"`
}

type monsterEntry struct {
	RaceNumber uint32        `yaml:"race_number"`
	Name       string        `yaml:"name"`
	Health     uint32        `yaml:"health"`
	Skills     []skillEntry  `yaml:"skills"`
	Damage     []damageEntry `yaml:"damage"`
	Strategy   [4]uint8      `yaml:"strategy"`
	TalkLines  []string      `yaml:"talk_lines"`
	SpellIDs   []uint16      `yaml:"spell_ids"`
	Agro       bool          `yaml:"agro"`
	Undead     bool          `yaml:"undead"`
	Tameable   bool          `yaml:"tameable"`
	OutfitID   uint16        `yaml:"outfit_id"`
}

type monsterListFile struct {
	Monsters []monsterEntry `yaml:"monsters"`
}

// MonsterTable is the loaded, by-race-number monster template lookup,
// grounded on the donor's MobSkillTable (read-file, unmarshal-list,
// index-by-id) but widened from "skills only" to the monster's full
// spawnable template, since this domain has no separate NPC-stats file.
type MonsterTable struct {
	byRace map[uint32]*MonsterTemplate
}

// Get returns a monster template by race number, or nil if unknown.
func (t *MonsterTable) Get(race uint32) *MonsterTemplate {
	return t.byRace[race]
}

// Count reports how many monster templates were loaded.
func (t *MonsterTable) Count() int {
	return len(t.byRace)
}

// Spawn builds a fresh model.Monster from a race template at pos, or nil if
// the race is unknown.
func (t *MonsterTable) Spawn(id model.CreatureId, race uint32, pos model.Position) *model.Monster {
	tpl, ok := t.byRace[race]
	if !ok {
		return nil
	}
	spells := append([]model.SpellId(nil), tpl.Spells...)
	m := &model.Monster{
		ID:         id,
		RaceNumber: race,
		Health:     tpl.Health,
		MaxHealth:  tpl.Health,
		Skills:     tpl.Skills,
		Damage:     tpl.Damage,
		Strategy:   tpl.Strategy,
		TalkLines:  tpl.TalkLines,
		Spells:     spells,
		Agro:       tpl.Agro,
		Undead:     tpl.Undead,
		Tameable:   tpl.Tameable,
		Position:   pos,
		Outfit:     tpl.Outfit,
		HateList:   make(map[model.CreatureId]int64),
	}
	return m
}

// LoadMonsterTable reads one monster-list YAML file into a MonsterTable.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read monsters: %w", err)
	}
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("content: parse monsters: %w", err)
	}
	t := &MonsterTable{byRace: make(map[uint32]*MonsterTemplate, len(f.Monsters))}
	for i := range f.Monsters {
		e := &f.Monsters[i]
		skills := make(map[uint8]*model.Skill, len(e.Skills))
		for _, sk := range e.Skills {
			skills[sk.SkillID] = &model.Skill{Level: sk.Level, Progress: sk.Progress}
		}
		dmg := make([]model.DamageEntry, len(e.Damage))
		for i, d := range e.Damage {
			dmg[i] = model.DamageEntry{Kind: d.Kind, Min: d.Min, Max: d.Max}
		}
		spells := make([]model.SpellId, len(e.SpellIDs))
		for i, s := range e.SpellIDs {
			spells[i] = model.SpellId(s)
		}
		t.byRace[e.RaceNumber] = &MonsterTemplate{
			RaceNumber: e.RaceNumber,
			Name:       e.Name,
			Health:     e.Health,
			Skills:     skills,
			Damage:     dmg,
			Strategy:   e.Strategy,
			TalkLines:  e.TalkLines,
			Spells:     spells,
			Agro:       e.Agro,
			Undead:     e.Undead,
			Tameable:   e.Tameable,
			Outfit:     model.Outfit{LookType: e.OutfitID},
		}
	}
	return t, nil
}
