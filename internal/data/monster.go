package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MonsterDef holds static data for a monster type loaded from YAML.
// The table is read-only after load; a missing entry degrades AI richness
// (no script hooks, no self-heal) but never halts built-in behavior.
type MonsterDef struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	HP          int    `yaml:"hp"`
	Script      string `yaml:"script"` // registered Lua script name, empty = none
	CanSelfHeal bool   `yaml:"can_self_heal"`
}

type monsterListFile struct {
	Monsters []MonsterDef `yaml:"monsters"`
}

// MonsterTable holds all monster definitions indexed by type ID.
type MonsterTable struct {
	defs map[int]*MonsterDef
}

// LoadMonsterTable loads monster definitions from a YAML file.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster_list: %w", err)
	}
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monster_list: %w", err)
	}
	t := &MonsterTable{defs: make(map[int]*MonsterDef, len(f.Monsters))}
	for i := range f.Monsters {
		d := &f.Monsters[i]
		t.defs[d.ID] = d
	}
	return t, nil
}

// NewMonsterTable builds a table from in-memory definitions. Used by tests.
func NewMonsterTable(defs []MonsterDef) *MonsterTable {
	t := &MonsterTable{defs: make(map[int]*MonsterDef, len(defs))}
	for i := range defs {
		d := &defs[i]
		t.defs[d.ID] = d
	}
	return t
}

// Get returns a monster definition by type ID, or nil if not found.
func (t *MonsterTable) Get(id int) *MonsterDef {
	return t.defs[id]
}

// Exists reports whether a type ID has a definition.
func (t *MonsterTable) Exists(id int) bool {
	_, ok := t.defs[id]
	return ok
}

// Count returns the number of loaded definitions.
func (t *MonsterTable) Count() int {
	return len(t.defs)
}
