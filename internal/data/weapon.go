package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeaponDef holds the combat-relevant slice of an item definition. The
// simulation core reads only the range; everything else about items lives
// outside it.
type WeaponDef struct {
	ItemID int    `yaml:"item_id"`
	Name   string `yaml:"name"`
	Range  int    `yaml:"range"`
}

type weaponListFile struct {
	Weapons []WeaponDef `yaml:"weapons"`
}

// WeaponTable holds weapon definitions indexed by item ID.
type WeaponTable struct {
	defs map[int]*WeaponDef
}

// LoadWeaponTable loads weapon definitions from a YAML file.
func LoadWeaponTable(path string) (*WeaponTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon_list: %w", err)
	}
	var f weaponListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse weapon_list: %w", err)
	}
	t := &WeaponTable{defs: make(map[int]*WeaponDef, len(f.Weapons))}
	for i := range f.Weapons {
		d := &f.Weapons[i]
		t.defs[d.ItemID] = d
	}
	return t, nil
}

// NewWeaponTable builds a table from in-memory definitions. Used by tests.
func NewWeaponTable(defs []WeaponDef) *WeaponTable {
	t := &WeaponTable{defs: make(map[int]*WeaponDef, len(defs))}
	for i := range defs {
		d := &defs[i]
		t.defs[d.ItemID] = d
	}
	return t
}

// Get returns a weapon definition by item ID, or nil if not found.
func (t *WeaponTable) Get(itemID int) *WeaponDef {
	return t.defs[itemID]
}

// Exists reports whether an item ID is a recognized weapon.
func (t *WeaponTable) Exists(itemID int) bool {
	_, ok := t.defs[itemID]
	return ok
}

// Count returns the number of loaded definitions.
func (t *WeaponTable) Count() int {
	return len(t.defs)
}
