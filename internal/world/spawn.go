package world

import (
	"math/rand"
	"time"
)

// SpawnEntryDef is one monster-type quota of a spawn definition.
type SpawnEntryDef struct {
	MonsterType int
	Count       int
}

// SpawnDefinition is the persisted shape of a spawn point.
type SpawnDefinition struct {
	ID           int
	Pos          Position
	Leash        int
	SpawnRange   int
	MinSpawnTime int // respawn delay bounds, in spawn cycles
	MaxSpawnTime int
	SpawnAll     bool
	Entries      []SpawnEntryDef
}

// MonsterFactory creates a monster of a type at a position, or nil when the
// type has no definition (the spawn skips that entry and carries on).
type MonsterFactory func(monsterType int, pos Position) *Monster

type spawnEntry struct {
	monsterType int
	max         int
	current     int
	cooldown    int // spawn cycles until the next creation attempt
}

// SpawnPoint owns a set of live monsters leashed to an anchor position.
// Created from persisted definitions at world initialization and destroyed
// only by a full re-initialization.
type SpawnPoint struct {
	ID           int
	Pos          Position
	Leash        int // square leash radius, L-inf
	SpawnRange   int
	MinSpawnTime int
	MaxSpawnTime int
	SpawnAll     bool

	rng     *rand.Rand
	entries []*spawnEntry
	live    map[int]int // monster ID -> entry index
}

// NewSpawnPoint builds a spawn point from its definition. The rng drives
// monster placement and respawn cooldown spread; nil falls back to a
// time-seeded source.
func NewSpawnPoint(def SpawnDefinition, rng *rand.Rand) *SpawnPoint {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	sp := &SpawnPoint{
		ID:           def.ID,
		Pos:          def.Pos,
		Leash:        def.Leash,
		SpawnRange:   def.SpawnRange,
		MinSpawnTime: def.MinSpawnTime,
		MaxSpawnTime: def.MaxSpawnTime,
		SpawnAll:     def.SpawnAll,
		rng:          rng,
		live:         make(map[int]int),
	}
	for _, e := range def.Entries {
		sp.entries = append(sp.entries, &spawnEntry{monsterType: e.MonsterType, max: e.Count})
	}
	return sp
}

// Spawn creates monsters up to capacity, honoring per-entry respawn
// cooldowns and the spawn-all flag, and returns the new monsters. Each is
// placed uniformly within SpawnRange of the anchor and back-references this
// spawn point. The caller inserts them into the world after its traversal.
func (sp *SpawnPoint) Spawn(create MonsterFactory) []*Monster {
	var created []*Monster
	for idx, e := range sp.entries {
		if e.cooldown > 0 {
			e.cooldown--
			continue
		}
		deficit := e.max - e.current
		if deficit <= 0 {
			continue
		}
		n := 1
		if sp.SpawnAll {
			n = deficit
		}
		for i := 0; i < n; i++ {
			pos := sp.Pos
			if sp.SpawnRange > 0 {
				pos.X += sp.rng.Intn(2*sp.SpawnRange+1) - sp.SpawnRange
				pos.Y += sp.rng.Intn(2*sp.SpawnRange+1) - sp.SpawnRange
			}
			m := create(e.monsterType, pos)
			if m == nil {
				continue
			}
			m.Spawn = sp
			e.current++
			sp.live[m.ID] = idx
			created = append(created, m)
		}
	}
	return created
}

// ReleaseMonster frees the capacity slot held by a monster and arms the
// entry's respawn cooldown. Unknown monsters are ignored, so double releases
// cannot over-free a slot.
func (sp *SpawnPoint) ReleaseMonster(m *Monster) {
	idx, ok := sp.live[m.ID]
	if !ok {
		return
	}
	delete(sp.live, m.ID)
	e := sp.entries[idx]
	if e.current > 0 {
		e.current--
	}
	e.cooldown = sp.MinSpawnTime
	if spread := sp.MaxSpawnTime - sp.MinSpawnTime; spread > 0 {
		e.cooldown += sp.rng.Intn(spread + 1)
	}
}

// LiveCount returns the number of monsters this spawn currently owns.
func (sp *SpawnPoint) LiveCount() int { return len(sp.live) }

// Detach drops ownership of every live monster without arming cooldowns.
// Used when the registry is re-initialized.
func (sp *SpawnPoint) Detach() {
	sp.live = make(map[int]int)
	for _, e := range sp.entries {
		e.current = 0
		e.cooldown = 0
	}
}
