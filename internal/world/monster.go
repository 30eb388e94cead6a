package world

// Monster is a spawned hostile actor. Type references the read-only monster
// definition table; Spawn is a back-reference to the owning spawn point and
// is nil for script-conjured monsters.
type Monster struct {
	Character
	Type  int
	Spawn *SpawnPoint

	// Equipped tool item IDs; zero means empty hand. Only their weapon
	// range matters to the simulation core.
	LeftTool  int
	RightTool int

	// Last combat memory.
	EnemyID        int
	EnemyKind      ActorKind
	LastTargetPos  Position
	LastTargetSeen bool

	slotReleased bool
}

// NewMonster builds a live monster of a type at a position.
func NewMonster(monsterType int, pos Position, hp int) *Monster {
	return &Monster{
		Character: Character{
			ID:    NextActorID(),
			Kind:  KindMonster,
			Pos:   pos,
			Alive: true,
			HP:    hp,
			MaxHP: hp,
		},
		Type: monsterType,
	}
}

// RememberEnemy records the chosen target.
func (m *Monster) RememberEnemy(target Actor) {
	b := target.Base()
	m.EnemyID = b.ID
	m.EnemyKind = b.Kind
	m.LastTargetPos = b.Pos
	m.LastTargetSeen = true
}

// ReleaseSpawnSlot frees the monster's slot on its origin spawn point.
// Idempotent: a monster that dies and is then erased releases exactly once.
func (m *Monster) ReleaseSpawnSlot() {
	if m.slotReleased || m.Spawn == nil {
		return
	}
	m.slotReleased = true
	m.Spawn.ReleaseMonster(m)
}
