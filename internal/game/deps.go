package game

import (
	"context"

	"github.com/illago/server/internal/data"
	"github.com/illago/server/internal/world"
)

// MonsterScript is the per-monster-type hook bundle supplied by the
// scripting layer. All hooks are optional at the script level; the handle
// itself may be absent (nil) when the type registers no script.
type MonsterScript interface {
	SetTarget(m *world.Monster, candidates []world.Actor) (world.Actor, bool)
	EnemyNear(m *world.Monster, target world.Actor) bool
	EnemyOnSight(m *world.Monster, target world.Actor) bool
	AbortRoute(m *world.Monster)
	OnSpawn(m *world.Monster)
}

// Hooks is the scripting engine surface the simulation consumes.
type Hooks interface {
	// MonsterScript resolves a script name to its hook bundle, nil if the
	// name is empty or unregistered.
	MonsterScript(name string) MonsterScript
	// SelectTarget is the global fallback target-selection hook. A nil
	// return declines; the engine then applies its built-in policy.
	SelectTarget(m *world.Monster, candidates []world.Actor) world.Actor
	OnLogout(p *world.Player)
	ReduceMentalCapacity(a world.Actor)
	ScheduledCycle()
}

// Notifier broadcasts world changes to whoever observes them. Implemented
// on top of the session layer; the simulation never touches the transport.
type Notifier interface {
	CharacterMoved(a world.Actor)
	CharacterRemoved(id int, pos world.Position)
	CharacterSpun(n *world.NPC)
	PlayerListChanged(players []*world.Player)
	WorldDayChanged(day int)
}

// PlayerSaver persists one player's state. Called for at most one player
// per tick.
type PlayerSaver interface {
	SavePlayer(ctx context.Context, p *world.Player) error
}

// SpawnStore loads the persisted spawn-point definitions.
type SpawnStore interface {
	LoadSpawnPoints(ctx context.Context) ([]world.SpawnDefinition, error)
}

// CombatResolver launches a monster's attack on its remembered enemy and
// reports whether an attack happened. Damage resolution lives outside the
// simulation core.
type CombatResolver interface {
	Attack(m *world.Monster) bool
}

// Monitoring is the periodic health-check surface for attached monitoring
// clients.
type Monitoring interface {
	CheckClients()
}

// Ager applies wear to inventories and map items on the slow maintenance
// cadence. Optional.
type Ager interface {
	AgeInventory()
	AgeMaps()
}

// Deps bundles the engine's external collaborators. Only Log, Monsters and
// Weapons are required; every interface degrades to a no-op when nil.
type Deps struct {
	Terrain  world.Terrain
	Notifier Notifier
	Saver    PlayerSaver
	Spawns   SpawnStore
	Combat   CombatResolver
	Hooks    Hooks
	Monsters *data.MonsterTable
	Weapons  *data.WeaponTable
}
