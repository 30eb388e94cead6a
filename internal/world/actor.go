package world

import "sync/atomic"

// ActorKind discriminates the three actor families.
type ActorKind int

const (
	KindPlayer ActorKind = iota
	KindMonster
	KindNPC
)

// Action point tuning. Credits are capped so an actor idling through a burst
// tick cannot bank an unbounded budget.
const (
	MaxActionPoints = 1000
	MaxFightPoints  = 1000
	MinActCost      = 20 // an actor below this cannot act this tick
	MinFightCost    = 20
	WalkCost        = 20
	// NoPlayerWalkCost is the extra penalty for unengaged random steps,
	// modelling a below-normal pace while no fight is on.
	NoPlayerWalkCost = 10
)

// actorIDCounter hands out runtime object IDs for spawned actors.
// Starts high to stay clear of persisted character IDs.
var actorIDCounter atomic.Int64

func init() {
	actorIDCounter.Store(200_000_000)
}

// NextActorID returns a unique runtime object ID.
func NextActorID() int {
	return int(actorIDCounter.Add(1))
}

// Actor is the common handle over players, monsters and NPCs.
type Actor interface {
	Base() *Character
}

// Character is the state shared by every actor. Owned by the simulation
// goroutine; no locks.
type Character struct {
	ID      int
	Kind    ActorKind
	Pos     Position
	Heading Direction
	Alive   bool

	HP    int
	MaxHP int

	ActionPoints   int
	FightPoints    int
	MentalCapacity int

	Effects    EffectList
	LongAction *LongTimeAction

	Route   *Route
	OnRoute bool
}

func (c *Character) Base() *Character { return c }

// IncreaseActionPoints credits (or debits) AP, clamped to [0, MaxActionPoints].
func (c *Character) IncreaseActionPoints(n int) {
	c.ActionPoints += n
	if c.ActionPoints > MaxActionPoints {
		c.ActionPoints = MaxActionPoints
	}
	if c.ActionPoints < 0 {
		c.ActionPoints = 0
	}
}

// IncreaseFightPoints credits fight points, clamped to [0, MaxFightPoints].
func (c *Character) IncreaseFightPoints(n int) {
	c.FightPoints += n
	if c.FightPoints > MaxFightPoints {
		c.FightPoints = MaxFightPoints
	}
	if c.FightPoints < 0 {
		c.FightPoints = 0
	}
}

// CanAct reports whether the actor has budget for at least one action.
func (c *Character) CanAct() bool { return c.ActionPoints >= MinActCost }

// CanFight reports whether the actor has fight points for a combat action.
func (c *Character) CanFight() bool { return c.FightPoints >= MinFightCost }

// Turn faces the character toward a position without moving it.
func (c *Character) Turn(to Position) {
	if to != c.Pos {
		c.Heading = TowardDirection(c.Pos, to)
	}
}

// Move steps one tile in the given direction when the terrain allows it,
// spending WalkCost AP. Returns false on a blocked or missing field.
func (c *Character) Move(d Direction, t Terrain) bool {
	next := c.Pos.Moved(d)
	if t != nil && !t.Walkable(next) {
		return false
	}
	c.Heading = d
	c.Pos = next
	c.IncreaseActionPoints(-WalkCost)
	return true
}

// Heal restores a fraction of missing hitpoints. Used by self-healing
// monster types during idle turns.
func (c *Character) Heal() {
	if !c.Alive || c.HP >= c.MaxHP {
		return
	}
	c.HP += (c.MaxHP-c.HP)/10 + 1
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}
