package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/illago/server/internal/config"
	"github.com/illago/server/internal/world"
)

const saveTimeout = 5 * time.Second

// Engine is the simulation core. All actor state is owned by the single
// goroutine that calls Tick and Scheduler.Run; the only concurrent entry
// point is the immediate command queue.
type Engine struct {
	cfg     config.WorldConfig
	log     *zap.Logger
	deps    Deps
	rng     *rand.Rand
	now     func() time.Time
	started time.Time

	// Action point clock. usedAP is the total AP already credited since
	// start; ap is the credit of the current tick.
	usedAP int
	ap     int

	Players  *world.Registry[*world.Player]
	Monsters *world.Registry[*world.Monster]
	Npcs     *world.Registry[*world.NPC]

	spawns          []*world.SpawnPoint
	lastSpawnCheck  time.Time
	pendingMonsters []*world.Monster

	Clock        *WorldClock
	lastWorldDay int

	mu        sync.Mutex
	immediate []immediateCommand

	gmCommands     CommandMap
	playerCommands CommandMap
}

// NewEngine builds the simulation around its configuration and
// collaborators. The world starts empty; call InitSpawns to populate it.
func NewEngine(cfg *config.Config, log *zap.Logger, deps Deps) *Engine {
	e := &Engine{
		cfg:            cfg.World,
		log:            log,
		deps:           deps,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		now:            time.Now,
		Players:        world.NewRegistry[*world.Player](),
		Monsters:       world.NewRegistry[*world.Monster](),
		Npcs:           world.NewRegistry[*world.NPC](),
		Clock:          NewWorldClock(cfg.Time),
		gmCommands:     make(CommandMap),
		playerCommands: make(CommandMap),
	}
	e.started = e.now()
	e.lastSpawnCheck = e.started
	e.lastWorldDay = e.Clock.Day()
	return e
}

// Tick advances the world by the action points the wall clock owes it.
// A call before the next tick-unit boundary is a no-op; a call after a
// stall credits the whole backlog in one burst.
func (e *Engine) Tick() {
	elapsed := e.now().Sub(e.started)
	e.ap = int(elapsed/e.cfg.TickUnit) - e.usedAP
	if e.ap <= 0 {
		e.ap = 0
		return
	}
	e.usedAP += e.ap
	e.checkPlayers()
	e.checkMonsters()
	e.checkNPCs()
}

// AP returns the remaining credit of the most recent Tick call. Zero when
// that call was a no-op; the value persists until the next call recomputes
// it.
func (e *Engine) AP() int { return e.ap }

// checkPlayers runs the per-tick player pass: keepalive enforcement,
// point credits, queued commands, long actions, effects and the amortized
// single-player save. Offline players get logout side effects and a
// deferred erase.
func (e *Engine) checkPlayers() {
	now := e.now().Unix()
	timeout := int64(e.cfg.ClientTimeout / time.Second)
	saveAge := int64(e.cfg.PlayerSaveInterval / time.Second)
	saved := false

	var lost []*world.Player
	e.Players.ForEach(func(p *world.Player) {
		if p.Session == nil || !p.Session.Online() {
			e.log.Info("player logged out",
				zap.Int("id", p.ID), zap.String("name", p.Name))
			if e.deps.Hooks != nil {
				e.deps.Hooks.OnLogout(p)
			}
			if e.deps.Notifier != nil {
				e.deps.Notifier.CharacterRemoved(p.ID, p.Pos)
			}
			lost = append(lost, p)
			return
		}

		age := now - p.LastKeepAlive
		if age < 0 || age > timeout {
			e.log.Info("closing unstable client connection",
				zap.Int("id", p.ID), zap.Int64("silent_seconds", age))
			p.Session.Disconnect("connection timeout")
			return
		}

		p.IncreaseActionPoints(e.ap)
		p.IncreaseFightPoints(e.ap)
		e.workoutCommands(p)
		if p.LongAction != nil {
			p.LongAction.CheckAction()
		}
		p.Effects.CheckEffects(&p.Character)

		if !saved && now-p.LastSaveTime >= saveAge {
			e.savePlayer(p, now)
			saved = true
		}
	})

	for _, p := range lost {
		e.Players.Erase(p.ID)
	}
	if len(lost) > 0 {
		e.updatePlayerList()
	}
}

func (e *Engine) savePlayer(p *world.Player, now int64) {
	if e.deps.Saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := e.deps.Saver.SavePlayer(ctx, p); err != nil {
		e.log.Error("save player",
			zap.Int("id", p.ID), zap.String("name", p.Name), zap.Error(err))
		return
	}
	p.LastSaveTime = now
}

func (e *Engine) workoutCommands(p *world.Player) {
	for _, cmd := range p.DrainCommands() {
		if !e.ExecuteUserCommand(p, cmd, e.playerCommands) {
			e.log.Debug("unknown player command",
				zap.Int("id", p.ID), zap.String("command", cmd))
		}
	}
}

func (e *Engine) updatePlayerList() {
	if e.deps.Notifier == nil {
		return
	}
	players := make([]*world.Player, 0, e.Players.Len())
	e.Players.ForEach(func(p *world.Player) {
		players = append(players, p)
	})
	e.deps.Notifier.PlayerListChanged(players)
}

// isPlayerNearby reports whether any live player is close enough for the
// actor to be worth simulating this tick.
func (e *Engine) isPlayerNearby(c *world.Character) bool {
	return len(e.Players.FindAliveInRange(c.Pos, e.cfg.MaxActRange)) > 0
}

// InsertPlayer registers a connected player and refreshes the player list.
func (e *Engine) InsertPlayer(p *world.Player) {
	p.LastKeepAlive = e.now().Unix()
	p.LastSaveTime = e.now().Unix()
	e.Players.Insert(p)
	e.updatePlayerList()
}

// InsertNPC registers a scripted NPC.
func (e *Engine) InsertNPC(n *world.NPC) {
	e.Npcs.Insert(n)
	if e.deps.Notifier != nil {
		e.deps.Notifier.CharacterMoved(n)
	}
}

// InsertMonster registers a monster outside the spawn cycle, for scripts
// that conjure monsters directly.
func (e *Engine) InsertMonster(m *world.Monster) {
	e.Monsters.Insert(m)
	if e.deps.Notifier != nil {
		e.deps.Notifier.CharacterMoved(m)
	}
}

// killMonster erases a dead monster after its traversal pass, releasing
// its spawn slot exactly once.
func (e *Engine) killMonster(m *world.Monster) {
	m.ReleaseSpawnSlot()
	e.Monsters.Erase(m.ID)
	if e.deps.Notifier != nil {
		e.deps.Notifier.CharacterRemoved(m.ID, m.Pos)
	}
}

// InitSpawns rebuilds the spawn registry from the store. Existing spawned
// monsters are removed first. Returns false when the store is missing,
// fails, or holds no definitions; the engine then runs with an empty but
// functional spawn list.
func (e *Engine) InitSpawns(ctx context.Context) bool {
	var stale []*world.Monster
	e.Monsters.ForEach(func(m *world.Monster) {
		if m.Spawn != nil {
			m.Spawn = nil
			stale = append(stale, m)
		}
	})
	for _, m := range stale {
		e.Monsters.Erase(m.ID)
		if e.deps.Notifier != nil {
			e.deps.Notifier.CharacterRemoved(m.ID, m.Pos)
		}
	}
	for _, sp := range e.spawns {
		sp.Detach()
	}
	e.spawns = nil

	if e.deps.Spawns == nil {
		return false
	}
	defs, err := e.deps.Spawns.LoadSpawnPoints(ctx)
	if err != nil {
		e.log.Error("load spawn points", zap.Error(err))
		return false
	}
	for _, d := range defs {
		e.spawns = append(e.spawns, world.NewSpawnPoint(d, e.rng))
		e.log.Debug("spawn point ready",
			zap.Int("id", d.ID),
			zap.Int("x", d.Pos.X), zap.Int("y", d.Pos.Y), zap.Int("z", d.Pos.Z),
			zap.Int("entries", len(d.Entries)))
	}
	e.log.Info("spawn registry initialized", zap.Int("points", len(e.spawns)))
	return len(e.spawns) > 0
}

// SpawnPoints exposes the live spawn registry, for commands and tests.
func (e *Engine) SpawnPoints() []*world.SpawnPoint { return e.spawns }

// SetSpawnEnabled toggles the spawn cycle at runtime.
func (e *Engine) SetSpawnEnabled(enabled bool) { e.cfg.SpawnEnabled = enabled }

// InvalidatePlayerDialogs marks every player's open client dialogs stale.
// Called when the world changes under them, for example a full respawn.
func (e *Engine) InvalidatePlayerDialogs() {
	e.Players.ForEach(func(p *world.Player) {
		p.InvalidateDialogs()
	})
}
