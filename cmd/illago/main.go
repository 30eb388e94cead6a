package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/illago/server/internal/config"
	"github.com/illago/server/internal/data"
	"github.com/illago/server/internal/game"
	"github.com/illago/server/internal/persist"
	"github.com/illago/server/internal/scripting"
	"github.com/illago/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("ILLAGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log.Info("starting world server", zap.String("name", cfg.Server.Name))

	// 3. Connect to PostgreSQL and run migrations
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("database ready")

	// 4. Repositories
	charRepo := persist.NewCharacterRepo(db)
	spawnRepo := persist.NewSpawnRepo(db)

	// 5. Static data tables
	monsterTable, err := data.LoadMonsterTable(filepath.Join(cfg.Server.DataDir, "monster_list.yaml"))
	if err != nil {
		return fmt.Errorf("load monster table: %w", err)
	}
	log.Info("monster definitions loaded", zap.Int("count", monsterTable.Count()))

	weaponTable, err := data.LoadWeaponTable(filepath.Join(cfg.Server.DataDir, "weapon_list.yaml"))
	if err != nil {
		return fmt.Errorf("load weapon table: %w", err)
	}
	log.Info("weapon definitions loaded", zap.Int("count", weaponTable.Count()))

	// 6. Lua scripting engine
	luaEngine, err := scripting.NewEngine(cfg.Server.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	log.Info("lua scripts loaded")

	// 7. Simulation engine
	notifier := &broadcaster{}
	engine := game.NewEngine(cfg, log, game.Deps{
		Terrain:  openTerrain{},
		Notifier: notifier,
		Saver:    charRepo,
		Spawns:   spawnRepo,
		Hooks:    luaHooks{luaEngine},
		Monsters: monsterTable,
		Weapons:  weaponTable,
	})
	notifier.players = engine.Players
	registerCommands(engine)

	if !engine.InitSpawns(ctx) {
		log.Warn("no spawn points loaded, world starts empty")
	}

	// 8. Scheduler and driver loop
	sched := game.NewScheduler(log)
	engine.InitScheduler(sched, nil, nil)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.World.DriverInterval)
	defer ticker.Stop()

	log.Info("world loop running",
		zap.Duration("tick_unit", cfg.World.TickUnit),
		zap.Duration("driver_interval", cfg.World.DriverInterval))

	for {
		select {
		case <-ticker.C:
			engine.DrainImmediateCommands()
			sched.Run()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			saveAllPlayers(engine, charRepo, log)
			log.Info("world server stopped")
			return nil
		}
	}
}

// openTerrain treats every field as walkable. Map geometry lives outside
// the simulation core; the session layer rejects illegal client moves on
// its own.
type openTerrain struct{}

func (openTerrain) Walkable(world.Position) bool { return true }

// broadcaster fans world changes out to every connected session.
type broadcaster struct {
	players *world.Registry[*world.Player]
}

func (b *broadcaster) send(m world.Message) {
	b.players.ForEach(func(p *world.Player) {
		if p.Session != nil && p.Session.Online() {
			p.Session.Send(m)
		}
	})
}

func (b *broadcaster) CharacterMoved(a world.Actor) {
	c := a.Base()
	b.send(world.Message{Type: world.MsgMove, ActorID: c.ID, Pos: c.Pos})
}

func (b *broadcaster) CharacterRemoved(id int, pos world.Position) {
	b.send(world.Message{Type: world.MsgRemove, ActorID: id, Pos: pos})
}

func (b *broadcaster) CharacterSpun(n *world.NPC) {
	b.send(world.Message{Type: world.MsgSpin, ActorID: n.ID, Pos: n.Pos})
}

func (b *broadcaster) PlayerListChanged(players []*world.Player) {
	b.send(world.Message{Type: world.MsgPlayerList, Value: len(players)})
}

func (b *broadcaster) WorldDayChanged(day int) {
	b.send(world.Message{Type: world.MsgWorldTime, Value: day})
}

// luaHooks adapts the scripting engine to the simulation's hook surface.
type luaHooks struct {
	engine *scripting.Engine
}

func (h luaHooks) MonsterScript(name string) game.MonsterScript {
	if s := h.engine.MonsterScript(name); s != nil {
		return s
	}
	return nil
}

func (h luaHooks) SelectTarget(m *world.Monster, candidates []world.Actor) world.Actor {
	return h.engine.SelectTarget(m, candidates)
}

func (h luaHooks) OnLogout(p *world.Player) { h.engine.OnLogout(p) }

func (h luaHooks) ReduceMentalCapacity(a world.Actor) { h.engine.ReduceMentalCapacity(a) }

func (h luaHooks) ScheduledCycle() { h.engine.ScheduledCycle() }

// registerCommands installs the built-in chat commands.
func registerCommands(e *game.Engine) {
	e.RegisterPlayerCommand("who", func(e *game.Engine, p *world.Player, _ string) {
		if p.Session != nil {
			p.Session.Send(world.Message{
				Type:  world.MsgText,
				Text:  fmt.Sprintf("%d players online", e.Players.Len()),
				Value: e.Players.Len(),
			})
		}
	})
	e.RegisterPlayerCommand("time", func(e *game.Engine, p *world.Player, _ string) {
		if p.Session != nil {
			day := e.Clock.Day()
			p.Session.Send(world.Message{
				Type:  world.MsgText,
				Text:  fmt.Sprintf("world day %d", day),
				Value: day,
			})
		}
	})
	e.RegisterGMCommand("respawn", func(e *game.Engine, p *world.Player, _ string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ok := e.InitSpawns(ctx)
		e.InvalidatePlayerDialogs()
		if p.Session != nil {
			p.Session.Send(world.Message{
				Type: world.MsgText,
				Text: fmt.Sprintf("spawn registry reloaded: %v", ok),
			})
		}
	})
	e.RegisterGMCommand("spawning", func(e *game.Engine, p *world.Player, args string) {
		enabled := args == "on"
		e.SetSpawnEnabled(enabled)
		if p.Session != nil {
			p.Session.Send(world.Message{
				Type: world.MsgText,
				Text: fmt.Sprintf("spawning enabled: %v", enabled),
			})
		}
	})
}

// saveAllPlayers persists every online player before shutdown.
func saveAllPlayers(e *game.Engine, repo *persist.CharacterRepo, log *zap.Logger) {
	count := 0
	e.Players.ForEach(func(p *world.Player) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.SavePlayer(ctx, p); err != nil {
			log.Error("save player on shutdown",
				zap.String("name", p.Name), zap.Error(err))
			return
		}
		count++
	})
	if count > 0 {
		log.Info("players saved", zap.Int("count", count))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
