package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/illago/server/internal/world"
)

// Engine wraps a single gopher-lua VM for the pluggable actor behavior.
// Single-goroutine access only (simulation loop).
//
// Scripts register behavior tables through Go-installed globals:
//
//	register_monster_script("wolf", { set_target = ..., enemy_near = ...,
//	    enemy_on_sight = ..., abort_route = ..., on_spawn = ... })
//	register_npc_script("innkeeper", { next_cycle = ..., abort_route = ... })
//
// A monster type whose definition names no registered script simply has no
// hooks; that is a checked state, not an error.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	monsterScripts map[string]*lua.LTable
	npcScripts     map[string]*lua.LTable
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory tree.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:             vm,
		log:            log,
		monsterScripts: make(map[string]*lua.LTable),
		npcScripts:     make(map[string]*lua.LTable),
	}

	vm.SetGlobal("register_monster_script", vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		e.monsterScripts[name] = L.CheckTable(2)
		return 0
	}))
	vm.SetGlobal("register_npc_script", vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		e.npcScripts[name] = L.CheckTable(2)
		return 0
	}))

	// Server-level scripts first (global hooks), then actor scripts.
	for _, sub := range []string{"server", "monster", "npc"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory. Missing directories are fine.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Close releases the VM.
func (e *Engine) Close() { e.vm.Close() }

// DoString executes a raw chunk. Used by tests and the GM console.
func (e *Engine) DoString(chunk string) error { return e.vm.DoString(chunk) }

// actorTable packs the actor fields scripts may read.
func (e *Engine) actorTable(a world.Actor) *lua.LTable {
	b := a.Base()
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(b.ID))
	t.RawSetString("kind", lua.LNumber(b.Kind))
	t.RawSetString("x", lua.LNumber(b.Pos.X))
	t.RawSetString("y", lua.LNumber(b.Pos.Y))
	t.RawSetString("z", lua.LNumber(b.Pos.Z))
	t.RawSetString("hp", lua.LNumber(b.HP))
	t.RawSetString("max_hp", lua.LNumber(b.MaxHP))
	t.RawSetString("alive", lua.LBool(b.Alive))
	t.RawSetString("on_route", lua.LBool(b.OnRoute))
	return t
}

func (e *Engine) candidateList(candidates []world.Actor) *lua.LTable {
	list := e.vm.NewTable()
	for _, c := range candidates {
		list.Append(e.actorTable(c))
	}
	return list
}

// call invokes a Lua function protected, returning its single result.
// Errors are logged and reported as nil so one bad script never interrupts
// the tick for other actors.
func (e *Engine) call(name string, fn lua.LValue, args ...lua.LValue) lua.LValue {
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
		return lua.LNil
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret
}

func findCandidate(candidates []world.Actor, id int) world.Actor {
	for _, c := range candidates {
		if c.Base().ID == id {
			return c
		}
	}
	return nil
}

// MonsterScript returns the behavior handle registered under a script name,
// or nil when the name is empty or unknown.
func (e *Engine) MonsterScript(name string) *MonsterScript {
	if name == "" {
		return nil
	}
	t, ok := e.monsterScripts[name]
	if !ok {
		return nil
	}
	return &MonsterScript{engine: e, name: name, table: t}
}

// NpcScript returns the NPC behavior handle registered under a script name,
// or nil when the name is empty or unknown.
func (e *Engine) NpcScript(name string) *NpcScript {
	if name == "" {
		return nil
	}
	t, ok := e.npcScripts[name]
	if !ok {
		return nil
	}
	return &NpcScript{engine: e, name: name, table: t}
}

// MonsterScript is the per-monster-type hook bundle.
type MonsterScript struct {
	engine *Engine
	name   string
	table  *lua.LTable
}

func (s *MonsterScript) hook(field string) lua.LValue {
	fn := s.table.RawGetString(field)
	if fn == lua.LNil {
		return nil
	}
	return fn
}

// SetTarget lets the script claim a combat target from the candidates.
// The Lua hook receives (monster, targets) and returns a candidate id or
// nil; a nil return declines, deferring to the built-in selection policy.
func (s *MonsterScript) SetTarget(m *world.Monster, candidates []world.Actor) (world.Actor, bool) {
	fn := s.hook("set_target")
	if fn == nil {
		return nil, false
	}
	ret := s.engine.call(s.name+".set_target", fn,
		s.engine.actorTable(m), s.engine.candidateList(candidates))
	id, ok := ret.(lua.LNumber)
	if !ok {
		return nil, false
	}
	target := findCandidate(candidates, int(id))
	if target == nil {
		return nil, false
	}
	return target, true
}

// EnemyNear fires when a target is in attack range. A true return
// short-circuits the rest of the monster's turn.
func (s *MonsterScript) EnemyNear(m *world.Monster, target world.Actor) bool {
	fn := s.hook("enemy_near")
	if fn == nil {
		return false
	}
	ret := s.engine.call(s.name+".enemy_near", fn,
		s.engine.actorTable(m), s.engine.actorTable(target))
	return ret == lua.LTrue
}

// EnemyOnSight fires when a target enters awareness range. A true return
// overrides the built-in step toward the target.
func (s *MonsterScript) EnemyOnSight(m *world.Monster, target world.Actor) bool {
	fn := s.hook("enemy_on_sight")
	if fn == nil {
		return false
	}
	ret := s.engine.call(s.name+".enemy_on_sight", fn,
		s.engine.actorTable(m), s.engine.actorTable(target))
	return ret == lua.LTrue
}

// AbortRoute fires when the monster's route cannot advance.
func (s *MonsterScript) AbortRoute(m *world.Monster) {
	if fn := s.hook("abort_route"); fn != nil {
		s.engine.call(s.name+".abort_route", fn, s.engine.actorTable(m))
	}
}

// OnSpawn fires after a freshly spawned monster is inserted into the world.
func (s *MonsterScript) OnSpawn(m *world.Monster) {
	if fn := s.hook("on_spawn"); fn != nil {
		s.engine.call(s.name+".on_spawn", fn, s.engine.actorTable(m))
	}
}

// NpcScript is the per-NPC hook bundle. Satisfies world.NPCScript.
type NpcScript struct {
	engine *Engine
	name   string
	table  *lua.LTable
}

func (s *NpcScript) hook(field string) lua.LValue {
	fn := s.table.RawGetString(field)
	if fn == lua.LNil {
		return nil
	}
	return fn
}

// NextCycle runs the NPC's scripted behavior for one eligible tick.
func (s *NpcScript) NextCycle(n *world.NPC) {
	if fn := s.hook("next_cycle"); fn != nil {
		s.engine.call(s.name+".next_cycle", fn, s.engine.actorTable(n))
	}
}

// AbortRoute fires when the NPC's route cannot advance.
func (s *NpcScript) AbortRoute(n *world.NPC) {
	if fn := s.hook("abort_route"); fn != nil {
		s.engine.call(s.name+".abort_route", fn, s.engine.actorTable(n))
	}
}

// SelectTarget is the global fallback target-selection hook, consulted when
// a monster's own script declines. Returns nil when the global hook is
// absent or declines too.
func (e *Engine) SelectTarget(m *world.Monster, candidates []world.Actor) world.Actor {
	fn := e.vm.GetGlobal("select_target")
	if fn == lua.LNil {
		return nil
	}
	ret := e.call("select_target", fn, e.actorTable(m), e.candidateList(candidates))
	id, ok := ret.(lua.LNumber)
	if !ok {
		return nil
	}
	return findCandidate(candidates, int(id))
}

// OnLogout runs the global logout hook for a player leaving the world.
func (e *Engine) OnLogout(p *world.Player) {
	fn := e.vm.GetGlobal("on_logout")
	if fn == lua.LNil {
		return
	}
	e.call("on_logout", fn, e.actorTable(p))
}

// ReduceMentalCapacity runs the scripted learn-point decay for one actor.
func (e *Engine) ReduceMentalCapacity(a world.Actor) {
	fn := e.vm.GetGlobal("reduce_mental_capacity")
	if fn == lua.LNil {
		// Built-in fallback: plain linear decay.
		b := a.Base()
		if b.MentalCapacity > 0 {
			b.MentalCapacity--
		}
		return
	}
	ret := e.call("reduce_mental_capacity", fn, e.actorTable(a))
	if n, ok := ret.(lua.LNumber); ok {
		a.Base().MentalCapacity = int(n)
	}
}

// ScheduledCycle advances the scripted scheduled-task table by one cycle.
func (e *Engine) ScheduledCycle() {
	fn := e.vm.GetGlobal("scheduled_cycle")
	if fn == lua.LNil {
		return
	}
	e.call("scheduled_cycle", fn)
}
