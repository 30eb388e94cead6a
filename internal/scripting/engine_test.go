package scripting

import (
	"os"
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/illago/server/internal/world"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestLoadsScriptsFromDirectoryTree(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "monster"), 0o755); err != nil {
		t.Fatal(err)
	}
	script := `register_monster_script("rat", { })`
	if err := os.WriteFile(filepath.Join(dir, "monster", "rat.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	if e.MonsterScript("rat") == nil {
		t.Errorf("script loaded from file was not registered")
	}
}

func TestMonsterScriptLookup(t *testing.T) {
	e := newTestEngine(t)
	if err := e.DoString(`register_monster_script("wolf", { })`); err != nil {
		t.Fatal(err)
	}

	if e.MonsterScript("wolf") == nil {
		t.Errorf("registered script not found")
	}
	if e.MonsterScript("") != nil {
		t.Errorf("empty name must resolve to no script")
	}
	if e.MonsterScript("bear") != nil {
		t.Errorf("unknown name must resolve to no script")
	}
}

func TestSetTargetClaimsCandidate(t *testing.T) {
	e := newTestEngine(t)
	err := e.DoString(`
		register_monster_script("wolf", {
			set_target = function(monster, candidates)
				return candidates[2].id
			end,
		})`)
	if err != nil {
		t.Fatal(err)
	}

	m := world.NewMonster(1, world.Position{X: 0, Y: 0}, 60)
	p1 := world.NewPlayer(10, "a", world.Position{X: 1, Y: 0}, nil)
	p2 := world.NewPlayer(11, "b", world.Position{X: 0, Y: 1}, nil)

	target, ok := e.MonsterScript("wolf").SetTarget(m, []world.Actor{p1, p2})
	if !ok {
		t.Fatalf("script should have claimed a target")
	}
	if target != p2 {
		t.Errorf("claimed wrong candidate: %v", target.Base().ID)
	}
}

func TestSetTargetDeclines(t *testing.T) {
	e := newTestEngine(t)
	err := e.DoString(`
		register_monster_script("wolf", {
			set_target = function(monster, candidates)
				return nil
			end,
		})`)
	if err != nil {
		t.Fatal(err)
	}

	m := world.NewMonster(1, world.Position{}, 60)
	p := world.NewPlayer(10, "a", world.Position{X: 1}, nil)

	if _, ok := e.MonsterScript("wolf").SetTarget(m, []world.Actor{p}); ok {
		t.Errorf("nil return must decline the claim")
	}
}

func TestSetTargetMissingHookDeclines(t *testing.T) {
	e := newTestEngine(t)
	if err := e.DoString(`register_monster_script("wolf", { })`); err != nil {
		t.Fatal(err)
	}
	m := world.NewMonster(1, world.Position{}, 60)
	p := world.NewPlayer(10, "a", world.Position{X: 1}, nil)
	if _, ok := e.MonsterScript("wolf").SetTarget(m, []world.Actor{p}); ok {
		t.Errorf("missing hook must decline")
	}
}

func TestEnemyNearShortCircuit(t *testing.T) {
	e := newTestEngine(t)
	err := e.DoString(`
		register_monster_script("coward", {
			enemy_near = function(monster, target)
				return target.hp > monster.hp
			end,
		})`)
	if err != nil {
		t.Fatal(err)
	}
	s := e.MonsterScript("coward")

	m := world.NewMonster(1, world.Position{}, 10)
	strong := world.NewPlayer(10, "a", world.Position{X: 1}, nil)
	strong.HP = 100

	if !s.EnemyNear(m, strong) {
		t.Errorf("hook returning true must short-circuit")
	}
	weak := world.NewPlayer(11, "b", world.Position{X: 1}, nil)
	weak.HP = 1
	if s.EnemyNear(m, weak) {
		t.Errorf("hook returning false must not short-circuit")
	}
}

func TestScriptErrorReportsAsDecline(t *testing.T) {
	e := newTestEngine(t)
	err := e.DoString(`
		register_monster_script("broken", {
			set_target = function(monster, candidates)
				error("boom")
			end,
		})`)
	if err != nil {
		t.Fatal(err)
	}

	m := world.NewMonster(1, world.Position{}, 60)
	p := world.NewPlayer(10, "a", world.Position{X: 1}, nil)
	if _, ok := e.MonsterScript("broken").SetTarget(m, []world.Actor{p}); ok {
		t.Errorf("a failing hook must decline, not crash the turn")
	}
}

func TestGlobalSelectTarget(t *testing.T) {
	e := newTestEngine(t)
	err := e.DoString(`
		function select_target(monster, candidates)
			for _, c in ipairs(candidates) do
				if c.kind == 0 then return c.id end
			end
			return nil
		end`)
	if err != nil {
		t.Fatal(err)
	}

	m := world.NewMonster(1, world.Position{}, 60)
	other := world.NewMonster(2, world.Position{X: 1}, 60)
	p := world.NewPlayer(10, "a", world.Position{X: 2}, nil)

	target := e.SelectTarget(m, []world.Actor{other, p})
	if target != p {
		t.Errorf("global hook should have picked the player")
	}
}

func TestNpcScriptCycle(t *testing.T) {
	e := newTestEngine(t)
	err := e.DoString(`
		cycles = 0
		register_npc_script("innkeeper", {
			next_cycle = function(npc) cycles = cycles + 1 end,
		})`)
	if err != nil {
		t.Fatal(err)
	}

	s := e.NpcScript("innkeeper")
	if s == nil {
		t.Fatalf("npc script not registered")
	}
	n := world.NewNPC(500, "keeper", world.Position{}, nil)
	s.NextCycle(n)
	s.NextCycle(n)

	if got := e.vm.GetGlobal("cycles"); got != lua.LNumber(2) {
		t.Errorf("cycles = %v, want 2", got)
	}
}

func TestReduceMentalCapacityFallback(t *testing.T) {
	e := newTestEngine(t)
	p := world.NewPlayer(10, "a", world.Position{}, nil)
	p.MentalCapacity = 5

	e.ReduceMentalCapacity(p)
	if p.MentalCapacity != 4 {
		t.Errorf("builtin decay: MentalCapacity = %d, want 4", p.MentalCapacity)
	}

	if err := e.DoString(`function reduce_mental_capacity(actor) return 1 end`); err != nil {
		t.Fatal(err)
	}
	e.ReduceMentalCapacity(p)
	if p.MentalCapacity != 1 {
		t.Errorf("scripted decay: MentalCapacity = %d, want 1", p.MentalCapacity)
	}
}
