package game

import (
	"go.uber.org/zap"

	"github.com/illago/server/internal/data"
	"github.com/illago/server/internal/world"
)

// checkMonsters runs the per-tick monster pass: the spawn cycle, point
// credits, effect expiry and one AI turn for each monster near a player.
// Dead monsters are erased after the traversal.
func (e *Engine) checkMonsters() {
	if e.spawnCycleDue() {
		e.runSpawnCycle()
	}

	// Monsters burn their credit slightly slower than players during burst
	// ticks, so a catch-up tick does not hand every monster a double turn.
	if e.ap > 1 {
		e.ap--
	}

	var dead []*world.Monster
	e.Monsters.ForEach(func(m *world.Monster) {
		if !m.Alive {
			dead = append(dead, m)
			return
		}
		m.IncreaseActionPoints(e.ap)
		m.IncreaseFightPoints(e.ap)
		m.Effects.CheckEffects(&m.Character)
		if !m.CanAct() {
			return
		}
		if !m.OnRoute && !e.isPlayerNearby(&m.Character) {
			return
		}
		e.monsterTurn(m)
	})
	for _, m := range dead {
		e.killMonster(m)
	}

	e.insertPendingMonsters()
}

func (e *Engine) spawnCycleDue() bool {
	now := e.now()
	if now.Sub(e.lastSpawnCheck) < e.cfg.SpawnInterval {
		return false
	}
	e.lastSpawnCheck = now
	return true
}

func (e *Engine) runSpawnCycle() {
	if !e.cfg.SpawnEnabled {
		e.log.Info("monster spawning is disabled")
		return
	}
	for _, sp := range e.spawns {
		created := sp.Spawn(e.createMonster)
		e.pendingMonsters = append(e.pendingMonsters, created...)
	}
}

// createMonster is the spawn factory. Unknown types are skipped so one bad
// row never stalls the whole spawn point.
func (e *Engine) createMonster(monsterType int, pos world.Position) *world.Monster {
	def := e.deps.Monsters.Get(monsterType)
	if def == nil {
		e.log.Error("spawn references unknown monster type",
			zap.Int("type", monsterType))
		return nil
	}
	hp := def.HP
	if hp <= 0 {
		hp = 1
	}
	return world.NewMonster(monsterType, pos, hp)
}

// insertPendingMonsters registers monsters created during the pass and
// fires their spawn hooks. Runs after the traversal so a fresh monster
// never acts on the tick that created it.
func (e *Engine) insertPendingMonsters() {
	for _, m := range e.pendingMonsters {
		e.Monsters.Insert(m)
		if e.deps.Notifier != nil {
			e.deps.Notifier.CharacterMoved(m)
		}
		if s := e.monsterScript(e.deps.Monsters.Get(m.Type)); s != nil {
			s.OnSpawn(m)
		}
	}
	e.pendingMonsters = e.pendingMonsters[:0]
}

func (e *Engine) monsterScript(def *data.MonsterDef) MonsterScript {
	if def == nil || def.Script == "" || e.deps.Hooks == nil {
		return nil
	}
	return e.deps.Hooks.MonsterScript(def.Script)
}

// weaponRange returns the reach of the monster's equipped tools, checking
// the right hand first and falling back to bare-hand range 1.
func (e *Engine) weaponRange(m *world.Monster) int {
	if e.deps.Weapons != nil {
		if w := e.deps.Weapons.Get(m.RightTool); w != nil && w.Range > 0 {
			return w.Range
		}
		if w := e.deps.Weapons.Get(m.LeftTool); w != nil && w.Range > 0 {
			return w.Range
		}
	}
	return 1
}

// targetsInRange gathers attackable actors around a position: players and
// other monsters, skipping monsters stacked on the exact same field.
func (e *Engine) targetsInRange(pos world.Position, radius int) []world.Actor {
	var out []world.Actor
	for _, p := range e.Players.FindAliveInRange(pos, radius) {
		out = append(out, p)
	}
	for _, m := range e.Monsters.FindAliveInRange(pos, radius) {
		if m.Pos == pos {
			continue
		}
		out = append(out, m)
	}
	return out
}

// chooseTarget lets the per-type script claim a target first, then the
// global selection hook, then the built-in nearest-candidate policy.
func (e *Engine) chooseTarget(m *world.Monster, script MonsterScript, candidates []world.Actor) world.Actor {
	if script != nil {
		if target, ok := script.SetTarget(m, candidates); ok {
			return target
		}
	}
	if e.deps.Hooks != nil {
		if target := e.deps.Hooks.SelectTarget(m, candidates); target != nil {
			return target
		}
	}
	return nearestCandidate(m.Pos, candidates)
}

func nearestCandidate(pos world.Position, candidates []world.Actor) world.Actor {
	var best world.Actor
	bestDist := 0
	for _, c := range candidates {
		d := world.Chebyshev(pos, c.Base().Pos)
		if best == nil || d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// attack launches an attack on the monster's remembered enemy. Without a
// combat resolver the swing still consumes the turn.
func (e *Engine) attack(m *world.Monster) bool {
	if e.deps.Combat == nil {
		return true
	}
	return e.deps.Combat.Attack(m)
}

// performStep moves one tile toward a destination.
func (e *Engine) performStep(c *world.Character, to world.Position) {
	if to == c.Pos {
		return
	}
	c.Move(world.TowardDirection(c.Pos, to), e.deps.Terrain)
}

// monsterTurn runs one AI turn. A routed monster only reports sightings to
// its script and advances its route; a free monster fights, chases, hunts
// a remembered position, or wanders inside its leash.
func (e *Engine) monsterTurn(m *world.Monster) {
	def := e.deps.Monsters.Get(m.Type)
	script := e.monsterScript(def)

	if m.OnRoute {
		e.routedMonsterTurn(m, def, script)
		return
	}

	// Reaching the last remembered target position without finding anyone
	// clears the memory.
	if m.LastTargetSeen && m.Pos == m.LastTargetPos {
		m.LastTargetSeen = false
	}

	attacked := false
	if near := e.targetsInRange(m.Pos, e.weaponRange(m)); len(near) > 0 {
		target := e.chooseTarget(m, script, near)
		if target != nil {
			m.RememberEnemy(target)
			if def == nil {
				e.log.Error("monster type has no definition",
					zap.Int("type", m.Type), zap.Int("id", m.ID))
			} else if script != nil && script.EnemyNear(m, target) {
				return // script consumed the turn
			}
			m.Turn(target.Base().Pos)
			if m.CanFight() {
				attacked = e.attack(m)
			} else {
				attacked = true
			}
		}
	}
	if attacked {
		return
	}

	canWander := true
	if wide := e.targetsInRange(m.Pos, e.cfg.MonsterViewRange); len(wide) > 0 {
		target := e.chooseTarget(m, script, wide)
		if target != nil {
			m.LastTargetSeen = true
			m.LastTargetPos = target.Base().Pos
			if def == nil {
				e.log.Error("monster type has no definition",
					zap.Int("type", m.Type), zap.Int("id", m.ID))
			} else if script != nil && script.EnemyOnSight(m, target) {
				return
			}
			canWander = false
			e.performStep(&m.Character, target.Base().Pos)
		}
	} else if m.LastTargetSeen {
		canWander = false
		e.performStep(&m.Character, m.LastTargetPos)
	}

	if canWander {
		e.wander(m, def)
	}
}

// wander is the idle turn: a probabilistic self-heal for types that
// support it, otherwise a random step clamped to the spawn leash with an
// extra AP penalty for the unhurried pace.
func (e *Engine) wander(m *world.Monster, def *data.MonsterDef) {
	if def != nil && def.CanSelfHeal && e.rng.Float64() < e.cfg.RandomMoveProbability {
		m.Heal()
		return
	}
	dir := world.Direction(e.rng.Intn(8))
	if sp := m.Spawn; sp != nil && sp.Leash > 0 {
		next := m.Pos.Moved(dir)
		if abs(next.X-sp.Pos.X) > sp.Leash {
			dir = dir.MirrorX()
		}
		if abs(next.Y-sp.Pos.Y) > sp.Leash {
			dir = dir.MirrorY()
		}
	}
	m.Move(dir, e.deps.Terrain)
	m.IncreaseActionPoints(-world.NoPlayerWalkCost)
}

// routedMonsterTurn keeps a routed monster marching. Scripts are still told
// about nearby and sighted enemies so they can decide to abandon the route,
// but the built-in fight and chase reactions stay out of the way.
func (e *Engine) routedMonsterTurn(m *world.Monster, def *data.MonsterDef, script MonsterScript) {
	if near := e.targetsInRange(m.Pos, e.weaponRange(m)); len(near) > 0 {
		if target := e.chooseTarget(m, script, near); target != nil {
			if def == nil {
				e.log.Error("monster type has no definition",
					zap.Int("type", m.Type), zap.Int("id", m.ID))
			} else if script != nil {
				script.EnemyNear(m, target)
			}
		}
	}
	if !m.OnRoute {
		return // the script reacted and took the monster off its route
	}
	if wide := e.targetsInRange(m.Pos, e.cfg.MonsterViewRange); len(wide) > 0 {
		if target := e.chooseTarget(m, script, wide); target != nil && script != nil {
			script.EnemyOnSight(m, target)
		}
	}
	if !m.OnRoute {
		return
	}
	if m.Route == nil || !m.Route.MakeMove(&m.Character, e.deps.Terrain) {
		m.OnRoute = false
		m.Route = nil
		if script != nil {
			script.AbortRoute(m)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
