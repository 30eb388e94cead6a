package game

import (
	"github.com/illago/server/internal/world"
)

// checkNPCs runs the per-tick NPC pass. Lost NPCs are removed up front,
// dead NPCs are revived in place, and everything else gets its scripted
// cycle when a player is close enough to notice.
func (e *Engine) checkNPCs() {
	e.deleteLostNPCs()

	e.Npcs.ForEach(func(n *world.NPC) {
		if !n.Alive {
			// NPCs never die for good. Stand the body back up and let
			// nearby clients redraw it.
			n.HP = world.NPCHealthFloor
			n.Alive = true
			if e.deps.Notifier != nil {
				e.deps.Notifier.CharacterSpun(n)
			}
			return
		}

		n.IncreaseActionPoints(e.ap)
		n.Effects.CheckEffects(&n.Character)
		if !n.CanAct() {
			return
		}
		if !n.OnRoute && !e.isPlayerNearby(&n.Character) {
			return
		}
		if n.Script == nil {
			return
		}

		n.Script.NextCycle(n)
		if n.OnRoute {
			if n.Route == nil || !n.Route.MakeMove(&n.Character, e.deps.Terrain) {
				n.OnRoute = false
				n.Route = nil
				n.Script.AbortRoute(n)
			}
		}
	})
}

// deleteLostNPCs erases NPCs a script has retired since the last pass.
func (e *Engine) deleteLostNPCs() {
	var lost []*world.NPC
	e.Npcs.ForEach(func(n *world.NPC) {
		if n.Lost() {
			lost = append(lost, n)
		}
	})
	for _, n := range lost {
		e.Npcs.Erase(n.ID)
		if e.deps.Notifier != nil {
			e.deps.Notifier.CharacterRemoved(n.ID, n.Pos)
		}
	}
}
