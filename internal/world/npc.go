package world

// NPCScript is the scripted-behavior capability an NPC may own. Absence
// (a nil handle) is a first-class state: the NPC then idles entirely.
type NPCScript interface {
	NextCycle(n *NPC)
	AbortRoute(n *NPC)
}

// NPCHealthFloor is the hitpoint value dead NPCs are revived to. NPCs are
// never removed from the world by the simulation; death only resets them.
const NPCHealthFloor = 1

// NPC is a scripted world actor.
type NPC struct {
	Character
	Name   string
	Script NPCScript

	lost bool
}

// NewNPC builds a live NPC at a position.
func NewNPC(id int, name string, pos Position, script NPCScript) *NPC {
	return &NPC{
		Character: Character{
			ID:    id,
			Kind:  KindNPC,
			Pos:   pos,
			Alive: true,
			HP:    NPCHealthFloor,
			MaxHP: NPCHealthFloor,
		},
		Name:   name,
		Script: script,
	}
}

// MarkLost flags the NPC for despawn at the start of the next NPC pass.
// Scripts use this to retire an NPC deliberately; it is the only way an NPC
// leaves the world short of a full re-initialization.
func (n *NPC) MarkLost() { n.lost = true }

// Lost reports whether the NPC is flagged for despawn.
func (n *NPC) Lost() bool { return n.lost }
