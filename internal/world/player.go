package world

// Session is the narrow surface of the connection layer the simulation
// consumes. The transport decides liveness on its own; the simulation only
// reads the flag and issues a termination when the keepalive window expires.
type Session interface {
	Online() bool
	// Disconnect sends a session-termination command. The transport flips
	// Online to false once the connection is actually gone.
	Disconnect(reason string)
	Send(m Message)
}

// MessageType tags outbound broadcasts.
type MessageType int

const (
	MsgMove MessageType = iota
	MsgRemove
	MsgSpin
	MsgPlayerList
	MsgWorldTime
	MsgText
)

// Message is a transport-agnostic outbound notification.
type Message struct {
	Type    MessageType
	ActorID int
	Pos     Position
	Text    string
	Value   int
}

// Player is a connected character. Identity is its persisted character ID.
type Player struct {
	Character
	Name    string
	Session Session

	// Unix seconds of the last client keepalive and the last persisted save.
	LastKeepAlive int64
	LastSaveTime  int64

	// Synchronous commands queued by the session layer, drained once per
	// tick while the connection is healthy.
	QueuedCommands []string

	dialogsValid bool
}

// NewPlayer builds a live player at a position.
func NewPlayer(id int, name string, pos Position, sess Session) *Player {
	return &Player{
		Character: Character{
			ID:    id,
			Kind:  KindPlayer,
			Pos:   pos,
			Alive: true,
			HP:    1,
			MaxHP: 1,
		},
		Name:         name,
		Session:      sess,
		dialogsValid: true,
	}
}

// DrainCommands returns and clears the queued synchronous commands.
func (p *Player) DrainCommands() []string {
	cmds := p.QueuedCommands
	p.QueuedCommands = nil
	return cmds
}

// InvalidateDialogs marks every open client dialog stale.
func (p *Player) InvalidateDialogs() { p.dialogsValid = false }

// DialogsValid reports whether the client's open dialogs are still current.
func (p *Player) DialogsValid() bool { return p.dialogsValid }
