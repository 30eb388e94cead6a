package game

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/illago/server/internal/world"
)

// CommandHandler executes one chat command for a player. args is the raw
// remainder after the command word.
type CommandHandler func(e *Engine, p *world.Player, args string)

// CommandMap dispatches command words to handlers.
type CommandMap map[string]CommandHandler

// userCommandPattern matches "!word rest-of-line".
var userCommandPattern = regexp.MustCompile(`^!(\S+)\s*(.*)$`)

// ExecuteUserCommand parses a "!command args" line and dispatches it
// against the given map. Returns false when the line is not a command or
// the word is unknown, so the caller can fall through to plain chat.
func (e *Engine) ExecuteUserCommand(p *world.Player, input string, commands CommandMap) bool {
	match := userCommandPattern.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		return false
	}
	handler, ok := commands[strings.ToLower(match[1])]
	if !ok {
		return false
	}
	handler(e, p, match[2])
	return true
}

// RegisterPlayerCommand installs a command every player may use.
func (e *Engine) RegisterPlayerCommand(name string, h CommandHandler) {
	e.playerCommands[strings.ToLower(name)] = h
}

// RegisterGMCommand installs a staff-only command.
func (e *Engine) RegisterGMCommand(name string, h CommandHandler) {
	e.gmCommands[strings.ToLower(name)] = h
}

type immediateCommand struct {
	actorID int
	text    string
}

// EnqueueImmediateCommand queues a command from any goroutine for
// execution on the simulation goroutine. FIFO per queue.
func (e *Engine) EnqueueImmediateCommand(actorID int, text string) {
	e.mu.Lock()
	e.immediate = append(e.immediate, immediateCommand{actorID: actorID, text: text})
	e.mu.Unlock()
}

// DrainImmediateCommands executes the commands queued at the moment the
// drain starts, in order. The lock is dropped around each execution so
// producers are never blocked behind a slow handler; commands enqueued
// during the drain wait for the next one.
func (e *Engine) DrainImmediateCommands() {
	e.mu.Lock()
	n := len(e.immediate)
	for i := 0; i < n; i++ {
		cmd := e.immediate[0]
		e.immediate = e.immediate[1:]
		e.mu.Unlock()

		if p, ok := e.Players.Get(cmd.actorID); ok && p.Session != nil && p.Session.Online() {
			if !e.ExecuteUserCommand(p, cmd.text, e.playerCommands) &&
				!e.ExecuteUserCommand(p, cmd.text, e.gmCommands) {
				e.log.Debug("unknown immediate command",
					zap.Int("id", cmd.actorID), zap.String("command", cmd.text))
			}
		}

		e.mu.Lock()
	}
	e.mu.Unlock()
}

// PendingImmediateCommands reports the current queue depth.
func (e *Engine) PendingImmediateCommands() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.immediate)
}
