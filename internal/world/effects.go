package world

// Effect is a timed modifier on a character. TicksLeft counts tick-pass
// invocations, not wall time.
type Effect struct {
	ID        int
	TicksLeft int
	OnExpire  func(c *Character)
}

// EffectList holds a character's active timed effects.
type EffectList struct {
	effects []*Effect
}

// Add registers an effect. A second effect with the same ID refreshes the
// timer instead of stacking.
func (l *EffectList) Add(e *Effect) {
	for _, cur := range l.effects {
		if cur.ID == e.ID {
			cur.TicksLeft = e.TicksLeft
			cur.OnExpire = e.OnExpire
			return
		}
	}
	l.effects = append(l.effects, e)
}

// Active reports whether an effect with the given ID is running.
func (l *EffectList) Active(id int) bool {
	for _, e := range l.effects {
		if e.ID == id {
			return true
		}
	}
	return false
}

// CheckEffects advances all effects by one pass and expires those that ran
// out, firing their callbacks against the owning character.
func (l *EffectList) CheckEffects(c *Character) {
	kept := l.effects[:0]
	for _, e := range l.effects {
		e.TicksLeft--
		if e.TicksLeft > 0 {
			kept = append(kept, e)
			continue
		}
		if e.OnExpire != nil {
			e.OnExpire(c)
		}
	}
	l.effects = kept
}

// Len returns the number of active effects.
func (l *EffectList) Len() int { return len(l.effects) }

// LongTimeAction is a player's single in-progress action (casting, crafting,
// gathering). CheckAction advances it once per tick pass.
type LongTimeAction struct {
	TicksLeft int
	OnDone    func()
	running   bool
}

// Start arms the action.
func (a *LongTimeAction) Start(ticks int, done func()) {
	a.TicksLeft = ticks
	a.OnDone = done
	a.running = true
}

// Abort cancels without firing the completion callback.
func (a *LongTimeAction) Abort() { a.running = false }

// Running reports whether an action is in progress.
func (a *LongTimeAction) Running() bool { return a.running }

// CheckAction advances the action and fires the completion callback when it
// finishes.
func (a *LongTimeAction) CheckAction() {
	if !a.running {
		return
	}
	a.TicksLeft--
	if a.TicksLeft > 0 {
		return
	}
	a.running = false
	if a.OnDone != nil {
		a.OnDone()
	}
}
