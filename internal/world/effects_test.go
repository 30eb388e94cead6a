package world

import "testing"

func TestEffectExpiry(t *testing.T) {
	c := &Character{Alive: true, HP: 5, MaxHP: 10}
	fired := false
	c.Effects.Add(&Effect{ID: 1, TicksLeft: 2, OnExpire: func(ch *Character) {
		fired = true
		ch.HP = ch.MaxHP
	}})

	c.Effects.CheckEffects(c)
	if fired {
		t.Fatalf("effect expired one tick early")
	}
	c.Effects.CheckEffects(c)
	if !fired {
		t.Fatalf("effect did not expire")
	}
	if c.HP != c.MaxHP {
		t.Errorf("expire callback did not run against the owner")
	}
	if c.Effects.Len() != 0 {
		t.Errorf("expired effect still listed")
	}
}

func TestEffectSameIDRefreshes(t *testing.T) {
	c := &Character{Alive: true}
	c.Effects.Add(&Effect{ID: 1, TicksLeft: 1})
	c.Effects.Add(&Effect{ID: 1, TicksLeft: 3})

	if c.Effects.Len() != 1 {
		t.Fatalf("same-ID effect stacked, Len = %d", c.Effects.Len())
	}
	c.Effects.CheckEffects(c)
	if !c.Effects.Active(1) {
		t.Errorf("refreshed effect expired on the old timer")
	}
}

func TestLongTimeAction(t *testing.T) {
	var a LongTimeAction
	done := false
	a.Start(2, func() { done = true })

	a.CheckAction()
	if done || !a.Running() {
		t.Fatalf("action finished early")
	}
	a.CheckAction()
	if !done || a.Running() {
		t.Fatalf("action did not finish")
	}
}

func TestLongTimeActionAbort(t *testing.T) {
	var a LongTimeAction
	done := false
	a.Start(1, func() { done = true })
	a.Abort()
	a.CheckAction()
	if done {
		t.Errorf("aborted action fired its callback")
	}
}

type wallTerrain struct{ blocked Position }

func (w wallTerrain) Walkable(p Position) bool { return p != w.blocked }

func TestRouteMakeMove(t *testing.T) {
	c := &Character{Alive: true, Pos: Position{0, 0, 0}, ActionPoints: MaxActionPoints}
	r := NewRoute([]Position{{2, 0, 0}})

	if !r.MakeMove(c, nil) {
		t.Fatalf("first step failed")
	}
	if c.Pos != (Position{1, 0, 0}) {
		t.Fatalf("pos after step = %v", c.Pos)
	}
	if !r.MakeMove(c, nil) {
		t.Fatalf("second step failed")
	}
	// waypoint reached, nothing left
	if r.MakeMove(c, nil) {
		t.Errorf("exhausted route still reported progress")
	}
}

func TestRouteBlocked(t *testing.T) {
	c := &Character{Alive: true, Pos: Position{0, 0, 0}, ActionPoints: MaxActionPoints}
	r := NewRoute([]Position{{2, 0, 0}})

	if r.MakeMove(c, wallTerrain{blocked: Position{1, 0, 0}}) {
		t.Errorf("blocked step reported progress")
	}
	if c.Pos != (Position{0, 0, 0}) {
		t.Errorf("blocked step moved the character to %v", c.Pos)
	}
}
