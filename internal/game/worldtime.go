package game

import (
	"time"

	"github.com/illago/server/internal/config"
)

const realSecondsPerDay = 24 * 60 * 60

// WorldClock derives the in-game calendar from wall time. In-game days run
// TimeFactor times faster than real ones, counted from the world birth
// epoch. During daylight saving time one real hour is added so the in-game
// clock never jumps backwards with the wall clock.
type WorldClock struct {
	birth  int64
	factor int64
	now    func() time.Time
}

func NewWorldClock(cfg config.TimeConfig) *WorldClock {
	factor := int64(cfg.TimeFactor)
	if factor < 1 {
		factor = 1
	}
	return &WorldClock{
		birth:  cfg.WorldBirthEpoch,
		factor: factor,
		now:    time.Now,
	}
}

func (c *WorldClock) realSecondsPerWorldDay() int64 {
	return realSecondsPerDay / c.factor
}

// adjusted returns seconds since the world birth, with the DST hour folded
// in when it applies to t.
func (c *WorldClock) adjusted(t time.Time) int64 {
	u := t.Unix()
	if t.IsDST() {
		u += 3600
	}
	return u - c.birth
}

// Day returns the current in-game day number.
func (c *WorldClock) Day() int {
	return int(c.adjusted(c.now()) / c.realSecondsPerWorldDay())
}

// SecondsIntoDay returns how far the current in-game day has progressed,
// in real seconds.
func (c *WorldClock) SecondsIntoDay() int64 {
	return c.adjusted(c.now()) % c.realSecondsPerWorldDay()
}

// NextDayChange returns the wall-clock instant of the next in-game day
// boundary.
func (c *WorldClock) NextDayChange() time.Time {
	t := c.now()
	spd := c.realSecondsPerWorldDay()
	adj := c.adjusted(t)
	wait := spd - adj%spd
	return t.Add(time.Duration(wait) * time.Second)
}
