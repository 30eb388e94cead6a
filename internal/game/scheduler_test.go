package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestScheduler() (*Scheduler, *fakeClock) {
	s := NewScheduler(zap.NewNop())
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s.now = clk.now
	return s, clk
}

func TestSchedulerRecurringTask(t *testing.T) {
	s, clk := newTestScheduler()

	fired := 0
	s.AddRecurringTask("count", 100*time.Millisecond, func() { fired++ })

	s.Run()
	assert.Zero(t, fired, "task must not fire before its first deadline")

	clk.advance(100 * time.Millisecond)
	s.Run()
	assert.Equal(t, 1, fired)

	s.Run()
	assert.Equal(t, 1, fired, "task fires once per deadline")

	clk.advance(100 * time.Millisecond)
	s.Run()
	assert.Equal(t, 2, fired)
}

func TestSchedulerSkipsBacklog(t *testing.T) {
	s, clk := newTestScheduler()

	fired := 0
	s.AddRecurringTask("count", 100*time.Millisecond, func() { fired++ })

	clk.advance(time.Second) // ten deadlines missed
	s.Run()
	assert.Equal(t, 1, fired, "a stalled task fires once, not once per missed deadline")

	clk.advance(100 * time.Millisecond)
	s.Run()
	assert.Equal(t, 2, fired)
}

func TestSchedulerAbsoluteTask(t *testing.T) {
	s, clk := newTestScheduler()

	fired := 0
	s.AddAbsoluteTask("boundary", clk.t.Add(300*time.Millisecond), time.Second, func() { fired++ })

	clk.advance(200 * time.Millisecond)
	s.Run()
	assert.Zero(t, fired)

	clk.advance(100 * time.Millisecond)
	s.Run()
	assert.Equal(t, 1, fired)

	clk.advance(time.Second)
	s.Run()
	assert.Equal(t, 2, fired)
}

func TestInitSchedulerRegistersCoreTasks(t *testing.T) {
	e, _ := newTestEngine(nil, Deps{})
	s, _ := newTestScheduler()

	e.InitScheduler(s, nil, nil)
	assert.Len(t, s.tasks, 4)

	names := map[string]bool{}
	for _, task := range s.tasks {
		names[task.name] = true
	}
	assert.True(t, names["turntheworld"])
	assert.True(t, names["reduce_mental_capacity"])
	assert.True(t, names["scheduled_scripts"])
	assert.True(t, names["world_day_change"])
}
