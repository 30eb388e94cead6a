package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/illago/server/internal/world"
)

// Recurring task cadences.
const (
	gameLoopInterval         = 50 * time.Millisecond
	reduceCapacityInterval   = 10 * time.Second
	monitoringCheckInterval  = 250 * time.Millisecond
	scheduledScriptsInterval = 1 * time.Second
	agingInterval            = 3 * time.Minute
)

type scheduledTask struct {
	name     string
	interval time.Duration
	next     time.Time
	fn       func()
}

// Scheduler runs named recurring tasks on the simulation goroutine. Run is
// called by the outer driver loop; a task whose deadline has passed fires
// once and is rearmed one interval from its previous deadline, so a slow
// driver pass does not skew the cadence.
type Scheduler struct {
	log   *zap.Logger
	now   func() time.Time
	tasks []*scheduledTask
}

func NewScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{log: log, now: time.Now}
}

// AddRecurringTask registers a task firing every interval, starting one
// interval from now.
func (s *Scheduler) AddRecurringTask(name string, interval time.Duration, fn func()) {
	s.tasks = append(s.tasks, &scheduledTask{
		name:     name,
		interval: interval,
		next:     s.now().Add(interval),
		fn:       fn,
	})
	s.log.Debug("scheduled recurring task",
		zap.String("task", name), zap.Duration("interval", interval))
}

// AddAbsoluteTask registers a task whose first deadline is a fixed instant,
// repeating every interval afterwards. Used for calendar-aligned work.
func (s *Scheduler) AddAbsoluteTask(name string, first time.Time, interval time.Duration, fn func()) {
	s.tasks = append(s.tasks, &scheduledTask{
		name:     name,
		interval: interval,
		next:     first,
		fn:       fn,
	})
	s.log.Debug("scheduled absolute task",
		zap.String("task", name), zap.Time("first", first))
}

// Run fires every task whose deadline has passed. A task that fell more
// than one interval behind fires once and skips the backlog.
func (s *Scheduler) Run() {
	now := s.now()
	for _, t := range s.tasks {
		if now.Before(t.next) {
			continue
		}
		t.fn()
		t.next = t.next.Add(t.interval)
		if !now.Before(t.next) {
			t.next = now.Add(t.interval)
		}
	}
}

// InitScheduler registers the engine's standing tasks: the tick itself,
// mental capacity decay, scripted cycles, the in-game day watcher and the
// optional monitoring and aging hooks.
func (e *Engine) InitScheduler(s *Scheduler, mon Monitoring, ager Ager) {
	s.AddRecurringTask("turntheworld", gameLoopInterval, e.Tick)

	s.AddRecurringTask("reduce_mental_capacity", reduceCapacityInterval, func() {
		if e.deps.Hooks == nil {
			return
		}
		e.Players.ForEach(func(p *world.Player) {
			e.deps.Hooks.ReduceMentalCapacity(p)
		})
		e.Monsters.ForEach(func(m *world.Monster) {
			e.deps.Hooks.ReduceMentalCapacity(m)
		})
		e.Npcs.ForEach(func(n *world.NPC) {
			e.deps.Hooks.ReduceMentalCapacity(n)
		})
	})

	s.AddRecurringTask("scheduled_scripts", scheduledScriptsInterval, func() {
		if e.deps.Hooks != nil {
			e.deps.Hooks.ScheduledCycle()
		}
	})

	s.AddAbsoluteTask("world_day_change", e.Clock.NextDayChange(),
		time.Duration(e.Clock.realSecondsPerWorldDay())*time.Second, func() {
			day := e.Clock.Day()
			if day == e.lastWorldDay {
				return
			}
			e.lastWorldDay = day
			e.log.Info("world day changed", zap.Int("day", day))
			if e.deps.Notifier != nil {
				e.deps.Notifier.WorldDayChanged(day)
			}
		})

	if mon != nil {
		s.AddRecurringTask("monitoring_clients", monitoringCheckInterval, mon.CheckClients)
	}
	if ager != nil {
		s.AddRecurringTask("age_inventory", agingInterval, ager.AgeInventory)
		s.AddRecurringTask("age_maps", agingInterval, ager.AgeMaps)
	}
}
