package utilities

import (
	"sync"
	"time"

	"github.com/antonio-alexander/go-blog-crud/internal/data"
)

// Timers accumulates elapsed time per group; only timers that are still
// running are held individually, stopped timers are folded into a total
type Timers interface {
	Start(group data.TimerGroup) (id uint64)
	Stop(group data.TimerGroup, id uint64) (elapsed time.Duration)
	ReadAll() *data.Timers
	Clear()
}

type timerGroup struct {
	running map[uint64]time.Time
	total   time.Duration
	stopped int64
}

type timers struct {
	sync.Mutex
	nextId uint64
	groups map[data.TimerGroup]*timerGroup
}

func NewTimers() Timers {
	return &timers{groups: make(map[data.TimerGroup]*timerGroup)}
}

func (t *timers) Clear() {
	t.Lock()
	defer t.Unlock()

	//KIM: ids aren't reset so a timer started before the clear
	// can't stop one started after it
	clear(t.groups)
}

func (t *timers) Start(group data.TimerGroup) uint64 {
	t.Lock()
	defer t.Unlock()

	g, ok := t.groups[group]
	if !ok {
		g = &timerGroup{running: make(map[uint64]time.Time)}
		t.groups[group] = g
	}
	t.nextId++
	g.running[t.nextId] = time.Now()
	return t.nextId
}

// Stop returns the elapsed time, or -1 if the timer isn't running
// (e.g. it was cleared or already stopped)
func (t *timers) Stop(group data.TimerGroup, id uint64) time.Duration {
	t.Lock()
	defer t.Unlock()

	g, ok := t.groups[group]
	if !ok {
		return -1
	}
	started, ok := g.running[id]
	if !ok {
		return -1
	}
	delete(g.running, id)
	elapsed := time.Since(started)
	g.total += elapsed
	g.stopped++
	return elapsed
}

// ReadAll only accounts for stopped timers
func (t *timers) ReadAll() *data.Timers {
	t.Lock()
	defer t.Unlock()

	totals, averages := make(map[string]int64), make(map[string]int64)
	for group, g := range t.groups {
		totals[string(group)] = g.total.Nanoseconds()
		if g.stopped > 0 {
			averages[string(group)] = g.total.Nanoseconds() / g.stopped
		}
	}
	return &data.Timers{
		Totals:   totals,
		Averages: averages,
	}
}
