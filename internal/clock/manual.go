package clock

import (
	"sort"
	"sync"
	"time"
)

// Epoch is the instant a Manual clock starts at.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Manual is a Clock whose time only moves when Advance is called. Due
// callbacks run synchronously on the goroutine calling Advance, in deadline
// order, with Now() reporting each callback's own deadline.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers map[uint64]*manualTimer
	fired  int
}

type manualTimer struct {
	clock    *Manual
	id       uint64
	deadline time.Time
	f        func()
}

// NewManual creates a Manual clock positioned at Epoch.
func NewManual() *Manual {
	return &Manual{
		now:    Epoch,
		timers: make(map[uint64]*manualTimer),
	}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Elapsed returns how far the clock has advanced since Epoch.
func (m *Manual) Elapsed() time.Duration {
	return m.Now().Sub(Epoch)
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{
		clock:    m,
		id:       m.seq,
		deadline: m.now.Add(d),
		f:        f,
	}
	m.timers[t.id] = t
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)
	return true
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers scheduled by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		delete(m.timers, next.id)
		m.now = next.deadline
		m.fired++
		m.mu.Unlock()

		next.f()
	}
}

// AdvanceTo moves the clock to Epoch+offset. Offsets in the past are ignored.
func (m *Manual) AdvanceTo(offset time.Duration) {
	if delta := offset - m.Elapsed(); delta > 0 {
		m.Advance(delta)
	}
}

// Pending returns the number of scheduled, unfired, unstopped timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Fired returns how many callbacks have run so far.
func (m *Manual) Fired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fired
}

// Deadlines returns the offsets from Epoch of all pending timers, sorted.
func (m *Manual) Deadlines() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]time.Duration, 0, len(m.timers))
	for _, t := range m.timers {
		out = append(out, t.deadline.Sub(Epoch))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.deadline.After(target) {
			continue
		}
		if next == nil || t.deadline.Before(next.deadline) ||
			(t.deadline.Equal(next.deadline) && t.id < next.id) {
			next = t
		}
	}
	return next
}
