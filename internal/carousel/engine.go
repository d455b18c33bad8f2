// Package carousel implements the rotating testimonial engine: the state
// machine that decides which item is visible, whether automatic advancement
// is active, and how competing triggers are resolved.
//
// The engine owns a single timer slot. Every operation that changes
// scheduling cancels the current timer before creating a new one, and each
// timer carries a generation stamp so that a callback which lost a race with
// cancellation is discarded instead of advancing the index.
//
// Operations may be invoked from any goroutine; the engine serializes them.
// Observers are notified in mutation order.
package carousel

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/vitrine/internal/clock"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
)

// Engine is the sole owner of carousel state.
type Engine struct {
	mu     sync.Mutex
	emitMu sync.Mutex

	clock       clock.Clock
	logger      logging.Logger
	strict      bool
	startPaused bool

	items       []Testimonial
	interval    time.Duration
	index       int
	paused      bool
	initialized bool
	tornDown    bool

	timer clock.Timer
	gen   uint64

	observers  map[uint64]Observer
	observerID uint64

	snapshot atomic.Pointer[published]
}

// published is the state and list readers see without taking e.mu. The items
// slice is replaced on every mount and never written in place.
type published struct {
	state State
	items []Testimonial
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for automatic advancement.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the logger used to report misuse.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l.WithComponent("carousel")
		}
	}
}

// WithStrict makes lifecycle misuse panic instead of being logged and ignored.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithStartPaused mounts the carousel in the paused state.
func WithStartPaused(paused bool) Option {
	return func(e *Engine) {
		e.startPaused = paused
	}
}

// New creates an engine that is not yet initialized.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:     clock.System(),
		logger:    logging.NewNop(),
		index:     -1,
		observers: make(map[uint64]Observer),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.storeSnapshotLocked()
	return e
}

// Mount creates an engine and initializes it with items.
func Mount(items []Testimonial, interval time.Duration, opts ...Option) *Engine {
	e := New(opts...)
	e.Initialize(items, interval)
	return e
}

// Initialize mounts items. The list is copied; an empty list is a valid idle
// state. A non-positive interval falls back to DefaultInterval.
func (e *Engine) Initialize(items []Testimonial, interval time.Duration) {
	e.mu.Lock()
	if e.tornDown {
		e.mu.Unlock()
		e.misuse(errors.ErrCodeCarouselTornDown, "initialize after teardown")
		return
	}
	if e.initialized {
		e.mu.Unlock()
		e.misuse(errors.ErrCodeCarouselInitTwice, "initialize called twice without teardown")
		return
	}

	if interval <= 0 {
		e.logger.Warn(context.Background(), nil, "Non-positive interval, using default",
			"interval", interval.String(), "default", DefaultInterval.String())
		interval = DefaultInterval
	}

	e.interval = interval
	e.initialized = true
	e.paused = e.startPaused
	e.mountLocked(items)
	e.rescheduleLocked()
	e.emitLocked(Event{Kind: KindReset, Cause: CauseInit})
}

// Replace discards the current list and mounts items in its place, starting
// from the first item with a fresh interval. The paused flag is kept.
func (e *Engine) Replace(items []Testimonial) {
	e.mu.Lock()
	if code, msg, ok := e.checkLocked("replace"); !ok {
		e.mu.Unlock()
		e.misuse(code, msg)
		return
	}

	e.cancelLocked()
	e.mountLocked(items)
	e.rescheduleLocked()
	e.emitLocked(Event{Kind: KindReset, Cause: CauseReload})
}

// Next advances to the following item, wrapping at the end.
func (e *Engine) Next() {
	e.navigate("next", func(index, length int) int {
		return (index + 1) % length
	})
}

// Previous retreats to the preceding item, wrapping at the start.
func (e *Engine) Previous() {
	e.navigate("previous", func(index, length int) int {
		return (index - 1 + length) % length
	})
}

// GoTo shows the item at index. Out-of-range values are taken modulo the
// list length, so -1 selects the last item.
func (e *Engine) GoTo(index int) {
	e.navigate("goto", func(_, length int) int {
		return Normalize(index, length)
	})
}

// Pause stops automatic advancement without moving the index.
func (e *Engine) Pause() {
	e.setPaused("pause", func(bool) bool { return true })
}

// Resume restarts automatic advancement with a full interval. Calling it
// while already playing changes nothing.
func (e *Engine) Resume() {
	e.setPaused("resume", func(bool) bool { return false })
}

// TogglePause resumes when paused and pauses otherwise.
func (e *Engine) TogglePause() {
	e.setPaused("toggle", func(paused bool) bool { return !paused })
}

// Teardown cancels any scheduled advance and detaches observers. It is safe
// to call more than once.
func (e *Engine) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tornDown {
		return
	}
	e.cancelLocked()
	e.tornDown = true
	e.observers = make(map[uint64]Observer)
	e.storeSnapshotLocked()
}

// Subscribe registers o and returns a function that removes it.
func (e *Engine) Subscribe(o Observer) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tornDown || o == nil {
		return func() {}
	}

	e.observerID++
	id := e.observerID
	e.observers[id] = o

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.observers, id)
			e.mu.Unlock()
		})
	}
}

// State returns the current snapshot. State, Current and Items never take
// the engine lock, so they are the reads that are safe from Notify.
func (e *Engine) State() State {
	return e.snapshot.Load().state
}

// Current returns the visible testimonial.
func (e *Engine) Current() (Testimonial, bool) {
	p := e.snapshot.Load()
	if !p.state.HasItem() || p.state.Index >= len(p.items) {
		return Testimonial{}, false
	}
	return p.items[p.state.Index], true
}

// Items returns a copy of the mounted list.
func (e *Engine) Items() []Testimonial {
	p := e.snapshot.Load()
	out := make([]Testimonial, len(p.items))
	copy(out, p.items)
	return out
}

// Interval returns the automatic-advance cadence.
func (e *Engine) Interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

// Scheduled reports whether a timer is currently held.
func (e *Engine) Scheduled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer != nil
}

// TornDown reports whether Teardown has been called.
func (e *Engine) TornDown() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tornDown
}

// Normalize maps any integer onto [0, length) with a non-negative modulo.
// It returns -1 when length is zero.
func Normalize(index, length int) int {
	if length <= 0 {
		return -1
	}
	m := index % length
	if m < 0 {
		m += length
	}
	return m
}

func (e *Engine) navigate(op string, step func(index, length int) int) {
	e.mu.Lock()
	if code, msg, ok := e.checkLocked(op); !ok {
		e.mu.Unlock()
		e.misuse(code, msg)
		return
	}

	changed := false
	if n := len(e.items); n > 0 {
		if next := step(e.index, n); next != e.index {
			e.index = next
			changed = true
		}
	}
	e.rescheduleLocked()

	if changed {
		e.emitLocked(Event{Kind: KindIndexChanged, Cause: CauseManual})
		return
	}
	e.storeSnapshotLocked()
	e.mu.Unlock()
}

func (e *Engine) setPaused(op string, next func(paused bool) bool) {
	e.mu.Lock()
	if code, msg, ok := e.checkLocked(op); !ok {
		e.mu.Unlock()
		e.misuse(code, msg)
		return
	}
	paused := next(e.paused)
	if e.paused == paused {
		e.mu.Unlock()
		return
	}

	e.paused = paused
	e.rescheduleLocked()
	e.emitLocked(Event{Kind: KindPauseChanged, Cause: CauseAttention})
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.tornDown {
		e.mu.Unlock()
		return
	}

	e.timer = nil
	changed := false
	if n := len(e.items); n > 1 {
		e.index = (e.index + 1) % n
		changed = true
	}
	e.rescheduleLocked()

	if changed {
		e.emitLocked(Event{Kind: KindIndexChanged, Cause: CauseTick})
		return
	}
	e.storeSnapshotLocked()
	e.mu.Unlock()
}

func (e *Engine) mountLocked(items []Testimonial) {
	e.items = make([]Testimonial, len(items))
	copy(e.items, items)
	if len(e.items) > 0 {
		e.index = 0
	} else {
		e.index = -1
	}
}

func (e *Engine) playingLocked() bool {
	return e.initialized && !e.tornDown && !e.paused && len(e.items) > 1
}

// rescheduleLocked leaves exactly one fresh timer when playing and none
// otherwise.
func (e *Engine) rescheduleLocked() {
	e.cancelLocked()
	if !e.playingLocked() {
		return
	}
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.interval, func() {
		e.tick(gen)
	})
}

func (e *Engine) cancelLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

func (e *Engine) checkLocked(op string) (code, msg string, ok bool) {
	if e.tornDown {
		return errors.ErrCodeCarouselTornDown, op + " after teardown", false
	}
	if !e.initialized {
		return errors.ErrCodeCarouselNotReady, op + " before initialize", false
	}
	return "", "", true
}

// misuse reports a lifecycle violation. It must be called without e.mu held.
func (e *Engine) misuse(code, msg string) {
	err := errors.NewLifecycleError(code, msg).WithComponent("carousel")
	if e.strict {
		panic(err)
	}
	e.logger.Warn(context.Background(), err, "Ignoring carousel operation")
}

func (e *Engine) storeSnapshotLocked() {
	s := State{
		Index:   e.index,
		Paused:  e.paused,
		Length:  len(e.items),
		Playing: e.timer != nil,
	}
	e.snapshot.Store(&published{state: s, items: e.items})
}

// emitLocked publishes ev and releases e.mu. Delivery holds emitMu, which is
// acquired before e.mu is released so that events leave in mutation order.
func (e *Engine) emitLocked(ev Event) {
	e.storeSnapshotLocked()
	p := e.snapshot.Load()
	ev.State = p.state
	ev.Items = p.items

	ids := make([]uint64, 0, len(e.observers))
	for id := range e.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	targets := make([]Observer, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, e.observers[id])
	}

	e.emitMu.Lock()
	e.mu.Unlock()
	defer e.emitMu.Unlock()

	for _, o := range targets {
		o.Notify(ev)
	}
}
