package carousel

import (
	"sync"
	"testing"
	"time"

	"github.com/conneroisu/vitrine/internal/clock"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 5 * time.Second

func fixture(n int) []Testimonial {
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	items := make([]Testimonial, n)
	for i := range items {
		items[i] = Testimonial{
			ID:          names[i],
			DisplayName: "Client " + names[i],
			QuoteText:   "Quote " + names[i],
		}
	}
	return items
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) Notify(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) all() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *eventLog) indexes() []int {
	var out []int
	for _, ev := range l.all() {
		if ev.Kind == KindIndexChanged {
			out = append(out, ev.State.Index)
		}
	}
	return out
}

func mount(t *testing.T, n int, opts ...Option) (*Engine, *clock.Manual, *eventLog) {
	t.Helper()
	clk := clock.NewManual()
	log := &eventLog{}
	e := New(append([]Option{WithClock(clk)}, opts...)...)
	e.Subscribe(log)
	e.Initialize(fixture(n), testInterval)
	t.Cleanup(e.Teardown)
	return e, clk, log
}

// assertTimerInvariant checks that exactly one timer exists while playing.
func assertTimerInvariant(t *testing.T, e *Engine, clk *clock.Manual) {
	t.Helper()
	s := e.State()
	want := 0
	if s.Length > 1 && !s.Paused && !e.TornDown() {
		want = 1
	}
	assert.Equal(t, want, clk.Pending(), "pending timers for state %+v", s)
	assert.Equal(t, want == 1, s.Playing)
	assert.Equal(t, want == 1, e.Scheduled())
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		startPaused bool
		wantIndex   int
		wantPlaying bool
	}{
		{"empty list is idle", 0, false, -1, false},
		{"single item never schedules", 1, false, 0, false},
		{"several items start playing", 4, false, 0, true},
		{"start paused", 4, true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, clk, log := mount(t, tt.n, WithStartPaused(tt.startPaused))

			s := e.State()
			assert.Equal(t, tt.wantIndex, s.Index)
			assert.Equal(t, tt.n, s.Length)
			assert.Equal(t, tt.wantPlaying, s.Playing)
			assert.Equal(t, tt.startPaused, s.Paused)
			assertTimerInvariant(t, e, clk)

			events := log.all()
			require.Len(t, events, 1)
			assert.Equal(t, KindReset, events[0].Kind)
			assert.Equal(t, CauseInit, events[0].Cause)
		})
	}
}

func TestAutomaticAdvanceOncePerInterval(t *testing.T) {
	e, clk, log := mount(t, 4)

	clk.Advance(testInterval - time.Millisecond)
	assert.Equal(t, 0, e.State().Index)

	clk.Advance(time.Millisecond)
	assert.Equal(t, 1, e.State().Index)

	clk.Advance(3 * testInterval)
	assert.Equal(t, 0, e.State().Index, "wraps around after the last item")
	assert.Equal(t, []int{1, 2, 3, 0}, log.indexes())

	for _, ev := range log.all()[1:] {
		assert.Equal(t, CauseTick, ev.Cause)
	}
	assertTimerInvariant(t, e, clk)
}

func TestManualNavigationRestartsInterval(t *testing.T) {
	// items = [A,B,C,D]; tick at 5s, previous() at 7s, next tick at 12s.
	e, clk, _ := mount(t, 4)

	clk.AdvanceTo(5 * time.Second)
	require.Equal(t, 1, e.State().Index)

	clk.AdvanceTo(7 * time.Second)
	e.Previous()
	require.Equal(t, 0, e.State().Index)
	assert.Equal(t, []time.Duration{12 * time.Second}, clk.Deadlines())

	clk.AdvanceTo(10 * time.Second)
	assert.Equal(t, 0, e.State().Index, "no tick at the old 10s deadline")

	clk.AdvanceTo(12 * time.Second)
	assert.Equal(t, 1, e.State().Index)
	assertTimerInvariant(t, e, clk)
}

func TestResumeGrantsFullInterval(t *testing.T) {
	// pause() at 1s, resume() at 9s, next tick at 14s.
	e, clk, _ := mount(t, 4)

	clk.AdvanceTo(1 * time.Second)
	e.Pause()
	assertTimerInvariant(t, e, clk)

	clk.AdvanceTo(9 * time.Second)
	assert.Equal(t, 0, e.State().Index)
	e.Resume()
	assert.Equal(t, []time.Duration{14 * time.Second}, clk.Deadlines())

	clk.AdvanceTo(13 * time.Second)
	assert.Equal(t, 0, e.State().Index)

	clk.AdvanceTo(14 * time.Second)
	assert.Equal(t, 1, e.State().Index)
}

func TestNextAndPreviousWrap(t *testing.T) {
	e, clk, log := mount(t, 3)

	e.Next()
	e.Next()
	e.Next()
	assert.Equal(t, 0, e.State().Index)

	e.Previous()
	assert.Equal(t, 2, e.State().Index)

	assert.Equal(t, []int{1, 2, 0, 2}, log.indexes())
	for _, ev := range log.all()[1:] {
		assert.Equal(t, CauseManual, ev.Cause)
	}
	assertTimerInvariant(t, e, clk)
}

func TestGoToNormalizesIndex(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{0, 0},
		{3, 3},
		{4, 0},
		{9, 1},
		{-1, 3},
		{-5, 3},
		{-8, 0},
	}

	for _, tt := range tests {
		e, clk, _ := mount(t, 4)
		e.GoTo(tt.input)
		assert.Equal(t, tt.want, e.State().Index, "GoTo(%d)", tt.input)
		assertTimerInvariant(t, e, clk)
	}
}

func TestGoToCurrentIndexStillRestartsTimer(t *testing.T) {
	e, clk, log := mount(t, 4)

	clk.AdvanceTo(4 * time.Second)
	e.GoTo(0)

	assert.Empty(t, log.indexes(), "no index change is announced")
	assert.Equal(t, []time.Duration{9 * time.Second}, clk.Deadlines())
	assertTimerInvariant(t, e, clk)
}

func TestPauseIsIdempotentAndKeepsIndex(t *testing.T) {
	e, clk, log := mount(t, 4)
	e.GoTo(2)

	e.Pause()
	e.Pause()
	e.Resume()
	e.Resume()
	e.Pause()

	assert.Equal(t, 2, e.State().Index)
	assert.True(t, e.State().Paused)
	assertTimerInvariant(t, e, clk)

	var pauses []bool
	for _, ev := range log.all() {
		if ev.Kind == KindPauseChanged {
			pauses = append(pauses, ev.State.Paused)
		}
	}
	assert.Equal(t, []bool{true, false, true}, pauses)

	clk.Advance(10 * testInterval)
	assert.Equal(t, 2, e.State().Index, "no ticks while paused")
}

func TestResumeWhilePlayingKeepsTimer(t *testing.T) {
	e, clk, _ := mount(t, 4)

	clk.AdvanceTo(3 * time.Second)
	e.Resume()

	assert.Equal(t, []time.Duration{5 * time.Second}, clk.Deadlines())
}

func TestManualNavigationWhilePaused(t *testing.T) {
	e, clk, _ := mount(t, 4)
	e.Pause()

	e.Next()
	e.GoTo(3)
	e.Previous()

	assert.Equal(t, 2, e.State().Index)
	assertTimerInvariant(t, e, clk)

	clk.Advance(3 * testInterval)
	assert.Equal(t, 2, e.State().Index)
}

func TestTogglePause(t *testing.T) {
	e, clk, _ := mount(t, 4)

	e.TogglePause()
	assert.True(t, e.State().Paused)
	assertTimerInvariant(t, e, clk)

	e.TogglePause()
	assert.False(t, e.State().Paused)
	assertTimerInvariant(t, e, clk)
}

func TestSingleItemNeverMovesOrLeaks(t *testing.T) {
	e, clk, log := mount(t, 1)

	e.Next()
	e.Previous()
	e.GoTo(7)
	e.Pause()
	e.Resume()
	clk.Advance(10 * testInterval)

	assert.Equal(t, 0, e.State().Index)
	assert.Empty(t, log.indexes())
	assert.Zero(t, clk.Pending())
	assert.Zero(t, clk.Fired())
}

func TestEmptyListAcceptsEveryOperation(t *testing.T) {
	e, clk, log := mount(t, 0)

	assert.NotPanics(t, func() {
		e.Next()
		e.Previous()
		e.GoTo(3)
		e.GoTo(-3)
		e.Pause()
		e.Resume()
		e.TogglePause()
		clk.Advance(10 * testInterval)
	})

	s := e.State()
	assert.Equal(t, -1, s.Index)
	assert.False(t, s.HasItem())
	assert.Zero(t, s.Ordinal())
	assert.Zero(t, clk.Pending())
	assert.Empty(t, log.indexes())

	_, ok := e.Current()
	assert.False(t, ok)
}

func TestTeardownCancelsAndIsRepeatable(t *testing.T) {
	rec := logging.NewRecorder()
	e, clk, log := mount(t, 4, WithLogger(rec))

	e.Teardown()
	e.Teardown()
	assert.Zero(t, clk.Pending())

	before := len(log.all())
	e.Next()
	e.GoTo(2)
	e.Resume()
	clk.Advance(3 * testInterval)

	assert.Equal(t, 0, e.State().Index)
	assert.Len(t, log.all(), before, "observers are detached on teardown")
	assert.Equal(t, 3, rec.Count(logging.LevelWarn))
	for _, entry := range rec.Entries() {
		assert.True(t, errors.HasCode(entry.Err, errors.ErrCodeCarouselTornDown))
	}
}

func TestStaleTimerCallbackIsDiscarded(t *testing.T) {
	// A real timer may already be running its callback when Stop is called.
	// Model that by capturing the callback and invoking it after cancellation.
	clk := &capturingClock{}
	e := Mount(fixture(4), testInterval, WithClock(clk))
	defer e.Teardown()

	require.Len(t, clk.callbacks, 1)
	stale := clk.callbacks[0]

	e.Pause()
	stale()
	assert.Equal(t, 0, e.State().Index)

	e.Resume()
	require.Len(t, clk.callbacks, 2)
	stale()
	assert.Equal(t, 0, e.State().Index)

	clk.callbacks[1]()
	assert.Equal(t, 1, e.State().Index)

	e.Teardown()
	clk.callbacks[2]()
	assert.Equal(t, 1, e.State().Index, "no mutation after teardown")
}

type capturingClock struct {
	callbacks []func()
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }

func (c *capturingClock) Now() time.Time { return clock.Epoch }

func (c *capturingClock) AfterFunc(_ time.Duration, f func()) clock.Timer {
	c.callbacks = append(c.callbacks, f)
	return noopTimer{}
}

func TestDoubleInitializeIsIgnored(t *testing.T) {
	rec := logging.NewRecorder()
	e, clk, _ := mount(t, 4, WithLogger(rec))
	e.Next()

	e.Initialize(fixture(2), time.Second)

	s := e.State()
	assert.Equal(t, 4, s.Length)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, testInterval, e.Interval())
	assertTimerInvariant(t, e, clk)

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.True(t, errors.HasCode(entries[0].Err, errors.ErrCodeCarouselInitTwice))
	assert.Equal(t, "carousel", entries[0].Component)
}

func TestOperationsBeforeInitialize(t *testing.T) {
	rec := logging.NewRecorder()
	clk := clock.NewManual()
	e := New(WithClock(clk), WithLogger(rec))

	e.Next()
	e.Pause()

	assert.Equal(t, -1, e.State().Index)
	assert.Zero(t, clk.Pending())
	assert.Equal(t, 2, rec.Count(logging.LevelWarn))
}

func TestStrictModePanics(t *testing.T) {
	e := Mount(fixture(3), testInterval, WithClock(clock.NewManual()), WithStrict(true))
	e.Teardown()

	assert.Panics(t, func() { e.Next() })
	assert.Panics(t, func() { e.Initialize(fixture(3), testInterval) })
}

func TestNonPositiveIntervalFallsBack(t *testing.T) {
	rec := logging.NewRecorder()
	clk := clock.NewManual()
	e := Mount(fixture(2), 0, WithClock(clk), WithLogger(rec))
	defer e.Teardown()

	assert.Equal(t, DefaultInterval, e.Interval())
	assert.Equal(t, []time.Duration{DefaultInterval}, clk.Deadlines())
	assert.Equal(t, 1, rec.Count(logging.LevelWarn))
}

func TestReplaceRemountsList(t *testing.T) {
	e, clk, log := mount(t, 4)
	clk.AdvanceTo(6 * time.Second)
	e.GoTo(3)

	e.Replace(fixture(2))

	s := e.State()
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, 2, s.Length)
	assert.Equal(t, []time.Duration{11 * time.Second}, clk.Deadlines())

	last := log.all()[len(log.all())-1]
	assert.Equal(t, KindReset, last.Kind)
	assert.Equal(t, CauseReload, last.Cause)

	e.Pause()
	e.Replace(fixture(5))
	assert.True(t, e.State().Paused, "attention flag survives a list swap")
	assertTimerInvariant(t, e, clk)

	e.Replace(nil)
	assert.Equal(t, -1, e.State().Index)
	assertTimerInvariant(t, e, clk)
}

func TestInitializeCopiesItems(t *testing.T) {
	items := fixture(3)
	e := Mount(items, testInterval, WithClock(clock.NewManual()))
	defer e.Teardown()

	items[0].DisplayName = "mutated"
	got := e.Items()
	got[1].DisplayName = "mutated too"

	current, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, "Client A", current.DisplayName)
	assert.Equal(t, "Client B", e.Items()[1].DisplayName)
}

func TestUnsubscribe(t *testing.T) {
	e, _, _ := mount(t, 3)
	log := &eventLog{}
	unsubscribe := e.Subscribe(log)

	e.Next()
	unsubscribe()
	unsubscribe()
	e.Next()

	assert.Equal(t, []int{1}, log.indexes())
}

func TestObserverMayReadState(t *testing.T) {
	e, _, _ := mount(t, 3)
	var seen []int
	e.Subscribe(ObserverFunc(func(ev Event) {
		seen = append(seen, e.State().Index)
	}))

	e.Next()
	e.Previous()

	assert.Equal(t, []int{1, 0}, seen)
}

func TestConcurrentTriggersKeepSingleTimer(t *testing.T) {
	e := Mount(fixture(5), time.Millisecond, WithClock(clock.System()))
	defer e.Teardown()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				switch (g + i) % 5 {
				case 0:
					e.Next()
				case 1:
					e.Previous()
				case 2:
					e.GoTo(i)
				case 3:
					e.Pause()
				default:
					e.Resume()
				}
			}
		}(g)
	}
	wg.Wait()

	s := e.State()
	assert.GreaterOrEqual(t, s.Index, 0)
	assert.Less(t, s.Index, 5)
	assert.Equal(t, !s.Paused, e.Scheduled())
}

func TestObserverReadsItemsDuringConcurrentTriggers(t *testing.T) {
	e := Mount(fixture(3), time.Millisecond, WithClock(clock.System()))
	defer e.Teardown()

	var mismatches int
	var mu sync.Mutex
	e.Subscribe(ObserverFunc(func(ev Event) {
		time.Sleep(100 * time.Microsecond)
		items := e.Items()
		current, ok := e.Current()
		_ = e.State()
		mu.Lock()
		if len(items) != ev.State.Length || (ok && current.ID == "") {
			mismatches++
		}
		mu.Unlock()
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					if g%2 == 0 {
						e.Next()
					} else {
						e.Previous()
					}
				}
			}(g)
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("navigation hung while an observer read the mounted list")
	}

	mu.Lock()
	assert.Zero(t, mismatches)
	mu.Unlock()

	e.Pause()
	e.Teardown()
	assert.True(t, e.TornDown())
}

func TestEventCarriesMountedItems(t *testing.T) {
	e, _, log := mount(t, 2)

	e.Replace(fixture(3))
	e.Next()

	events := log.all()
	require.Len(t, events, 3)
	assert.Len(t, events[0].Items, 2)
	assert.Len(t, events[1].Items, 3)
	assert.Equal(t, "Client B", events[2].Items[events[2].State.Index].DisplayName)

	current, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, "B", current.ID)
}

func TestKindAndCauseStrings(t *testing.T) {
	assert.Equal(t, "index", KindIndexChanged.String())
	assert.Equal(t, "pause", KindPauseChanged.String())
	assert.Equal(t, "reset", KindReset.String())
	assert.Equal(t, "tick", CauseTick.String())
	assert.Equal(t, "attention", CauseAttention.String())
	assert.Equal(t, "unknown", Cause(99).String())
}
