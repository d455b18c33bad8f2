package adapters

import (
	"fmt"
	"testing"
	"time"

	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/clock"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	calls []string
}

func (r *recordingTarget) Next()        { r.calls = append(r.calls, "next") }
func (r *recordingTarget) Previous()    { r.calls = append(r.calls, "previous") }
func (r *recordingTarget) GoTo(i int)   { r.calls = append(r.calls, fmt.Sprintf("goto(%d)", i)) }
func (r *recordingTarget) Pause()       { r.calls = append(r.calls, "pause") }
func (r *recordingTarget) Resume()      { r.calls = append(r.calls, "resume") }
func (r *recordingTarget) TogglePause() { r.calls = append(r.calls, "toggle") }

func TestRightToLeftTable(t *testing.T) {
	tests := []struct {
		stimulus Stimulus
		want     string
	}{
		{Stimulus{Kind: HoverEnter}, "pause"},
		{Stimulus{Kind: HoverLeave}, "resume"},
		{Stimulus{Kind: PointLeft}, "next"},
		{Stimulus{Kind: KeyLeft}, "next"},
		{Stimulus{Kind: PointRight}, "previous"},
		{Stimulus{Kind: KeyRight}, "previous"},
		{Dot(2), "goto(2)"},
		{Stimulus{Kind: TogglePause}, "toggle"},
	}

	for _, tt := range tests {
		t.Run(tt.stimulus.String(), func(t *testing.T) {
			target := &recordingTarget{}
			a := New(target, RTL)

			require.NoError(t, a.Dispatch(tt.stimulus))
			assert.Equal(t, []string{tt.want}, target.calls)
		})
	}
}

func TestLeftToRightMirrorsArrowsOnly(t *testing.T) {
	rtl := Table(RTL)
	ltr := Table(LTR)

	for _, k := range Kinds() {
		switch k {
		case PointLeft, KeyLeft:
			assert.Equal(t, ActionNext, rtl[k])
			assert.Equal(t, ActionPrevious, ltr[k])
		case PointRight, KeyRight:
			assert.Equal(t, ActionPrevious, rtl[k])
			assert.Equal(t, ActionNext, ltr[k])
		default:
			assert.Equal(t, rtl[k], ltr[k], "kind %s", k)
		}
	}
}

func TestTableIsACopy(t *testing.T) {
	table := Table(RTL)
	table[PointLeft] = ActionPrevious

	action, ok := Lookup(RTL, PointLeft)
	require.True(t, ok)
	assert.Equal(t, ActionNext, action)
}

func TestEveryKindIsMapped(t *testing.T) {
	for _, dir := range []Direction{RTL, LTR} {
		assert.Len(t, Table(dir), len(Kinds()))
	}
}

func TestAutoDirectionAdapterDefaultsToRTL(t *testing.T) {
	target := &recordingTarget{}
	a := New(target, Auto)

	assert.Equal(t, RTL, a.Direction())
	require.NoError(t, a.Dispatch(Stimulus{Kind: KeyLeft}))
	assert.Equal(t, []string{"next"}, target.calls)
}

func TestCloseDropsStimuli(t *testing.T) {
	target := &recordingTarget{}
	a := New(target, RTL)

	a.Close()
	a.Close()
	err := a.Dispatch(Stimulus{Kind: PointLeft})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAdapterClosed))
	assert.True(t, errors.IsRecoverable(err))
	assert.True(t, a.Closed())
	assert.Empty(t, target.calls)
}

func TestUnknownKindIsRejected(t *testing.T) {
	a := New(&recordingTarget{}, RTL)
	err := a.Dispatch(Stimulus{Kind: Kind(42)})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownStimulus))
}

func TestParseStimulus(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		want    Stimulus
		wantErr bool
	}{
		{"hover-enter", 0, Stimulus{Kind: HoverEnter}, false},
		{"hover-leave", 0, Stimulus{Kind: HoverLeave}, false},
		{"point-left", 0, Stimulus{Kind: PointLeft}, false},
		{"point-right", 0, Stimulus{Kind: PointRight}, false},
		{"key-left", 0, Stimulus{Kind: KeyLeft}, false},
		{"key-right", 0, Stimulus{Kind: KeyRight}, false},
		{"toggle-pause", 3, Stimulus{Kind: TogglePause}, false},
		{"indicator", 3, Dot(3), false},
		{"ArrowLeft", 0, Stimulus{Kind: KeyLeft}, false},
		{"ArrowRight", 0, Stimulus{Kind: KeyRight}, false},
		{"left", 0, Stimulus{Kind: KeyLeft}, false},
		{" RIGHT ", 0, Stimulus{Kind: KeyRight}, false},
		{"swipe", 0, Stimulus{}, true},
		{"", 0, Stimulus{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStimulus(tt.name, tt.index)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownStimulus))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWireNamesRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"", RTL, false},
		{"rtl", RTL, false},
		{"LTR", LTR, false},
		{" auto ", Auto, false},
		{"ttb", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		if tt.wantErr {
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, RTL, Detect("הצלם היה מקצועי ואדיב"))
	assert.Equal(t, LTR, Detect("The photographer was great"))
	assert.Equal(t, RTL, Detect("רחל כהן צילומי חתונה", "Canon EOS"), "hebrew dominates")
	assert.Equal(t, RTL, Detect("12345", "!!"), "neutral text keeps the default")
	assert.Equal(t, RTL, Detect())
}

func TestResolve(t *testing.T) {
	assert.Equal(t, RTL, Resolve(RTL, "English only"))
	assert.Equal(t, LTR, Resolve(LTR, "עברית"))
	assert.Equal(t, LTR, Resolve(Auto, "English only"))
	assert.Equal(t, RTL, Resolve(Auto, "עברית"))
}

// TestAdapterDrivesEngine wires the RTL adapter to a real engine: the
// left-pointing control must move forward through the list.
func TestAdapterDrivesEngine(t *testing.T) {
	items := []carousel.Testimonial{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	clk := clock.NewManual()
	engine := carousel.Mount(items, 5*time.Second, carousel.WithClock(clk))
	defer engine.Teardown()

	a := New(engine, RTL)
	defer a.Close()

	require.NoError(t, a.Dispatch(Stimulus{Kind: PointLeft}))
	assert.Equal(t, 1, engine.State().Index)

	require.NoError(t, a.Dispatch(Stimulus{Kind: KeyRight}))
	require.NoError(t, a.Dispatch(Stimulus{Kind: KeyRight}))
	assert.Equal(t, 2, engine.State().Index)

	require.NoError(t, a.Dispatch(Stimulus{Kind: HoverEnter}))
	clk.Advance(time.Minute)
	assert.Equal(t, 2, engine.State().Index)

	require.NoError(t, a.Dispatch(Stimulus{Kind: HoverLeave}))
	clk.Advance(5 * time.Second)
	assert.Equal(t, 0, engine.State().Index)

	require.NoError(t, a.Dispatch(Dot(-1)))
	assert.Equal(t, 2, engine.State().Index)

	require.NoError(t, a.Dispatch(Stimulus{Kind: TogglePause}))
	assert.True(t, engine.State().Paused)
}

func TestActionStrings(t *testing.T) {
	assert.Equal(t, "next", ActionNext.String())
	assert.Equal(t, "toggle-pause", ActionTogglePause.String())
	assert.Equal(t, "unknown", Action(99).String())
	assert.Equal(t, "indicator[4]", Dot(4).String())
	assert.Equal(t, "unknown", Kind(99).String())
}
