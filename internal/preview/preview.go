// Package preview shows the carousel in the terminal.
//
// The preview mounts the same engine and adapter the browser sessions use.
// Arrow keys, mouse clicks on either half of the card, and the number keys
// become stimuli; moving the mouse over the card pauses rotation the way
// hovering does on the web page. Engine events are forwarded to the
// bubbletea program as messages.
package preview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/conneroisu/vitrine/internal/adapters"
	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/clock"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/conneroisu/vitrine/internal/view"
)

const (
	defaultWidth = 64
	minCardWidth = 24
	eventBuffer  = 16
)

// Settings configures the previewed carousel.
type Settings struct {
	Interval    time.Duration
	StartPaused bool
	Strict      bool
	Direction   adapters.Direction
	Labels      view.Labels
}

// EventMsg carries an engine event into the program.
type EventMsg carousel.Event

// ReplaceMsg remounts the carousel with a new list.
type ReplaceMsg struct {
	Items []carousel.Testimonial
}

// Model is the bubbletea model of the preview.
type Model struct {
	engine  *carousel.Engine
	adapter *adapters.Adapter
	dir     adapters.Direction
	labels  view.Labels

	keys   KeyMap
	help   help.Model
	styles Styles

	events      chan carousel.Event
	done        chan struct{}
	unsubscribe func()
	closeOnce   sync.Once

	width int
	// Screen rows covered by the card, as last rendered.
	cardTop, cardBottom int
	status     string
}

// Option configures a Model.
type Option func(*options)

type options struct {
	clock  clock.Clock
	logger logging.Logger
}

// WithClock sets the clock driving the carousel.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New mounts items and returns the preview model.
func New(items []carousel.Testimonial, s Settings, opts ...Option) *Model {
	o := options{clock: clock.System(), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.WithComponent("preview")

	engine := carousel.New(
		carousel.WithClock(o.clock),
		carousel.WithLogger(logger),
		carousel.WithStrict(s.Strict),
		carousel.WithStartPaused(s.StartPaused),
	)
	dir := adapters.Resolve(s.Direction, texts(items)...)

	m := &Model{
		engine:  engine,
		adapter: adapters.New(engine, dir, adapters.WithLogger(logger)),
		dir:     dir,
		labels:  s.Labels,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		styles:  DefaultStyles(),
		events:  make(chan carousel.Event, eventBuffer),
		done:    make(chan struct{}),
		width:   defaultWidth,
	}
	m.unsubscribe = engine.Subscribe(carousel.ObserverFunc(m.notify))
	engine.Initialize(items, s.Interval)

	return m
}

// notify forwards an event without blocking the engine. Dropped events are
// harmless since View reads the current state.
func (m *Model) notify(ev carousel.Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *Model) waitForEvent() tea.Msg {
	select {
	case ev := <-m.events:
		return EventMsg(ev)
	case <-m.done:
		return nil
	}
}

// State returns the carousel state.
func (m *Model) State() carousel.State {
	return m.engine.State()
}

// Direction returns the reading direction the arrows follow.
func (m *Model) Direction() adapters.Direction {
	return m.dir
}

// Close tears the carousel down. It is safe to call more than once.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.unsubscribe()
		m.adapter.Close()
		m.engine.Teardown()
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.BlurMsg:
		m.dispatch(adapters.Stimulus{Kind: adapters.HoverLeave})

	case ReplaceMsg:
		m.engine.Replace(msg.Items)

	case EventMsg:
		return m, m.waitForEvent
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.dispatch(adapters.Stimulus{Kind: adapters.KeyLeft})
	case key.Matches(msg, m.keys.Right):
		m.dispatch(adapters.Stimulus{Kind: adapters.KeyRight})
	case key.Matches(msg, m.keys.Toggle):
		m.dispatch(adapters.Stimulus{Kind: adapters.TogglePause})
	case key.Matches(msg, m.keys.Dot):
		m.dispatch(adapters.Dot(int(msg.String()[0] - '1')))
	}
	return m, nil
}

// handleMouse treats the card like the web page treats the carousel: motion
// over it is hover, and a click on either half points that way.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	over := msg.Y >= m.cardTop && msg.Y < m.cardBottom

	switch msg.Action {
	case tea.MouseActionMotion:
		if over {
			m.dispatch(adapters.Stimulus{Kind: adapters.HoverEnter})
		} else {
			m.dispatch(adapters.Stimulus{Kind: adapters.HoverLeave})
		}
	case tea.MouseActionPress:
		if !over || msg.Button != tea.MouseButtonLeft {
			return
		}
		if msg.X < m.cardWidth()/2 {
			m.dispatch(adapters.Stimulus{Kind: adapters.PointLeft})
		} else {
			m.dispatch(adapters.Stimulus{Kind: adapters.PointRight})
		}
	}
}

func (m *Model) dispatch(s adapters.Stimulus) {
	if err := m.adapter.Dispatch(s); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *Model) cardWidth() int {
	if m.width < minCardWidth {
		return minCardWidth
	}
	return m.width
}

// View implements tea.Model.
func (m *Model) View() string {
	state := m.engine.State()
	items := m.engine.Items()

	heading := m.styles.Heading.Render(m.labels.Heading)
	card := m.renderCard(state, items)
	m.cardTop = lipgloss.Height(heading)
	m.cardBottom = m.cardTop + lipgloss.Height(card)

	sections := []string{heading, card, m.renderControls(state)}
	if m.status != "" {
		sections = append(sections, m.styles.Error.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(m.align(), sections...)
}

func (m *Model) align() lipgloss.Position {
	if m.dir == adapters.LTR {
		return lipgloss.Left
	}
	return lipgloss.Right
}

func (m *Model) renderCard(state carousel.State, items []carousel.Testimonial) string {
	width := m.cardWidth()
	// Border and padding take two columns on each side.
	inner := width - 4
	style := m.styles.Card.Width(width - 2).Align(m.align())

	if !state.HasItem() || state.Index >= len(items) {
		return style.Render(m.labels.Empty)
	}
	item := items[state.Index]

	lines := []string{
		m.styles.Position.Render(m.labels.Slide(state.Ordinal(), state.Length)),
		m.styles.Quote.Width(inner).Align(m.align()).Render(item.QuoteText),
		m.styles.Name.Render(runewidth.Truncate(item.DisplayName, inner, "…")),
	}
	if item.ServiceLabel != "" {
		lines = append(lines, m.styles.Service.Render(runewidth.Truncate(item.ServiceLabel, inner, "…")))
	}
	return style.Render(lipgloss.JoinVertical(m.align(), lines...))
}

// renderControls draws the indicator dots and the pause state. Under RTL the
// first dot is rightmost.
func (m *Model) renderControls(state carousel.State) string {
	dots := make([]string, state.Length)
	for i := range dots {
		if i == state.Index {
			dots[i] = m.styles.DotActive.Render("●")
		} else {
			dots[i] = m.styles.Dot.Render("○")
		}
	}
	if m.dir != adapters.LTR {
		for i, j := 0, len(dots)-1; i < j; i, j = i+1, j-1 {
			dots[i], dots[j] = dots[j], dots[i]
		}
	}

	symbol := "▶"
	if state.Paused {
		symbol = "⏸"
	}
	status := m.styles.Status.Render(fmt.Sprintf("%s %s", symbol, m.labels.Toggle(state.Paused)))

	return strings.Join(dots, " ") + "   " + status
}

// Program returns a full-screen program showing m. The program stops when
// ctx is cancelled. Use Send with a ReplaceMsg to remount the carousel.
func Program(ctx context.Context, m *Model, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	}, opts...)
	return tea.NewProgram(m, opts...)
}

// Run shows the preview until the user quits or ctx is cancelled. The model
// is closed when Run returns.
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	defer m.Close()

	_, err := Program(ctx, m, opts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func texts(items []carousel.Testimonial) []string {
	out := make([]string, 0, 2*len(items))
	for _, item := range items {
		out = append(out, item.DisplayName, item.QuoteText)
	}
	return out
}
