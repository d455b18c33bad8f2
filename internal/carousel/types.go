package carousel

import "time"

// DefaultInterval is the automatic-advance cadence used when none is given.
const DefaultInterval = 5 * time.Second

// Testimonial is one immutable carousel item.
type Testimonial struct {
	// ID is an opaque identifier, unique within a list.
	ID           string
	DisplayName  string
	ServiceLabel string
	QuoteText    string
	// ImageRef locates the portrait shown beside the quote.
	ImageRef string
}

// State is a point-in-time snapshot of the carousel, read by renderers.
type State struct {
	// Index is the visible item, or -1 when the list is empty.
	Index  int
	Paused bool
	Length int
	// Playing reports that an automatic advance is scheduled.
	Playing bool
}

// HasItem reports whether Index refers to an item.
func (s State) HasItem() bool {
	return s.Length > 0 && s.Index >= 0
}

// Ordinal returns the 1-based position of the visible item, or 0.
func (s State) Ordinal() int {
	if !s.HasItem() {
		return 0
	}
	return s.Index + 1
}

// Kind identifies what changed.
type Kind int

const (
	// KindReset is emitted when a list is mounted or replaced.
	KindReset Kind = iota
	KindIndexChanged
	KindPauseChanged
)

func (k Kind) String() string {
	switch k {
	case KindReset:
		return "reset"
	case KindIndexChanged:
		return "index"
	case KindPauseChanged:
		return "pause"
	default:
		return "unknown"
	}
}

// Cause identifies what triggered a change.
type Cause int

const (
	CauseInit Cause = iota
	CauseManual
	CauseTick
	CauseAttention
	CauseReload
)

func (c Cause) String() string {
	switch c {
	case CauseInit:
		return "init"
	case CauseManual:
		return "manual"
	case CauseTick:
		return "tick"
	case CauseAttention:
		return "attention"
	case CauseReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Event is delivered to observers after every state change.
type Event struct {
	Kind  Kind
	Cause Cause
	State State
	// Items is the list State refers to. It is shared between observers
	// and must not be modified.
	Items []Testimonial
}

// Observer receives engine events. Notify runs while the engine serializes
// delivery and may read State, Current and Items. It must not call any other
// engine method, since those wait for delivery to finish.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Notify calls f(ev).
func (f ObserverFunc) Notify(ev Event) {
	f(ev)
}
