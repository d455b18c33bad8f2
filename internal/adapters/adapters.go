// Package adapters translates external stimuli (pointer, keyboard, hover and
// indicator input) into carousel engine operations.
//
// The translation is a fixed lookup table chosen once per adapter from the
// reading direction. Under right-to-left layout the left-pointing control
// advances the index and the right-pointing control retreats it.
package adapters

import (
	"context"
	"sync"

	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
)

// Action is an engine operation selected by the table.
type Action int

const (
	ActionPause Action = iota
	ActionResume
	ActionNext
	ActionPrevious
	ActionGoTo
	ActionTogglePause
)

func (a Action) String() string {
	switch a {
	case ActionPause:
		return "pause"
	case ActionResume:
		return "resume"
	case ActionNext:
		return "next"
	case ActionPrevious:
		return "previous"
	case ActionGoTo:
		return "goto"
	case ActionTogglePause:
		return "toggle-pause"
	default:
		return "unknown"
	}
}

// Target is the set of engine operations an adapter may invoke.
// *carousel.Engine satisfies it.
type Target interface {
	Next()
	Previous()
	GoTo(index int)
	Pause()
	Resume()
	TogglePause()
}

var rtlTable = map[Kind]Action{
	HoverEnter:  ActionPause,
	HoverLeave:  ActionResume,
	PointLeft:   ActionNext,
	KeyLeft:     ActionNext,
	PointRight:  ActionPrevious,
	KeyRight:    ActionPrevious,
	Indicator:   ActionGoTo,
	TogglePause: ActionTogglePause,
}

var ltrTable = map[Kind]Action{
	HoverEnter:  ActionPause,
	HoverLeave:  ActionResume,
	PointLeft:   ActionPrevious,
	KeyLeft:     ActionPrevious,
	PointRight:  ActionNext,
	KeyRight:    ActionNext,
	Indicator:   ActionGoTo,
	TogglePause: ActionTogglePause,
}

// Table returns a copy of the mapping used for dir. Auto is treated as RTL;
// resolve it with Resolve before building an adapter.
func Table(dir Direction) map[Kind]Action {
	src := rtlTable
	if dir == LTR {
		src = ltrTable
	}
	out := make(map[Kind]Action, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Lookup returns the action for kind under dir.
func Lookup(dir Direction, kind Kind) (Action, bool) {
	table := rtlTable
	if dir == LTR {
		table = ltrTable
	}
	a, ok := table[kind]
	return a, ok
}

// Adapter binds one table to one target until closed.
type Adapter struct {
	mu     sync.Mutex
	target Target
	dir    Direction
	logger logging.Logger
	closed bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for dropped stimuli.
func WithLogger(l logging.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l.WithComponent("adapters")
		}
	}
}

// New registers an adapter on target. An Auto direction is treated as RTL.
func New(target Target, dir Direction, opts ...Option) *Adapter {
	if dir != LTR {
		dir = RTL
	}
	a := &Adapter{
		target: target,
		dir:    dir,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Direction returns the resolved reading direction.
func (a *Adapter) Direction() Direction {
	return a.dir
}

// Dispatch invokes exactly one engine operation for s. After Close the
// stimulus is dropped and an ADAPTER_CLOSED lifecycle error is returned.
func (a *Adapter) Dispatch(s Stimulus) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return errors.NewLifecycleError(errors.ErrCodeAdapterClosed, "stimulus after close").
			WithComponent("adapters").
			WithContext("stimulus", s.String())
	}
	target := a.target
	a.mu.Unlock()

	action, ok := Lookup(a.dir, s.Kind)
	if !ok {
		return errors.NewValidationError(errors.ErrCodeUnknownStimulus, "no action for stimulus").
			WithContext("stimulus", s.String())
	}

	a.logger.Debug(context.Background(), "Dispatching stimulus",
		"stimulus", s.String(), "action", action.String())

	switch action {
	case ActionPause:
		target.Pause()
	case ActionResume:
		target.Resume()
	case ActionNext:
		target.Next()
	case ActionPrevious:
		target.Previous()
	case ActionGoTo:
		target.GoTo(s.Index)
	case ActionTogglePause:
		target.TogglePause()
	}
	return nil
}

// Close deregisters the adapter. It is safe to call more than once.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.target = nil
}

// Closed reports whether Close has been called.
func (a *Adapter) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
