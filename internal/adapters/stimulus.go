package adapters

import (
	"fmt"
	"strings"

	"github.com/conneroisu/vitrine/internal/errors"
)

// Kind identifies an external stimulus.
type Kind int

const (
	HoverEnter Kind = iota
	HoverLeave
	PointLeft
	PointRight
	KeyLeft
	KeyRight
	Indicator
	TogglePause
)

var kindNames = map[Kind]string{
	HoverEnter:  "hover-enter",
	HoverLeave:  "hover-leave",
	PointLeft:   "point-left",
	PointRight:  "point-right",
	KeyLeft:     "key-left",
	KeyRight:    "key-right",
	Indicator:   "indicator",
	TogglePause: "toggle-pause",
}

// aliases are host-specific key names: DOM KeyboardEvent.key values and
// terminal key strings.
var aliases = map[string]Kind{
	"arrowleft":  KeyLeft,
	"arrowright": KeyRight,
	"left":       KeyLeft,
	"right":      KeyRight,
}

// Kinds lists every stimulus kind in declaration order.
func Kinds() []Kind {
	return []Kind{HoverEnter, HoverLeave, PointLeft, PointRight, KeyLeft, KeyRight, Indicator, TogglePause}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Stimulus is one external input. Index is only meaningful for Indicator.
type Stimulus struct {
	Kind  Kind
	Index int
}

func (s Stimulus) String() string {
	if s.Kind == Indicator {
		return fmt.Sprintf("%s[%d]", s.Kind, s.Index)
	}
	return s.Kind.String()
}

// Dot returns the stimulus for clicking indicator i.
func Dot(i int) Stimulus {
	return Stimulus{Kind: Indicator, Index: i}
}

// ParseKind resolves a wire name or key alias, ignoring case.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == normalized {
			return k, nil
		}
	}
	if k, ok := aliases[normalized]; ok {
		return k, nil
	}
	return 0, errors.NewValidationError(errors.ErrCodeUnknownStimulus,
		fmt.Sprintf("unknown stimulus %q", name))
}

// ParseStimulus builds a stimulus from its wire name. index is used only for
// indicator stimuli.
func ParseStimulus(name string, index int) (Stimulus, error) {
	k, err := ParseKind(name)
	if err != nil {
		return Stimulus{}, err
	}
	s := Stimulus{Kind: k}
	if k == Indicator {
		s.Index = index
	}
	return s, nil
}
