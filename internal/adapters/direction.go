package adapters

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/bidi"

	"github.com/conneroisu/vitrine/internal/errors"
)

// Direction is the reading order of the host layout.
type Direction string

const (
	RTL  Direction = "rtl"
	LTR  Direction = "ltr"
	Auto Direction = "auto"
)

// ParseDirection validates a configured direction. The empty string is RTL.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", RTL:
		return RTL, nil
	case LTR:
		return LTR, nil
	case Auto:
		return Auto, nil
	default:
		return "", errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown direction %q (want rtl, ltr or auto)", s))
	}
}

// Resolve returns dir unchanged unless it is Auto, in which case the
// direction is detected from texts.
func Resolve(dir Direction, texts ...string) Direction {
	if dir == Auto {
		return Detect(texts...)
	}
	if dir == LTR {
		return LTR
	}
	return RTL
}

// Detect counts strong directional runes across texts. It returns LTR only
// when left-to-right runes outnumber right-to-left ones.
func Detect(texts ...string) Direction {
	var rtl, ltr int
	for _, text := range texts {
		for _, r := range text {
			props, _ := bidi.LookupRune(r)
			switch props.Class() {
			case bidi.R, bidi.AL:
				rtl++
			case bidi.L:
				ltr++
			}
		}
	}
	if ltr > rtl {
		return LTR
	}
	return RTL
}
