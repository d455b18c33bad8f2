// Package view renders the carousel as HTML using templ components.
//
// Every component is deterministic for a given Model so that fragments can be
// pushed to browsers and compared in golden tests. Elements that change with
// the carousel state carry fixed ids (see the Target constants); the browser
// swaps them in place when the server pushes an update.
package view

//go:generate go run github.com/a-h/templ/cmd/templ@v0.2.793 generate

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/vitrine/internal/carousel"
)

// Fragment targets replaced by the browser.
const (
	TargetCarousel   = "carousel"
	TargetSlide      = "carousel-slide"
	TargetIndicators = "carousel-indicators"
	TargetPause      = "carousel-pause"
)

const (
	chevronRight = "M9 5l7 7-7 7"
	chevronLeft  = "M15 19l-7-7 7-7"
	iconPlay     = "M14.752 11.168l-3.197-2.132A1 1 0 0010 9.87v4.263a1 1 0 001.555.832l3.197-2.132a1 1 0 000-1.664zM21 12a9 9 0 11-18 0 9 9 0 0118 0z"
	iconPause    = "M10 9v6m4-6v6m7-3a9 9 0 11-18 0 9 9 0 0118 0z"
)

// Model is everything a render needs.
type Model struct {
	Items  []carousel.Testimonial
	State  carousel.State
	Labels Labels
	// Dir is the arrow direction, "rtl" or "ltr".
	Dir string
}

// current returns the visible item, if any.
func (m Model) current() (carousel.Testimonial, bool) {
	i := m.State.Index
	if !m.State.HasItem() || i >= len(m.Items) {
		return carousel.Testimonial{}, false
	}
	return m.Items[i], true
}

type arrowButton struct {
	Class    string
	Stimulus string
	Label    string
	Icon     string
	Disabled bool
}

// arrows describes the previous and next buttons. Under RTL the previous
// button sits on the right, points right and sends point-right.
func (m Model) arrows() (previous, next arrowButton) {
	previous = arrowButton{
		Class:    "arrow arrow-previous",
		Stimulus: "point-right",
		Label:    m.Labels.Previous,
		Icon:     chevronRight,
		Disabled: m.State.Length <= 1,
	}
	next = arrowButton{
		Class:    "arrow arrow-next",
		Stimulus: "point-left",
		Label:    m.Labels.Next,
		Icon:     chevronLeft,
		Disabled: m.State.Length <= 1,
	}
	if m.Dir == "ltr" {
		previous.Stimulus, next.Stimulus = next.Stimulus, previous.Stimulus
		previous.Icon, next.Icon = next.Icon, previous.Icon
	}
	return previous, next
}

func dotClass(active bool) string {
	if active {
		return "dot active"
	}
	return "dot"
}

// ClientConfig is handed to the browser script as JSON.
type ClientConfig struct {
	Socket    string `json:"socket"`
	Direction string `json:"direction"`
}

// PageData describes a full document.
type PageData struct {
	Title  string
	Lang   string
	Model  Model
	Client ClientConfig
}

// Render renders c to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Fragments renders the state-dependent parts of the carousel keyed by
// target id. A full re-render of the section is included when whole is set.
func Fragments(ctx context.Context, m Model, whole bool) (map[string]string, error) {
	components := map[string]templ.Component{
		TargetSlide:      Slide(m),
		TargetIndicators: Indicators(m),
		TargetPause:      PauseButton(m),
	}
	if whole {
		components = map[string]templ.Component{TargetCarousel: Carousel(m)}
	}

	out := make(map[string]string, len(components))
	for target, c := range components {
		rendered, err := Render(ctx, c)
		if err != nil {
			return nil, err
		}
		out[target] = rendered
	}
	return out, nil
}
