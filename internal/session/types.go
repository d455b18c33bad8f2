package session

import (
	"time"

	"github.com/conneroisu/vitrine/internal/carousel"
)

// Message types exchanged with the browser.
const (
	TypeInput  = "input"
	TypeRender = "render"
	TypeError  = "error"
)

// ClientMessage is sent by the browser for every user stimulus.
type ClientMessage struct {
	Type     string `json:"type"`
	Stimulus string `json:"stimulus"`
	Index    int    `json:"index,omitempty"`
}

// ServerMessage is pushed to the browser.
type ServerMessage struct {
	Type string `json:"type"`
	// Fragments maps an element id to its replacement markup.
	Fragments map[string]string `json:"fragments,omitempty"`
	State     *StateView        `json:"state,omitempty"`
	Code      string            `json:"code,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// StateView is the carousel state as exposed on the wire.
type StateView struct {
	Index   int  `json:"index"`
	Length  int  `json:"length"`
	Paused  bool `json:"paused"`
	Playing bool `json:"playing"`
}

func viewOf(s carousel.State) *StateView {
	return &StateView{Index: s.Index, Length: s.Length, Paused: s.Paused, Playing: s.Playing}
}

// OriginValidator decides whether a websocket upgrade may proceed.
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// RateLimiter bounds the number of stimuli a single connection may send.
type RateLimiter interface {
	Allow() bool
	Reset()
}
