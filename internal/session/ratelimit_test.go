package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/vitrine/internal/clock"
)

func TestSlidingWindowLimiter(t *testing.T) {
	clk := clock.NewManual()
	l := NewSlidingWindowLimiter(3, time.Second, clk)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(), "event %d", i)
	}
	assert.False(t, l.Allow())

	// Still inside the one second backoff.
	clk.Advance(900 * time.Millisecond)
	assert.False(t, l.Allow())

	// The second violation doubled the backoff to two seconds.
	clk.Advance(1500 * time.Millisecond)
	assert.False(t, l.Allow())

	clk.Advance(5 * time.Second)
	assert.True(t, l.Allow())
}

func TestSlidingWindowLimiterSlides(t *testing.T) {
	clk := clock.NewManual()
	l := NewSlidingWindowLimiter(2, time.Second, clk)

	assert.True(t, l.Allow())
	clk.Advance(600 * time.Millisecond)
	assert.True(t, l.Allow())

	// The first event leaves the window.
	clk.Advance(500 * time.Millisecond)
	assert.True(t, l.Allow())
}

func TestSlidingWindowLimiterReset(t *testing.T) {
	l := NewSlidingWindowLimiter(1, time.Second, clock.NewManual())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	l.Reset()
	assert.True(t, l.Allow())
}

func TestOriginValidatorBareHostEntries(t *testing.T) {
	v := NewOriginValidator("0.0.0.0", 9000, []string{"Example.com:8443", " "})

	assert.True(t, v.IsAllowedOrigin("https://example.com:8443"))
	assert.True(t, v.IsAllowedOrigin("http://0.0.0.0:9000"))
	assert.True(t, v.IsAllowedOrigin("http://localhost:9000"))
	assert.False(t, v.IsAllowedOrigin("http://localhost:8080"))
	assert.False(t, v.IsAllowedOrigin("::not a url"))
}
