package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVitrineErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *VitrineError
		expected string
	}{
		{
			name:     "code and message",
			err:      NewValidationError(ErrCodeUnknownStimulus, "unknown stimulus"),
			expected: "[ERR_UNKNOWN_STIMULUS] unknown stimulus",
		},
		{
			name: "component and location",
			err: NewIOError(ErrCodeFileNotFound, "cannot read testimonials", errors.New("no such file")).
				WithComponent("content").
				WithLocation("content/testimonials.yml", 3),
			expected: "[ERR_FILE_NOT_FOUND] component:content content/testimonials.yml:3 cannot read testimonials: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestVitrineErrorIsAndUnwrap(t *testing.T) {
	cause := errors.New("closed pipe")
	err := NewNetworkError("ERR_WRITE", "write failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.Is(err, NewNetworkError("ERR_WRITE", "other message", nil)))
	assert.False(t, errors.Is(err, NewNetworkError("ERR_READ", "write failed", nil)))
}

func TestClassification(t *testing.T) {
	lifecycle := NewLifecycleError(ErrCodeCarouselTornDown, "navigation after teardown")
	wrapped := errors.Join(errors.New("outer"), lifecycle)

	assert.True(t, IsRecoverable(wrapped))
	assert.True(t, IsType(wrapped, ErrorTypeLifecycle))
	assert.True(t, HasCode(wrapped, ErrCodeCarouselTornDown))
	assert.False(t, IsRecoverable(NewConfigError(ErrCodeConfigInvalid, "bad")))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeIO))
}

type captureLogger struct {
	warns  []string
	errors []string
}

func (c *captureLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	c.errors = append(c.errors, msg)
}

func (c *captureLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	c.warns = append(c.warns, msg)
}

func TestErrorHandler(t *testing.T) {
	logger := &captureLogger{}
	handler := NewErrorHandler(logger)

	handler.Handle(context.Background(), nil)
	handler.Handle(context.Background(), NewLifecycleError(ErrCodeCarouselInitTwice, "already initialized"))
	handler.Handle(context.Background(), NewInternalError("ERR_X", "broken", nil))
	handler.Handle(context.Background(), errors.New("plain"))

	assert.Equal(t, []string{"already initialized"}, logger.warns)
	assert.Equal(t, []string{"broken", "Unhandled error occurred"}, logger.errors)
}

func TestEnhancedError(t *testing.T) {
	original := errors.New("listen tcp :8080: bind: address already in use")
	suggestions := ServerStartError(original, 8080, &SuggestionContext{})
	require.Len(t, suggestions, 2)

	err := NewEnhancedError("Failed to start server on port 8080", original, suggestions)

	assert.ErrorIs(t, err, original)
	assert.Contains(t, err.Error(), "Port already in use")
	assert.Contains(t, err.Error(), "vitrine serve --port 8081")
}

func TestConfigurationErrorSuggestions(t *testing.T) {
	suggestions := ConfigurationError("carousel.direction: unsupported value", ".vitrine.yml", nil)

	titles := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "Use a supported reading direction")
	assert.NotContains(t, titles, "Use a Go duration for the interval")
}

func TestContentErrorSuggestions(t *testing.T) {
	suggestions := ContentError(errors.New("yaml: line 3: did not find expected key"), &SuggestionContext{ContentPath: "site/t.yml"})

	require.Len(t, suggestions, 2)
	assert.Equal(t, "vitrine validate --content site/t.yml", suggestions[0].Command)
	assert.Equal(t, "Fix YAML syntax", suggestions[1].Title)
}

func TestFormatSuggestionsWithoutSuggestions(t *testing.T) {
	assert.Equal(t, "just a title", FormatSuggestions("just a title", nil))
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewLifecycleError(ErrCodeAdapterClosed, "closed"))

	var ve *VitrineError
	require.True(t, As(wrapped, &ve))
	assert.Equal(t, ErrCodeAdapterClosed, ve.Code)
	assert.False(t, As(fmt.Errorf("plain"), &ve))
}
