package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelFatal, "FATAL"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestStructuredLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("carousel").
		With("session", "abc").
		Warn(context.Background(), errors.New("boom"), "tick dropped", "index", 2)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "tick dropped", record["msg"])
	assert.Equal(t, "carousel", record["component"])
	assert.Equal(t, "boom", record["error"])
	assert.Equal(t, "abc", record["session"])
	assert.EqualValues(t, 2, record["index"])
}

func TestStructuredLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Format: "text", Output: &buf})

	logger.Debug(context.Background(), "hidden debug")
	logger.Info(context.Background(), "hidden info")
	logger.Error(context.Background(), nil, "visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible error")
}

func TestNopDropsEverything(t *testing.T) {
	logger := NewNop()
	assert.NotPanics(t, func() {
		logger.Fatal(context.Background(), errors.New("x"), "ignored")
		logger.With("k", "v").Info(context.Background(), "ignored")
	})
}

func TestMultiLogger(t *testing.T) {
	first := NewRecorder()
	second := NewRecorder()
	multi := NewMultiLogger(first, second)

	multi.WithComponent("server").Info(context.Background(), "started", "port", 8080)

	for _, rec := range []*Recorder{first, second} {
		entries := rec.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "server", entries[0].Component)
		assert.Equal(t, 8080, entries[0].Fields["port"])
	}
}

func TestRecorderSharesEntriesWithDerivedLoggers(t *testing.T) {
	rec := NewRecorder()
	derived := rec.WithComponent("session").With("id", "s1")

	derived.Warn(context.Background(), nil, "slow client")
	rec.Info(context.Background(), "root")

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "session", entries[0].Component)
	assert.Equal(t, "s1", entries[0].Fields["id"])
	assert.Equal(t, 1, rec.Count(LevelWarn))
	assert.Equal(t, 1, rec.Count(LevelInfo))
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "hover-enter", "hover-enter"},
		{"newlines flattened", "a\nb\r\nc", "a b  c"},
		{"control stripped", "a\x00b\x1bc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeForLog(tt.input))
		})
	}

	long := strings.Repeat("x", 300)
	assert.True(t, strings.HasSuffix(SanitizeForLog(long), "...[TRUNCATED]"))
}

func TestPerfLogger(t *testing.T) {
	rec := NewRecorder()
	op := StartOperation(rec, "render")
	op.EndWithError(context.Background(), errors.New("bad template"))

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, LevelError, entries[0].Level)
	assert.Equal(t, "render failed", entries[0].Message)
	assert.Equal(t, "render", entries[0].Fields["operation"])
}
