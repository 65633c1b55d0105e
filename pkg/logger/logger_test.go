package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Info("query answered", "facts", 3)
	log.Warn("generation failed")
	log.Error("catalog missing")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "query answered")
	assert.Contains(t, out, "facts=3")
	assert.Contains(t, out, colorYellow)
	assert.Contains(t, out, colorRed)
	assert.Contains(t, out, colorGreen)
}

func TestLoggerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelInfo).With("request_id", "r1").WithGroup("http")

	log.Info("request", "status", 200)

	out := buf.String()
	assert.Contains(t, out, "request_id=r1")
	assert.Contains(t, out, "http.status=200")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
