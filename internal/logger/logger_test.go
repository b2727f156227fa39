package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("chatty")
	assert.EqualError(t, err, "unknown log level: chatty")
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelWarn)

	l.Info("hidden")
	l.Debug("hidden")
	l.Warn("shown", "unit", "ZPROG")
	l.GetSlogLogger().Error("failed", Error(errors.New("boom")))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown unit=ZPROG")
	assert.Contains(t, out, "error=boom")
}

func TestInterface(t *testing.T) {
	var buf bytes.Buffer
	var log Interface = NewWithWriter(&buf, slog.LevelDebug)

	log.Debug("debug line")
	log.Error("error line", Error(errors.New("boom")))

	assert.Contains(t, buf.String(), "level=DEBUG msg=\"debug line\"")
	assert.Contains(t, buf.String(), "level=ERROR msg=\"error line\" error=boom")

	// plain slog loggers plug in the same way
	log = slog.New(slog.NewTextHandler(&buf, nil))
	log.Info("from slog")
	assert.Contains(t, buf.String(), "msg=\"from slog\"")
}
