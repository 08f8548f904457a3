package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(&config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, l)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel("bogus"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel(""))
}

func TestLevels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	tests := []struct {
		name  string
		log   func()
		level string
		msg   string
	}{
		{"debug", func() { l.Debug("d") }, "debug", "d"},
		{"info", func() { l.Info("i") }, "info", "i"},
		{"warnf", func() { l.Warnf("retry %d", 3) }, "warn", "retry 3"},
		{"errorf", func() { l.Errorf("failed: %s", "timeout") }, "error", "failed: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			entry := decodeLine(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.msg, entry["message"])
		})
	}
}

func TestWithFieldsAndError(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.WithField("module", "analyzer").
		WithFields(map[string]interface{}{"code": "005930", "score": 3.5}).
		WithError(errors.New("boom")).
		Error("evaluation failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "analyzer", entry["module"])
	assert.Equal(t, "005930", entry["code"])
	assert.Equal(t, 3.5, entry["score"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().WithField("a", 1).Info("ignored") })
}
