package zap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-tiered-cache/cache"
)

func TestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("session merged", cache.Fields{"stored": 2, "skipped": 1})
	l.Info("info", nil)
	l.Warn("encode failed, entry not shared", cache.Fields{"error": errors.New("boom")})
	l.Error("error", cache.Fields{})

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "tiered", entries[0].LoggerName)
	assert.Equal(t, map[string]any{"skipped": int64(1), "stored": int64(2)}, entries[0].ContextMap())

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])

	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLogger_FieldsSorted(t *testing.T) {
	got := fields(cache.Fields{"c": 3, "a": 1, "b": 2})
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Key)
	assert.Equal(t, "b", got[1].Key)
	assert.Equal(t, "c", got[2].Key)
}

func TestNew_NilLogger(t *testing.T) {
	l := New(nil)
	assert.NotPanics(t, func() { l.Info("dropped", cache.Fields{"k": "v"}) })
}
