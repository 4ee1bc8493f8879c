package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tiered-cache/cache"
)

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug}))}

	l.Debug("stale entry not shared", cache.Fields{"key": "abc", "session": "s1"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "stale entry not shared", line["msg"])
	assert.Equal(t, "abc", line["key"])
	assert.Equal(t, "s1", line["session"])
}

func TestLogger_LevelFiltered(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelWarn}))}

	l.Info("hidden", nil)
	assert.Zero(t, buf.Len())

	l.Error("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}
