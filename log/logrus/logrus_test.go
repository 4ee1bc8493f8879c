package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tiered-cache/cache"
)

func TestLogger_Levels(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("collection invalidated", cache.Fields{"collection": "emp", "removed": 3})
	l.Info("info", nil)
	l.Warn("warn", cache.Fields{"key": "abc"})
	l.Error("error", cache.Fields{})

	entries := hook.AllEntries()
	require.Len(t, entries, 4)

	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "collection invalidated", entries[0].Message)
	assert.Equal(t, "emp", entries[0].Data["collection"])
	assert.Equal(t, 3, entries[0].Data["removed"])
	assert.Equal(t, "tiered", entries[0].Data["component"])

	assert.Equal(t, logrus.InfoLevel, entries[1].Level)
	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, "abc", entries[2].Data["key"])
	assert.Equal(t, logrus.ErrorLevel, entries[3].Level)
}

func TestLogger_RespectsLevel(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)
	l := New(base)

	l.Debug("hidden", nil)
	l.Info("shown", nil)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "shown", hook.LastEntry().Message)
}
