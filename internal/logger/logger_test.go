package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"err":     slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestTagFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig()
	cfg.LogLevel = "debug"
	cfg.DisabledTags = []string{"noisy"}
	Init(cfg, &buf)
	t.Cleanup(func() { Init(NewConfig(), nil) })

	DebugTagf("noisy", "dropped message")
	DebugTagf("autosave", "kept message")
	Infof("untagged message")

	out := buf.String()
	assert.NotContains(t, out, "dropped message")
	assert.Contains(t, out, "kept message")
	assert.Contains(t, out, "untagged message")
}

func TestEnabledTagsDropUntagged(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig()
	cfg.LogLevel = "debug"
	cfg.EnabledTags = []string{"history"}
	Init(cfg, &buf)
	t.Cleanup(func() { Init(NewConfig(), nil) })

	Debugf("plain")
	DebugTagf("history", "tagged")

	assert.NotContains(t, buf.String(), "plain")
	assert.Contains(t, buf.String(), "tagged")
}

func TestPackageFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig()
	cfg.DisabledPackages = []string{"logger"}
	Init(cfg, &buf)
	t.Cleanup(func() { Init(NewConfig(), nil) })

	Warnf("from the logger package itself")
	assert.Empty(t, buf.String())
}

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	Init(NewConfig(), &buf)
	t.Cleanup(func() { Init(NewConfig(), nil) })

	Debugf("below info")
	assert.Empty(t, buf.String())

	SetLevel(slog.LevelDebug)
	Debugf("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
