package utils

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerNamedTagsEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	root := &Logger{sugar: zap.New(core).Sugar()}

	root.Named("acme-agents").Info("found %d listing(s)", 3)
	root.Warn("untagged")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].LoggerName; got != "acme-agents" {
		t.Errorf("named entry logger = %q, want acme-agents", got)
	}
	if got := entries[0].Message; got != "found 3 listing(s)" {
		t.Errorf("message = %q", got)
	}
	if got := entries[1].LoggerName; got != "" {
		t.Errorf("root entry logger = %q, want empty", got)
	}
}
