package audit

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRoutesLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLogger(zap.New(core))

	ctx := context.Background()
	logger.Log(ctx, LevelInfo, "g1", "u1", "automod_message_flood", "deleted")
	logger.Log(ctx, LevelWarn, "g1", "u1", "action_failed", "forbidden")
	logger.Log(ctx, LevelCrit, "g1", "u1", "risk_timeout", "minutes=10")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, entry := range entries {
		if entry.Level != want[i] {
			t.Fatalf("entry %d: expected level %s, got %s", i, want[i], entry.Level)
		}
	}
	fields := entries[0].ContextMap()
	if fields["event"] != "automod_message_flood" {
		t.Fatalf("unexpected event field: %v", fields["event"])
	}
	if fields["audit_level"] != LevelInfo {
		t.Fatalf("unexpected audit_level field: %v", fields["audit_level"])
	}
	if _, ok := fields["level"]; ok {
		t.Fatalf("audit fields must not reuse the encoder level key")
	}
}
