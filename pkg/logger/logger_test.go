package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, logs
}

func TestInitFormats(t *testing.T) {
	for _, json := range []bool{false, true} {
		if err := InitWithFormat(json); err != nil {
			t.Fatalf("InitWithFormat(%v): %v", json, err)
		}
		if Get() == nil {
			t.Fatalf("global logger unset after InitWithFormat(%v)", json)
		}
		Named("init").Debug(context.Background(), "ready")
		if err := Sync(); err != nil {
			t.Errorf("sync after InitWithFormat(%v): %v", json, err)
		}
	}
}

func TestFieldsReachZap(t *testing.T) {
	l, logs := observed()
	l.Named("scoring").Info(context.Background(), "layer scored",
		String("layer", "technical"),
		Int("attempt", 2),
		Float64("score", 81.5),
		Bool("fallback", true),
		Duration("took", 1500*time.Millisecond),
		Any("weights", map[string]float64{"technical": 0.4}),
		Error(errors.New("quota exceeded")),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "scoring" {
		t.Errorf("logger name = %q", e.LoggerName)
	}
	fields := e.ContextMap()
	if fields["layer"] != "technical" || fields["fallback"] != true {
		t.Errorf("unexpected fields: %v", fields)
	}
	if fields["took"] != 1500*time.Millisecond {
		t.Errorf("duration field = %v", fields["took"])
	}
	if fields["error"] != "quota exceeded" {
		t.Errorf("error field = %v", fields["error"])
	}
	if _, ok := fields["weights"]; !ok {
		t.Error("weights field missing")
	}
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(levelVar)
	l := &zapLogger{z: zap.New(core)}
	defer func() { _ = SetLevelString("info") }()

	if err := SetLevelString("warn"); err != nil {
		t.Fatal(err)
	}
	l.Info(context.Background(), "dropped")
	l.Warn(context.Background(), "kept")
	if logs.Len() != 1 || logs.All()[0].Message != "kept" {
		t.Errorf("expected only the warning, got %v", logs.All())
	}
}

func TestSetLevelString(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "", "warn", "warning", "error", " INFO "} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("SetLevelString(%q) returned error: %v", lvl, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	_ = SetLevelString("info")
}

func TestTruncateForLog(t *testing.T) {
	if got := TruncateForLog("  hello world  ", 5); got != "hello..." {
		t.Errorf("unexpected truncation: %q", got)
	}
	if got := TruncateForLog("short", 10); got != "short" {
		t.Errorf("unexpected truncation: %q", got)
	}
	if got := TruncateForLog("anything", 0); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "discarded", Int("n", 1))
	l.Named("child").Warn(context.Background(), "discarded too")
}
