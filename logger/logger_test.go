package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "loader").Warn("cube unavailable", "asset", "granular_cube.json")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["component"] != "loader" || ctx["asset"] != "granular_cube.json" {
		t.Errorf("unexpected context: %v", ctx)
	}
	if entries[0].Message != "cube unavailable" {
		t.Errorf("unexpected message: %q", entries[0].Message)
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "quiet"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.Debug("probe")
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("nothing", "k", 1)
	l.Sync()
}
