package observe

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestZapObserverLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewZap(zap.New(core))

	obs.OnAction("connect", "bound strut 3")
	obs.OnSolverStep(12, 0.004)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("logged %d entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].Message != "connect" {
		t.Errorf("action entry = %v %q", entries[0].Level, entries[0].Message)
	}
	if entries[1].Level != zapcore.DebugLevel || entries[1].Message != "solver pass" {
		t.Errorf("solver entry = %v %q", entries[1].Level, entries[1].Message)
	}

	fields := entries[1].ContextMap()
	if fields["pass"] != int64(12) {
		t.Errorf("pass field = %v", fields["pass"])
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	log := NewLogger("not-a-level")
	if log == nil {
		t.Fatal("nil logger")
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("fallback logger should not enable debug")
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("fallback logger should enable info")
	}
}

func TestNopObserverIsInert(t *testing.T) {
	obs := Nop()
	obs.OnAction("anything", "at all")
	obs.OnSolverStep(0, 0)
}
